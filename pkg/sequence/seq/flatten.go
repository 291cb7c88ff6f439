package seq

import (
	"context"
	"reflect"
)

// Iterable is implemented by values that can produce a Source of their
// elements. *Sequence implements it.
type Iterable[T any] interface {
	Elements() Source[T]
}

// Item is an element of a sequence that is either a single value or a
// nested source of values.
type Item[T any] struct {
	value  T
	nested Source[T]
}

// Scalar wraps a single value.
func Scalar[T any](v T) Item[T] {
	return Item[T]{value: v}
}

// Nested wraps a source whose elements Flatten yields in place of the item.
// A nil source is treated as empty.
func Nested[T any](src Source[T]) Item[T] {
	if src == nil {
		src = Empty[T]()
	}
	return Item[T]{nested: src}
}

// NestedSlice wraps a slice whose elements Flatten yields in place of the item.
func NestedSlice[T any](values []T) Item[T] {
	return Item[T]{nested: FromSlice(values)}
}

// IsNested reports whether the item holds a nested source.
func (i Item[T]) IsNested() bool {
	return i.nested != nil
}

// Value returns the wrapped scalar; it is the zero value for nested items.
func (i Item[T]) Value() T {
	return i.value
}

// flattenOperation expands nested elements one level.
type flattenOperation[E, T any] struct {
	input   *Sequence[E]
	expand  func(E) (T, Source[T])
	current *Sequence[T]
}

func (f *flattenOperation[E, T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		if f.current != nil {
			v, ok, err := f.current.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return v, true, nil
			}
			f.current = nil
		}

		e, ok, err := f.input.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		v, nested := f.expand(e)
		if nested == nil {
			return v, true, nil
		}
		f.current = New(nested)
	}
}

// Flatten expands every nested item of source into its elements and passes
// scalar items through, one level deep. A failed pull on a nested source is
// returned unchanged and the next pull retries it.
func Flatten[T any](source Source[Item[T]]) *Sequence[T] {
	return New[T](&flattenOperation[Item[T], T]{
		input: New(source),
		expand: func(item Item[T]) (T, Source[T]) {
			return item.value, item.nested
		},
	})
}

// Flatten expands elements that implement Iterable or are a []T into their
// elements, one level deep. When T is an interface type such as any, an
// element holding a *Sequence, slice or array of another element type is
// expanded too, provided its elements satisfy T. Strings and every other
// element are yielded unchanged.
func (s *Sequence[T]) Flatten() *Sequence[T] {
	expand := expandElement[T]
	if target := reflect.TypeFor[T](); target.Kind() == reflect.Interface {
		expand = func(v T) (T, Source[T]) {
			if out, nested := expandElement(v); nested != nil {
				return out, nested
			}
			return expandDynamic(v, target)
		}
	}
	return New[T](&flattenOperation[T, T]{
		input:  s,
		expand: expand,
	})
}

func expandElement[T any](v T) (T, Source[T]) {
	var zero T
	switch nested := any(v).(type) {
	case Iterable[T]:
		if src := nested.Elements(); src != nil {
			return zero, src
		}
		return zero, Empty[T]()
	case []T:
		return zero, FromSlice(nested)
	default:
		return v, nil
	}
}

// erasedIterable is implemented by *Sequence of every element type, so an
// interface-typed Flatten can expand sequences whose element type it cannot
// name.
type erasedIterable interface {
	anyElements() (Source[any], reflect.Type)
}

func (s *Sequence[T]) anyElements() (Source[any], reflect.Type) {
	return Map[T, any](s, func(v T) any { return v }), reflect.TypeFor[T]()
}

// expandDynamic expands v when it holds a sequence, slice or array whose
// element type is assignable to target.
func expandDynamic[T any](v T, target reflect.Type) (T, Source[T]) {
	var zero T
	switch nested := any(v).(type) {
	case nil:
		return v, nil
	case erasedIterable:
		src, elem := nested.anyElements()
		if !elem.AssignableTo(target) {
			return v, nil
		}
		return zero, Map[any, T](src, elementAs[T])
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !rv.Type().Elem().AssignableTo(target) {
			return v, nil
		}
		return zero, &reflectSource[T]{values: rv}
	default:
		return v, nil
	}
}

func elementAs[T any](e any) T {
	if e == nil {
		var zero T
		return zero
	}
	return e.(T)
}

// reflectSource yields the elements of a slice or array of any element type.
type reflectSource[T any] struct {
	values reflect.Value
	index  int
}

func (r *reflectSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if r.index >= r.values.Len() {
		return zero, false, nil
	}
	e := r.values.Index(r.index)
	r.index++
	return elementAs[T](e.Interface()), true, nil
}

package seq

import (
	"context"

	"github.com/vnykmshr/genflow/pkg/common/validation"
)

// Indexed pairs a value with its position in the sequence.
type Indexed[T any] struct {
	Index int
	Value T
}

// mapOperation transforms elements using a mapper function.
type mapOperation[T, R any] struct {
	input  *Sequence[T]
	mapper func(T) (R, error)
}

func (m *mapOperation[T, R]) Next(ctx context.Context) (R, bool, error) {
	var zero R
	v, ok, err := m.input.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := m.mapper(v)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// filterOperation yields elements for which predicate holds.
type filterOperation[T any] struct {
	input     *Sequence[T]
	predicate func(T) bool
}

func (f *filterOperation[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		v, ok, err := f.input.Next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		if f.predicate(v) {
			return v, true, nil
		}
	}
}

// filterMapOperation fuses filter and map: elements mapped to false are dropped.
type filterMapOperation[T, R any] struct {
	input  *Sequence[T]
	mapper func(T) (R, bool)
}

func (f *filterMapOperation[T, R]) Next(ctx context.Context) (R, bool, error) {
	var zero R
	for {
		v, ok, err := f.input.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		if out, keep := f.mapper(v); keep {
			return out, true, nil
		}
	}
}

// enumerateOperation pairs every element with its index.
type enumerateOperation[T any] struct {
	input *Sequence[T]
	index int
}

func (e *enumerateOperation[T]) Next(ctx context.Context) (Indexed[T], bool, error) {
	v, ok, err := e.input.Next(ctx)
	if err != nil || !ok {
		return Indexed[T]{}, false, err
	}
	out := Indexed[T]{Index: e.index, Value: v}
	e.index++
	return out, true, nil
}

// takeOperation limits the number of elements.
type takeOperation[T any] struct {
	input *Sequence[T]
	limit int
	count int
}

func (t *takeOperation[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if t.count >= t.limit {
		return zero, false, nil
	}
	v, ok, err := t.input.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	t.count++
	return v, true, nil
}

// takeWhileOperation yields elements until the predicate first fails.
type takeWhileOperation[T any] struct {
	input     *Sequence[T]
	predicate func(T) bool
	stopped   bool
}

func (t *takeWhileOperation[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if t.stopped {
		return zero, false, nil
	}
	v, ok, err := t.input.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if !t.predicate(v) {
		t.stopped = true
		return zero, false, nil
	}
	return v, true, nil
}

// accumulateOperation yields the running fold of its input.
type accumulateOperation[T any] struct {
	input    *Sequence[T]
	operator func(acc, next T) T
	acc      T
	seeded   bool
	started  bool
}

func (a *accumulateOperation[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	v, ok, err := a.input.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	switch {
	case a.started || a.seeded:
		a.acc = a.operator(a.acc, v)
	default:
		a.acc = v
	}
	a.started = true
	return a.acc, true, nil
}

// peekOperation performs an action on each element without modifying it.
type peekOperation[T any] struct {
	input  *Sequence[T]
	action func(T)
}

func (p *peekOperation[T]) Next(ctx context.Context) (T, bool, error) {
	v, ok, err := p.input.Next(ctx)
	if err != nil || !ok {
		return v, ok, err
	}
	p.action(v)
	return v, true, nil
}

// Map returns a sequence of mapper applied to every element of source.
func Map[T, R any](source Source[T], mapper func(T) R) *Sequence[R] {
	return New[R](&mapOperation[T, R]{
		input:  New(source),
		mapper: func(v T) (R, error) { return mapper(v), nil },
	})
}

// TryMap is Map for a mapper that can fail. A mapper error is returned from
// the pull that invoked it; the element that caused it is consumed.
func TryMap[T, R any](source Source[T], mapper func(T) (R, error)) *Sequence[R] {
	return New[R](&mapOperation[T, R]{input: New(source), mapper: mapper})
}

// Filter returns the elements of source satisfying predicate. A nil
// predicate keeps truthy elements (see Truthy).
func Filter[T any](source Source[T], predicate func(T) bool) *Sequence[T] {
	if predicate == nil {
		predicate = Truthy[T]
	}
	return New[T](&filterOperation[T]{input: New(source), predicate: predicate})
}

// FilterMap maps every element and keeps only the results reported as present.
func FilterMap[T, R any](source Source[T], mapper func(T) (R, bool)) *Sequence[R] {
	return New[R](&filterMapOperation[T, R]{input: New(source), mapper: mapper})
}

// Enumerate pairs every element with its zero-based index.
func Enumerate[T any](source Source[T]) *Sequence[Indexed[T]] {
	return New[Indexed[T]](&enumerateOperation[T]{input: New(source)})
}

// Take returns at most n elements of source. It never pulls past the nth
// element. Take panics if n is negative.
func Take[T any](source Source[T], n int) *Sequence[T] {
	must(validation.NonNegative(module, "take", n))
	return New[T](&takeOperation[T]{input: New(source), limit: n})
}

// TakeWhile yields elements of source while predicate holds and stops for
// good at the first element that fails it. The predicate comes first.
func TakeWhile[T any](predicate func(T) bool, source Source[T]) *Sequence[T] {
	return New[T](&takeWhileOperation[T]{input: New(source), predicate: predicate})
}

// Accumulate yields the running fold of source: the first element, then
// operator(carried, next) for every later one. An empty source yields
// nothing and operator is never called.
func Accumulate[T any](source Source[T], operator func(acc, next T) T) *Sequence[T] {
	return New[T](&accumulateOperation[T]{input: New(source), operator: operator})
}

// AccumulateFrom is Accumulate seeded with initial: the first element yielded
// is operator(initial, first).
func AccumulateFrom[T any](source Source[T], operator func(acc, next T) T, initial T) *Sequence[T] {
	return New[T](&accumulateOperation[T]{input: New(source), operator: operator, acc: initial, seeded: true})
}

// Peek calls action on every element as it is pulled.
func Peek[T any](source Source[T], action func(T)) *Sequence[T] {
	return New[T](&peekOperation[T]{input: New(source), action: action})
}

// Map returns a sequence of mapper applied to every element.
// Use the package-level Map to change the element type.
func (s *Sequence[T]) Map(mapper func(T) T) *Sequence[T] {
	return Map[T, T](s, mapper)
}

// Filter returns the elements satisfying predicate; nil keeps truthy elements.
func (s *Sequence[T]) Filter(predicate func(T) bool) *Sequence[T] {
	return Filter[T](s, predicate)
}

// FilterMap maps every element and keeps the results reported as present.
func (s *Sequence[T]) FilterMap(mapper func(T) (T, bool)) *Sequence[T] {
	return FilterMap[T, T](s, mapper)
}

// Take returns at most n elements.
func (s *Sequence[T]) Take(n int) *Sequence[T] {
	return Take[T](s, n)
}

// TakeWhile yields elements while predicate holds.
func (s *Sequence[T]) TakeWhile(predicate func(T) bool) *Sequence[T] {
	return TakeWhile[T](predicate, s)
}

// Accumulate yields the running fold of the sequence.
func (s *Sequence[T]) Accumulate(operator func(acc, next T) T) *Sequence[T] {
	return Accumulate[T](s, operator)
}

// AccumulateFrom yields the running fold of the sequence seeded with initial.
func (s *Sequence[T]) AccumulateFrom(operator func(acc, next T) T, initial T) *Sequence[T] {
	return AccumulateFrom[T](s, operator, initial)
}

// Peek calls action on every element as it is pulled.
func (s *Sequence[T]) Peek(action func(T)) *Sequence[T] {
	return Peek[T](s, action)
}

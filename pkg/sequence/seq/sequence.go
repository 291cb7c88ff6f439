package seq

import (
	"context"
	"iter"
)

// Source represents a pull-based producer of values.
type Source[T any] interface {
	// Next returns the next element and true, or zero value and false once the
	// source is exhausted. A non-nil error reports a failed pull.
	Next(ctx context.Context) (T, bool, error)
}

// SourceFunc adapts an ordinary function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) (T, bool, error)

// Next calls f(ctx).
func (f SourceFunc[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

// Sequence is a lazy, single-pass sequence of values.
//
// A Sequence wraps a Source and guarantees that exhaustion is permanent: once
// Next reports exhaustion the Source is never pulled again. Errors are not
// exhaustion; operators keep their state so a later pull resumes where the
// failed one stopped.
//
// A Sequence must not be pulled from several goroutines at once.
type Sequence[T any] struct {
	source Source[T]
	done   bool
}

// New creates a Sequence from a Source. A *Sequence is returned unchanged.
func New[T any](source Source[T]) *Sequence[T] {
	if s, ok := source.(*Sequence[T]); ok {
		return s
	}
	return &Sequence[T]{source: source}
}

// Next pulls the next value.
func (s *Sequence[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if s.done || s.source == nil {
		return zero, false, nil
	}

	v, ok, err := s.source.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		s.done = true
		s.source = nil
		return zero, false, nil
	}
	return v, true, nil
}

// Exhausted reports whether the sequence has already reported exhaustion.
func (s *Sequence[T]) Exhausted() bool {
	return s.done || s.source == nil
}

// Elements implements Iterable so sequences nested in sequences can be flattened.
func (s *Sequence[T]) Elements() Source[T] {
	return s
}

// ToSlice drains the sequence into a slice. It never returns on an infinite
// sequence.
func (s *Sequence[T]) ToSlice(ctx context.Context) ([]T, error) {
	result := []T{}
	for {
		v, ok, err := s.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, v)
	}
}

// ForEach performs an action for each element of the sequence.
func (s *Sequence[T]) ForEach(ctx context.Context, action func(T)) error {
	for {
		v, ok, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		action(v)
	}
}

// Reduce folds the sequence into a single value starting from identity.
func (s *Sequence[T]) Reduce(ctx context.Context, identity T, accumulator func(T, T) T) (T, error) {
	result := identity
	err := s.ForEach(ctx, func(v T) {
		result = accumulator(result, v)
	})
	if err != nil {
		return identity, err
	}
	return result, nil
}

// First pulls a single value. The boolean is false if the sequence is empty.
func (s *Sequence[T]) First(ctx context.Context) (T, bool, error) {
	return s.Next(ctx)
}

// All adapts the sequence to a range-over-func iterator. Iteration stops
// after the first error, which is yielded with a zero value.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

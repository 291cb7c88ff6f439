package seq

import (
	"context"

	"github.com/vnykmshr/genflow/pkg/common/validation"
)

// Unbounded is the stop argument of Slice meaning "no stop".
const Unbounded = -1

// dropOperation discards the first count elements before exposing any.
type dropOperation[T any] struct {
	input   *Sequence[T]
	count   int
	skipped int
}

func (d *dropOperation[T]) Next(ctx context.Context) (T, bool, error) {
	for d.skipped < d.count {
		_, ok, err := d.input.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		d.skipped++
	}
	return d.input.Next(ctx)
}

// stepOperation yields the elements at indices 0, n, 2n, ...
type stepOperation[T any] struct {
	input *Sequence[T]
	step  int
	// skip counts the elements still to discard before the next yield.
	skip int
}

func (s *stepOperation[T]) Next(ctx context.Context) (T, bool, error) {
	for s.skip > 0 {
		_, ok, err := s.input.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		s.skip--
	}
	v, ok, err := s.input.Next(ctx)
	if err != nil || !ok {
		return v, false, err
	}
	s.skip = s.step - 1
	return v, true, nil
}

// Drop discards the first n elements of source and yields the rest.
// Dropping more elements than source holds yields nothing. Drop panics if n
// is negative.
func Drop[T any](source Source[T], n int) *Sequence[T] {
	must(validation.NonNegative(module, "drop", n))
	if n == 0 {
		return New(source)
	}
	return New[T](&dropOperation[T]{input: New(source), count: n})
}

// StepBy yields every nth element of source starting with the first.
// StepBy panics unless n is positive.
func StepBy[T any](source Source[T], n int) *Sequence[T] {
	must(validation.Positive(module, "step", n))
	if n == 1 {
		return New(source)
	}
	return New[T](&stepOperation[T]{input: New(source), step: n})
}

// Slice yields the elements of source at indices start, start+step, ...
// With a bounded stop it yields at most (stop-start)/step elements, rounded
// down, so Slice(src, 0, 10, 4) yields indices 0 and 4 but not 8. Pass
// Unbounded as stop to keep going until source is exhausted. Slice panics
// if start is negative, step is not positive or stop is below Unbounded.
func Slice[T any](source Source[T], start, stop, step int) *Sequence[T] {
	must(validation.NonNegative(module, "start", start))
	must(validation.Positive(module, "step", step))
	if stop != Unbounded {
		must(validation.NonNegative(module, "stop", stop))
	}

	s := StepBy[T](Drop(source, start), step)
	if stop == Unbounded {
		return s
	}

	count := 0
	if stop > start {
		count = (stop - start) / step
	}
	return Take[T](s, count)
}

// Drop discards the first n elements.
func (s *Sequence[T]) Drop(n int) *Sequence[T] {
	return Drop[T](s, n)
}

// Step yields every nth element starting with the first.
func (s *Sequence[T]) Step(n int) *Sequence[T] {
	return StepBy[T](s, n)
}

// Slice yields (stop-start)/step elements from index start, step apart.
func (s *Sequence[T]) Slice(start, stop, step int) *Sequence[T] {
	return Slice[T](s, start, stop, step)
}

package seq

import (
	"context"

	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
	"github.com/vnykmshr/genflow/pkg/common/validation"
)

const module = "seq"

// Number is the set of element types Count and Range can generate.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// must panics with err when it is non-nil. Operators reject malformed
// arguments when they are constructed, never on a later pull.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// sliceSource yields the elements of a slice.
type sliceSource[T any] struct {
	slice []T
	index int
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if s.index >= len(s.slice) {
		return zero, false, nil
	}
	v := s.slice[s.index]
	s.index++
	return v, true, nil
}

// channelSource yields values received from a channel until it is closed.
type channelSource[T any] struct {
	ch <-chan T
}

func (s *channelSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	select {
	case value, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return value, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// generatorSource calls a generator function on every pull.
type generatorSource[T any] struct {
	generator func() T
}

func (s *generatorSource[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	return s.generator(), true, nil
}

// arithmeticSource yields start, start+step, ... while the value is below
// stop, or forever when bounded is false.
type arithmeticSource[N Number] struct {
	next    N
	step    N
	stop    N
	bounded bool
}

func (s *arithmeticSource[N]) Next(ctx context.Context) (N, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if s.bounded && !(s.next < s.stop) {
		return 0, false, nil
	}
	v := s.next
	s.next += s.step
	if s.bounded && s.next < v {
		// Wrapped around: nothing at or above v remains below stop.
		s.next = s.stop
	}
	return v, true, nil
}

// FromSlice creates a Sequence over the elements of slice without copying it.
func FromSlice[T any](slice []T) *Sequence[T] {
	return New[T](&sliceSource[T]{slice: slice})
}

// Of creates a Sequence over the given values.
func Of[T any](values ...T) *Sequence[T] {
	return FromSlice(values)
}

// FromChannel creates a Sequence that receives from ch until it is closed.
func FromChannel[T any](ch <-chan T) *Sequence[T] {
	return New[T](&channelSource[T]{ch: ch})
}

// Generate creates an infinite Sequence calling generator on every pull.
func Generate[T any](generator func() T) *Sequence[T] {
	must(validation.Present(module, "generator", generator))
	return New[T](&generatorSource[T]{generator: generator})
}

// Empty creates an exhausted Sequence.
func Empty[T any]() *Sequence[T] {
	return &Sequence[T]{done: true}
}

// Count returns the infinite arithmetic sequence start, start+step,
// start+2*step, ... The conventional defaults are Count(0, 1).
func Count[N Number](start, step N) *Sequence[N] {
	return New[N](&arithmeticSource[N]{next: start, step: step})
}

// Range returns the half-open ascending sequence described by bounds:
//
//	Range(stop)              // 0, 1, ..., stop-1
//	Range(start, stop)       // start, ..., stop-1
//	Range(start, stop, step) // start, start+step, ... while < stop
//
// A single bound is the stop, not the start. Range() is empty. Range panics
// with a *errors.ValidationError when step is not positive or more than
// three bounds are given; RangeSafe returns that error instead.
func Range[N Number](bounds ...N) *Sequence[N] {
	s, err := RangeSafe(bounds...)
	must(err)
	return s
}

// RangeSafe is Range returning an error instead of panicking.
func RangeSafe[N Number](bounds ...N) (*Sequence[N], error) {
	var start, stop N
	step := N(1)

	switch len(bounds) {
	case 0:
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	default:
		return nil, gferrors.NewValidationError(module, "bounds", len(bounds), "too many bounds").
			WithHint("use Range(stop), Range(start, stop) or Range(start, stop, step)")
	}

	if err := validation.Positive(module, "step", step); err != nil {
		return nil, err
	}

	return New[N](&arithmeticSource[N]{next: start, step: step, stop: stop, bounded: true}), nil
}

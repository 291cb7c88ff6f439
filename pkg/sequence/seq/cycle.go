package seq

import (
	"context"
)

// Forever is the times argument of Cycle meaning "repeat without end".
const Forever = -1

// cycleOperation records the first pass over its input and replays it.
type cycleOperation[T any] struct {
	input  *Sequence[T]
	times  int
	replay []T
	// passes counts completed passes, the recording pass included.
	passes int
	pos    int
}

func (c *cycleOperation[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if c.passes == 0 {
		v, ok, err := c.input.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if ok {
			c.replay = append(c.replay, v)
			return v, true, nil
		}
		c.passes = 1
	}

	if c.times >= 0 && c.passes >= c.times {
		return zero, false, nil
	}

	if len(c.replay) == 0 {
		// Nothing to replay: every remaining pass yields one zero value.
		c.completePass()
		return zero, true, nil
	}

	v := c.replay[c.pos]
	c.pos++
	if c.pos == len(c.replay) {
		c.pos = 0
		c.completePass()
	}
	return v, true, nil
}

func (c *cycleOperation[T]) completePass() {
	if c.times >= 0 {
		c.passes++
	}
}

// Cycle yields the elements of source, then replays them until times passes
// have been made in total. A negative times (Forever) repeats without end.
//
// times == 0 yields nothing and never pulls source. This differs from the
// usual cycle convention, where the first pass is always emitted and times
// only counts the replays after it: here times counts every pass, the
// recording pass included, so Cycle(src, 1) is a plain copy of src.
//
// If source is empty there is nothing to replay, and each remaining pass
// yields a single zero value instead, so Cycle(Empty[T](), Forever) is an
// infinite sequence of zero values rather than a pull that never returns.
func Cycle[T any](source Source[T], times int) *Sequence[T] {
	if times == 0 {
		return Empty[T]()
	}
	return New[T](&cycleOperation[T]{input: New(source), times: times})
}

// Cycle replays the sequence; see the package-level Cycle.
func (s *Sequence[T]) Cycle(times int) *Sequence[T] {
	return Cycle[T](s, times)
}

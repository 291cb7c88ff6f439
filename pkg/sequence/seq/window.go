package seq

import (
	"context"

	"github.com/vnykmshr/genflow/pkg/common/validation"
)

// DefaultWindow is the conventional window size.
const DefaultWindow = 2

// windowOperation yields sliding windows of size elements.
type windowOperation[T any] struct {
	input  *Sequence[T]
	size   int
	buffer []T
	primed bool
}

func (w *windowOperation[T]) Next(ctx context.Context) ([]T, bool, error) {
	if !w.primed {
		for len(w.buffer) < w.size {
			v, ok, err := w.input.Next(ctx)
			if err != nil || !ok {
				// No partial windows: a short source yields nothing.
				return nil, false, err
			}
			w.buffer = append(w.buffer, v)
		}
		w.primed = true
		return w.snapshot(), true, nil
	}

	v, ok, err := w.input.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	copy(w.buffer, w.buffer[1:])
	w.buffer[w.size-1] = v
	return w.snapshot(), true, nil
}

func (w *windowOperation[T]) snapshot() []T {
	out := make([]T, w.size)
	copy(out, w.buffer)
	return out
}

// Window yields every run of n consecutive elements of source, sliding by
// one element per pull. Each window is a fresh slice the caller may keep or
// modify. A source shorter than n yields nothing. Window panics unless n is
// positive.
func Window[T any](source Source[T], n int) *Sequence[[]T] {
	must(validation.Positive(module, "window", n))
	return New[[]T](&windowOperation[T]{
		input:  New(source),
		size:   n,
		buffer: make([]T, 0, n),
	})
}

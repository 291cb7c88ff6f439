package seq

import (
	"context"
)

// zipOperation pulls one value from every input per round.
type zipOperation[T any] struct {
	inputs []*Sequence[T]
	// round holds the values of the round in progress, kept across a failed
	// pull so the next one resumes with the input that failed.
	round []T
	done  bool
}

func (z *zipOperation[T]) Next(ctx context.Context) ([]T, bool, error) {
	if z.done {
		return nil, false, nil
	}
	for len(z.round) < len(z.inputs) {
		v, ok, err := z.inputs[len(z.round)].Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			z.done = true
			z.round = nil
			return nil, false, nil
		}
		z.round = append(z.round, v)
	}
	out := z.round
	z.round = make([]T, 0, len(z.inputs))
	return out, true, nil
}

// Zip yields tuples holding one value of every source, in argument order.
// It stops as soon as any source is exhausted and never yields a partial
// tuple; later sources are not pulled in the round that found the exhausted
// one. Zip with no sources yields nothing.
func Zip[T any](sources ...Source[T]) *Sequence[[]T] {
	if len(sources) == 0 {
		return Empty[[]T]()
	}
	inputs := make([]*Sequence[T], len(sources))
	for i, src := range sources {
		inputs[i] = New(src)
	}
	return New[[]T](&zipOperation[T]{
		inputs: inputs,
		round:  make([]T, 0, len(inputs)),
	})
}

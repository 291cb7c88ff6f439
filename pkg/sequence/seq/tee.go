package seq

import (
	"context"
	"sync"

	"github.com/vnykmshr/genflow/pkg/common/validation"
	"github.com/vnykmshr/genflow/pkg/metrics"
)

// DefaultSplits is the conventional number of tee branches.
const DefaultSplits = 2

// teeBuffer is the state shared by the branches of one Tee call. values
// holds every element some branch has not read yet; cursors are offsets
// into values, one per branch.
type teeBuffer[T any] struct {
	mu      sync.Mutex
	input   *Sequence[T]
	values  []T
	cursors []int
	observe func(length int)
}

func (b *teeBuffer[T]) next(ctx context.Context, branch int) (T, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c := b.cursors[branch]; c < len(b.values) {
		v := b.values[c]
		b.cursors[branch]++
		b.trim()
		return v, true, nil
	}

	v, ok, err := b.input.Next(ctx)
	if err != nil || !ok {
		return v, false, err
	}
	b.values = append(b.values, v)
	b.cursors[branch]++
	b.trim()
	return v, true, nil
}

// trim releases the values every branch has read.
func (b *teeBuffer[T]) trim() {
	lowest := b.cursors[0]
	for _, c := range b.cursors[1:] {
		lowest = min(lowest, c)
	}
	if lowest > 0 {
		clear(b.values[:lowest])
		b.values = b.values[lowest:]
		for i := range b.cursors {
			b.cursors[i] -= lowest
		}
	}
	if b.observe != nil {
		b.observe(len(b.values))
	}
}

func (b *teeBuffer[T]) length() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}

// teeBranch is one reader of a teeBuffer.
type teeBranch[T any] struct {
	buffer *teeBuffer[T]
	id     int
}

func (t *teeBranch[T]) Next(ctx context.Context) (T, bool, error) {
	return t.buffer.next(ctx, t.id)
}

// Tee splits source into splits independent branches that each yield every
// element of source in order. source is pulled only when a branch reads past
// what has been buffered, so every element is pulled exactly once. Values
// stay buffered until the slowest branch has read them, so memory grows with
// the distance between the fastest and slowest branch.
//
// Branches may be pulled from different goroutines. splits == 0 returns no
// branches and never touches source. Tee panics if splits is negative.
func Tee[T any](source Source[T], splits int) []*Sequence[T] {
	return tee(source, splits, nil)
}

// TeeWithMetrics is Tee reporting the branch count and the buffer length as
// gauges labelled with name. It behaves exactly like Tee when metrics are
// disabled in config.
func TeeWithMetrics[T any](source Source[T], splits int, name string, config metrics.Config) []*Sequence[T] {
	reg := config.Resolve()
	if reg == nil {
		return Tee(source, splits)
	}
	// Validate before touching the gauges.
	must(validation.NonNegative(module, "splits", splits))
	reg.TeeBranches.WithLabelValues(name).Set(float64(splits))
	gauge := reg.TeeBufferLength.WithLabelValues(name)
	return tee(source, splits, func(n int) { gauge.Set(float64(n)) })
}

func tee[T any](source Source[T], splits int, observe func(int)) []*Sequence[T] {
	must(validation.NonNegative(module, "splits", splits))
	if splits == 0 {
		return []*Sequence[T]{}
	}

	buf := &teeBuffer[T]{
		input:   New(source),
		cursors: make([]int, splits),
		observe: observe,
	}
	branches := make([]*Sequence[T], splits)
	for i := range branches {
		branches[i] = New[T](&teeBranch[T]{buffer: buf, id: i})
	}
	return branches
}

// Tee splits the sequence into independent branches; see the package-level Tee.
// The receiver must not be pulled directly afterwards.
func (s *Sequence[T]) Tee(splits int) []*Sequence[T] {
	return Tee[T](s, splits)
}

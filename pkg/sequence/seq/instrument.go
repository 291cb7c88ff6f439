package seq

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/genflow/pkg/metrics"
)

// instrumentOperation reports every pull of its input to Prometheus.
type instrumentOperation[T any] struct {
	input     *Sequence[T]
	pulls     prometheus.Counter
	items     prometheus.Counter
	errors    prometheus.Counter
	exhausted prometheus.Counter
	duration  prometheus.Observer
}

func (i *instrumentOperation[T]) Next(ctx context.Context) (T, bool, error) {
	start := time.Now()
	v, ok, err := i.input.Next(ctx)
	i.duration.Observe(time.Since(start).Seconds())
	i.pulls.Inc()

	switch {
	case err != nil:
		i.errors.Inc()
	case ok:
		i.items.Inc()
	default:
		i.exhausted.Inc()
	}
	return v, ok, err
}

// Instrument records the pulls, yielded values, failures, exhaustion and pull
// latency of the sequence under the label name. The pull duration includes
// the time spent in every upstream operator. Instrument returns the sequence
// unchanged when metrics are disabled in config.
func (s *Sequence[T]) Instrument(name string, config metrics.Config) *Sequence[T] {
	reg := config.Resolve()
	if reg == nil {
		return s
	}
	return New[T](&instrumentOperation[T]{
		input:     s,
		pulls:     reg.SequencePulls.WithLabelValues(name),
		items:     reg.SequenceItems.WithLabelValues(name),
		errors:    reg.SequenceErrors.WithLabelValues(name),
		exhausted: reg.SequenceExhausted.WithLabelValues(name),
		duration:  reg.PullDuration.WithLabelValues(name),
	})
}

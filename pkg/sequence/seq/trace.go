package seq

import (
	"context"

	"github.com/rs/zerolog"
)

// traceOperation logs every pull of its input.
type traceOperation[T any] struct {
	input  *Sequence[T]
	logger zerolog.Logger
	index  int
}

func (t *traceOperation[T]) Next(ctx context.Context) (T, bool, error) {
	v, ok, err := t.input.Next(ctx)
	switch {
	case err != nil:
		t.logger.Error().Err(err).Int("index", t.index).Msg("pull failed")
	case ok:
		t.logger.Trace().Int("index", t.index).Interface("value", v).Msg("pulled")
		t.index++
	default:
		t.logger.Debug().Int("count", t.index).Msg("exhausted")
	}
	return v, ok, err
}

// Trace logs every pull of the sequence to logger with a "sequence" field set
// to name: values at trace level, exhaustion at debug level and failed pulls
// at error level. Exhaustion is logged once.
func (s *Sequence[T]) Trace(logger zerolog.Logger, name string) *Sequence[T] {
	return New[T](&traceOperation[T]{
		input:  s,
		logger: logger.With().Str("sequence", name).Logger(),
	})
}

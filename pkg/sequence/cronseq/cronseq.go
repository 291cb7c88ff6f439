// Package cronseq turns cron schedules into lazy sequences of activation
// times.
package cronseq

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
	"github.com/vnykmshr/genflow/pkg/common/validation"
	"github.com/vnykmshr/genflow/pkg/sequence/seq"
)

const module = "cronseq"

var (
	standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	secondsParser  = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

type options struct {
	parser   cron.Parser
	location *time.Location
}

// Option configures how a cron expression is parsed and evaluated.
type Option func(*options)

// WithSeconds accepts six-field expressions with a leading seconds field.
func WithSeconds() Option {
	return func(o *options) {
		o.parser = secondsParser
	}
}

// WithLocation evaluates the schedule in loc. Activation times are returned
// in loc as well. Expressions carrying a CRON_TZ prefix keep their own zone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

func buildOptions(opts []Option) options {
	o := options{parser: standardParser}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate reports whether expr parses with the given options.
func Validate(expr string, opts ...Option) error {
	_, err := parse(expr, buildOptions(opts))
	return err
}

func parse(expr string, o options) (cron.Schedule, error) {
	if err := validation.NotBlank(module, "expression", expr); err != nil {
		return nil, err
	}
	schedule, err := o.parser.Parse(expr)
	if err != nil {
		return nil, gferrors.NewValidationError(module, "expression", expr, err.Error())
	}
	return schedule, nil
}

// scheduleSource yields successive activation times of a schedule.
type scheduleSource struct {
	schedule cron.Schedule
	last     time.Time
}

func (s *scheduleSource) Next(ctx context.Context) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	next := s.schedule.Next(s.last)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	s.last = next
	return next, true, nil
}

// Times returns the activation times of the cron expression strictly after
// after, in ascending order. The standard five-field syntax and descriptors
// such as "@hourly" are accepted; see WithSeconds for six fields. The
// sequence is infinite unless the schedule can never fire again.
func Times(expr string, after time.Time, opts ...Option) (*seq.Sequence[time.Time], error) {
	o := buildOptions(opts)
	schedule, err := parse(expr, o)
	if err != nil {
		return nil, err
	}
	if o.location != nil {
		after = after.In(o.location)
	}
	return FromSchedule(schedule, after), nil
}

// FromSchedule returns the activation times of schedule strictly after
// after. A zero time from schedule.Next exhausts the sequence.
func FromSchedule(schedule cron.Schedule, after time.Time) *seq.Sequence[time.Time] {
	return seq.New[time.Time](&scheduleSource{schedule: schedule, last: after})
}

// Every returns after+d, after+2d, ... with d rounded down to whole seconds.
// Every panics unless d is at least one second.
func Every(d time.Duration, after time.Time) *seq.Sequence[time.Time] {
	if d < time.Second {
		panic(gferrors.NewValidationError(module, "interval", d, "must be at least 1s"))
	}
	return FromSchedule(cron.Every(d), after)
}

// Package pipeline builds the int64 pipeline described by a genflow
// configuration: a source followed by operators, rendered as text lines.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/genflow/internal/config"
	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
	"github.com/vnykmshr/genflow/pkg/common/validation"
	"github.com/vnykmshr/genflow/pkg/metrics"
	"github.com/vnykmshr/genflow/pkg/sequence/cronseq"
	"github.com/vnykmshr/genflow/pkg/sequence/redisseq"
	"github.com/vnykmshr/genflow/pkg/sequence/seq"
)

// Deps are the collaborators a pipeline may need.
type Deps struct {
	// Redis serves the redis source; it may be nil for other sources.
	Redis   redis.Cmdable
	Logger  zerolog.Logger
	Metrics metrics.Config
	// Now supplies the default start of a cron source.
	Now func() time.Time
}

// Build returns the output lines of the pipeline described by cfg. Nothing
// is pulled until the returned sequence is.
func Build(cfg *config.Config, deps Deps) (*seq.Sequence[string], error) {
	ops, err := ParseOps(cfg.Ops)
	if err != nil {
		return nil, err
	}

	values, err := buildSource(cfg, deps)
	if err != nil {
		return nil, err
	}

	var last *Op
	for i := range ops {
		if shaping[ops[i].Name] {
			last = &ops[i]
			break
		}
		if values, err = apply(values, ops[i]); err != nil {
			return nil, err
		}
	}

	values = values.
		Trace(deps.Logger, "pipeline").
		Instrument("pipeline", deps.Metrics)

	lines, err := render(values, last, deps)
	if err != nil {
		return nil, err
	}
	if cfg.Limit > 0 {
		lines = lines.Take(cfg.Limit)
	}
	return lines, nil
}

func buildSource(cfg *config.Config, deps Deps) (*seq.Sequence[int64], error) {
	src := cfg.Source
	switch src.Kind {
	case "range":
		return seq.RangeSafe(src.Start, src.Stop, src.Step)

	case "count":
		return seq.Count(src.Start, src.Step), nil

	case "cron":
		after := time.Now()
		if deps.Now != nil {
			after = deps.Now()
		}
		if src.After != "" {
			t, err := time.Parse(time.RFC3339, src.After)
			if err != nil {
				return nil, gferrors.NewValidationError(module, "after", src.After, "must be an RFC 3339 time")
			}
			after = t
		}
		var opts []cronseq.Option
		if src.Seconds {
			opts = append(opts, cronseq.WithSeconds())
		}
		times, err := cronseq.Times(src.Cron, after, opts...)
		if err != nil {
			return nil, err
		}
		return seq.Map(times, func(t time.Time) int64 { return t.Unix() }), nil

	case "redis":
		if err := validation.Present(module, "redis", deps.Redis); err != nil {
			return nil, err
		}
		list, err := redisseq.NewList(deps.Redis, src.Key, redisseq.WithPageSize(cfg.Redis.PageSize))
		if err != nil {
			return nil, err
		}
		return seq.TryMap(list, parseInt), nil

	default:
		return nil, gferrors.NewValidationError(module, "source", src.Kind, "unknown source kind")
	}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, gferrors.NewOperationError(module, "parse", err).WithContext("value=" + s)
	}
	return v, nil
}

// apply appends a type-preserving operator to s.
func apply(s *seq.Sequence[int64], op Op) (*seq.Sequence[int64], error) {
	switch op.Name {
	case "map":
		return applyMap(s, op)
	case "filter":
		return applyFilter(s, op)

	case "take", "drop", "step":
		n, err := op.intArg(0, 0)
		if err != nil {
			return nil, err
		}
		switch op.Name {
		case "take":
			if err := validation.NonNegative(module, "take", n); err != nil {
				return nil, err
			}
			return s.Take(n), nil
		case "drop":
			if err := validation.NonNegative(module, "drop", n); err != nil {
				return nil, err
			}
			return s.Drop(n), nil
		default:
			if err := validation.Positive(module, "step", n); err != nil {
				return nil, err
			}
			return s.Step(n), nil
		}

	case "slice":
		return applySlice(s, op)

	case "takewhile":
		pred, err := comparison(op, 0)
		if err != nil {
			return nil, err
		}
		return s.TakeWhile(pred), nil

	case "accumulate":
		return applyAccumulate(s, op)

	case "cycle":
		times, err := op.intArg(0, seq.Forever)
		if err != nil {
			return nil, err
		}
		return s.Cycle(times), nil
	}
	return nil, gferrors.NewValidationError(module, "op", op.String(), "unknown operator")
}

func applyMap(s *seq.Sequence[int64], op Op) (*seq.Sequence[int64], error) {
	if op.Args[0] == "neg" {
		return s.Map(func(x int64) int64 { return -x }), nil
	}
	if len(op.Args) != 2 {
		return nil, gferrors.NewValidationError(module, "map", op.String(), "missing operand")
	}
	n, err := op.int64Arg(1)
	if err != nil {
		return nil, err
	}
	switch op.Args[0] {
	case "add":
		return s.Map(func(x int64) int64 { return x + n }), nil
	case "mul":
		return s.Map(func(x int64) int64 { return x * n }), nil
	}
	return nil, gferrors.NewValidationError(module, "map", op.Args[0], "must be one of: add mul neg")
}

func applyFilter(s *seq.Sequence[int64], op Op) (*seq.Sequence[int64], error) {
	switch op.Args[0] {
	case "even":
		return s.Filter(func(x int64) bool { return x%2 == 0 }), nil
	case "odd":
		return s.Filter(func(x int64) bool { return x%2 != 0 }), nil
	case "truthy":
		return s.Filter(nil), nil
	}
	pred, err := comparison(op, 0)
	if err != nil {
		return nil, err
	}
	return s.Filter(pred), nil
}

// comparison builds the predicate "lt:N" or "gt:N" found at args[i:].
func comparison(op Op, i int) (func(int64) bool, error) {
	if len(op.Args) != i+2 {
		return nil, gferrors.NewValidationError(module, op.Name, op.String(), "missing operand")
	}
	n, err := op.int64Arg(i + 1)
	if err != nil {
		return nil, err
	}
	switch op.Args[i] {
	case "lt":
		return func(x int64) bool { return x < n }, nil
	case "gt":
		return func(x int64) bool { return x > n }, nil
	}
	return nil, gferrors.NewValidationError(module, op.Name, op.Args[i], "must be one of: lt gt")
}

func applySlice(s *seq.Sequence[int64], op Op) (*seq.Sequence[int64], error) {
	start, err := op.intArg(0, 0)
	if err != nil {
		return nil, err
	}
	stop := seq.Unbounded
	if len(op.Args) > 1 && op.Args[1] != "-" && op.Args[1] != "" {
		if stop, err = op.intArg(1, seq.Unbounded); err != nil {
			return nil, err
		}
		if err := validation.NonNegative(module, "stop", stop); err != nil {
			return nil, err
		}
	}
	step, err := op.intArg(2, 1)
	if err != nil {
		return nil, err
	}
	if err := validation.NonNegative(module, "start", start); err != nil {
		return nil, err
	}
	if err := validation.Positive(module, "step", step); err != nil {
		return nil, err
	}
	return s.Slice(start, stop, step), nil
}

func applyAccumulate(s *seq.Sequence[int64], op Op) (*seq.Sequence[int64], error) {
	var fn func(acc, next int64) int64
	switch op.Args[0] {
	case "sum":
		fn = func(acc, next int64) int64 { return acc + next }
	case "product":
		fn = func(acc, next int64) int64 { return acc * next }
	case "max":
		fn = func(acc, next int64) int64 { return max(acc, next) }
	case "min":
		fn = func(acc, next int64) int64 { return min(acc, next) }
	default:
		return nil, gferrors.NewValidationError(module, "accumulate", op.Args[0], "must be one of: sum product max min")
	}

	if len(op.Args) == 2 {
		seed, err := op.int64Arg(1)
		if err != nil {
			return nil, err
		}
		return s.AccumulateFrom(fn, seed), nil
	}
	return s.Accumulate(fn), nil
}

// render formats the values, applying the shaping operator last if any.
func render(s *seq.Sequence[int64], last *Op, deps Deps) (*seq.Sequence[string], error) {
	format := func(x int64) string { return strconv.FormatInt(x, 10) }
	if last == nil {
		return seq.Map(s, format), nil
	}

	switch last.Name {
	case "window":
		n, err := last.intArg(0, seq.DefaultWindow)
		if err != nil {
			return nil, err
		}
		if err := validation.Positive(module, "window", n); err != nil {
			return nil, err
		}
		return seq.Map(seq.Window(s, n), joinInts), nil

	case "tee":
		n, err := last.intArg(0, seq.DefaultSplits)
		if err != nil {
			return nil, err
		}
		if err := validation.Positive(module, "tee", n); err != nil {
			return nil, err
		}
		branches := seq.TeeWithMetrics(s, n, "pipeline", deps.Metrics)
		sources := make([]seq.Source[int64], len(branches))
		for i, b := range branches {
			sources[i] = b
		}
		return seq.Map(seq.Zip(sources...), joinInts), nil

	case "enumerate":
		return seq.Map(seq.Enumerate(s), func(p seq.Indexed[int64]) string {
			return fmt.Sprintf("%d\t%d", p.Index, p.Value)
		}), nil
	}
	return nil, gferrors.NewValidationError(module, "op", last.String(), "unknown operator")
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, " ")
}

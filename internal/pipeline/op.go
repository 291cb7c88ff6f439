package pipeline

import (
	"strconv"
	"strings"

	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
)

const module = "pipeline"

// Op is one parsed pipeline operator such as "slice:1:9:3".
type Op struct {
	Name string
	Args []string
}

func (o Op) String() string {
	return strings.Join(append([]string{o.Name}, o.Args...), ":")
}

// shaping operators change the element type and must end the pipeline.
var shaping = map[string]bool{
	"tee":       true,
	"window":    true,
	"enumerate": true,
}

// arity holds the minimum and maximum argument count of every operator.
var arity = map[string][2]int{
	"map":        {1, 2},
	"filter":     {1, 2},
	"take":       {1, 1},
	"drop":       {1, 1},
	"step":       {1, 1},
	"slice":      {1, 3},
	"takewhile":  {2, 2},
	"accumulate": {1, 2},
	"cycle":      {0, 1},
	"tee":        {0, 1},
	"window":     {0, 1},
	"enumerate":  {0, 0},
}

// ParseOp parses "name[:arg...]".
func ParseOp(s string) (Op, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	op := Op{Name: strings.ToLower(parts[0]), Args: parts[1:]}

	bounds, ok := arity[op.Name]
	if !ok {
		return Op{}, gferrors.NewValidationError(module, "op", s, "unknown operator")
	}
	if n := len(op.Args); n < bounds[0] || n > bounds[1] {
		return Op{}, gferrors.NewValidationError(module, "op", s, "wrong number of arguments").
			WithHint("expected " + strconv.Itoa(bounds[0]) + " to " + strconv.Itoa(bounds[1]))
	}
	return op, nil
}

// ParseOps parses every operator and checks that shaping operators come last.
func ParseOps(specs []string) ([]Op, error) {
	ops := make([]Op, 0, len(specs))
	for i, s := range specs {
		op, err := ParseOp(s)
		if err != nil {
			return nil, err
		}
		if shaping[op.Name] && i != len(specs)-1 {
			return nil, gferrors.NewValidationError(module, "op", s, "must be the last operator")
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (o Op) int64Arg(i int) (int64, error) {
	v, err := strconv.ParseInt(o.Args[i], 10, 64)
	if err != nil {
		return 0, gferrors.NewValidationError(module, o.Name, o.Args[i], "not an integer")
	}
	return v, nil
}

// intArg parses argument i, or returns def when it is absent.
func (o Op) intArg(i int, def int) (int, error) {
	if i >= len(o.Args) {
		return def, nil
	}
	v, err := strconv.Atoi(o.Args[i])
	if err != nil {
		return 0, gferrors.NewValidationError(module, o.Name, o.Args[i], "not an integer")
	}
	return v, nil
}

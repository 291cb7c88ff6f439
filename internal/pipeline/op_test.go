package pipeline

import (
	"testing"

	"github.com/vnykmshr/genflow/internal/testutil"
	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
)

func TestParseOp(t *testing.T) {
	op, err := ParseOp(" Slice:1:9:3 ")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, op.Name, "slice")
	testutil.AssertDeepEqual(t, op.Args, []string{"1", "9", "3"})
	testutil.AssertEqual(t, op.String(), "slice:1:9:3")

	op, err = ParseOp("enumerate")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(op.Args), 0)
}

func TestParseOpErrors(t *testing.T) {
	for _, s := range []string{"", "shuffle", "take", "take:1:2", "enumerate:1", "takewhile:lt"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseOp(s)
			if !gferrors.IsValidationError(err) {
				t.Fatalf("ParseOp(%q) = %v, want a validation error", s, err)
			}
		})
	}
}

func TestParseOpsShapingMustBeLast(t *testing.T) {
	_, err := ParseOps([]string{"take:3", "window:2"})
	testutil.AssertNoError(t, err)

	_, err = ParseOps([]string{"window:2", "take:3"})
	testutil.AssertError(t, err)
	_, err = ParseOps([]string{"tee", "enumerate"})
	testutil.AssertError(t, err)
}

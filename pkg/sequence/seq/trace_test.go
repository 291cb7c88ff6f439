package seq

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/genflow/internal/testutil"
)

// logLines decodes the JSON lines written by zerolog.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestTrace(t *testing.T) {
	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)

	got := collect(t, Of("a", "b").Trace(logger, "letters"))
	testutil.AssertDeepEqual(t, got, []string{"a", "b"})

	lines := logLines(t, &buf)
	testutil.AssertEqual(t, len(lines), 3)

	testutil.AssertEqual(t, lines[0]["level"], any("trace"))
	testutil.AssertEqual(t, lines[0]["sequence"], any("letters"))
	testutil.AssertEqual(t, lines[0]["value"], any("a"))
	testutil.AssertEqual(t, lines[1]["index"], any(1.0))

	testutil.AssertEqual(t, lines[2]["level"], any("debug"))
	testutil.AssertEqual(t, lines[2]["message"], any("exhausted"))
	testutil.AssertEqual(t, lines[2]["count"], any(2.0))
}

func TestTraceLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	mock := testutil.NewMockSource(1)
	mock.SetErrorOnNth(1)
	s := New[int](mock).Trace(logger, "failing")

	_, _, err := s.Next(context.Background())
	testutil.AssertError(t, err)
	testutil.AssertDeepEqual(t, collect(t, s), []int{1})

	// Values and exhaustion are below the configured level.
	lines := logLines(t, &buf)
	testutil.AssertEqual(t, len(lines), 1)
	testutil.AssertEqual(t, lines[0]["level"], any("error"))
	testutil.AssertEqual(t, lines[0]["error"], any(testutil.ErrSimulated.Error()))
}

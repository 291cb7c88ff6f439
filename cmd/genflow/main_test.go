package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/vnykmshr/genflow/internal/testutil"
)

func TestRunPrintsPipeline(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--source=range", "--start=0", "--stop=10",
		"--op=filter:odd", "--op=map:mul:3", "--op=window:2",
		"--log-level=error",
	}, &out)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.String(), "3 9\n9 15\n15 21\n21 27\n")
}

func TestRunLimit(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--source=count", "--start=5", "--limit=3", "--log-level=error",
	}, &out)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.String(), "5\n6\n7\n")
}

func TestRunWritesRedisList(t *testing.T) {
	mr := miniredis.RunT(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--source=range", "--stop=4", "--op=accumulate:sum",
		"--redis-addr=" + mr.Addr(), "--redis-output=sums",
		"--log-level=error",
	}, &out)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.Len(), 0)

	got, err := mr.List("sums")
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, got, []string{"0", "1", "3", "6"})
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--source=bogus", "--log-level=error"}, &out)
	testutil.AssertError(t, err)
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	testutil.AssertNoError(t, run(context.Background(), []string{"--help"}, &out))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"--source=count", "--log-level=error"}, &out)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.Len(), 0)
}

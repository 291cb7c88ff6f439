package seq

import (
	"context"
	"testing"

	"github.com/vnykmshr/genflow/internal/testutil"
)

func TestDrop(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"zero", 0, []int{0, 1, 2, 3, 4}},
		{"one", 1, []int{1, 2, 3, 4}},
		{"all", 5, []int{}},
		{"beyond length", 50, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertDeepEqual(t, collect(t, Range(5).Drop(tt.n)), tt.want)
		})
	}
}

func TestDropIsLazy(t *testing.T) {
	mock := testutil.NewMockSource(1, 2, 3, 4)
	s := Drop[int](mock, 2)
	testutil.AssertEqual(t, mock.Pulls(), 0)

	v, ok := pull[int](t, s)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, v, 3)
	testutil.AssertEqual(t, mock.Pulls(), 3)
}

func TestDropResumesAfterError(t *testing.T) {
	mock := testutil.NewMockSource(1, 2, 3, 4)
	mock.SetErrorOnNth(2)
	s := Drop[int](mock, 2)

	_, _, err := s.Next(context.Background())
	testutil.AssertError(t, err)
	// The element skipped before the failure stays skipped.
	testutil.AssertDeepEqual(t, collect(t, s), []int{3, 4})
}

func TestStep(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"one", 1, []int{0, 1, 2, 3, 4, 5, 6}},
		{"two", 2, []int{0, 2, 4, 6}},
		{"three", 3, []int{0, 3, 6}},
		{"larger than length", 10, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertDeepEqual(t, collect(t, Range(7).Step(tt.n)), tt.want)
		})
	}
}

func TestStepDoesNotReadAhead(t *testing.T) {
	mock := testutil.NewMockSource(0, 1, 2, 3, 4, 5)
	s := StepBy[int](mock, 3)

	v, ok := pull[int](t, s)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, v, 0)
	testutil.AssertEqual(t, mock.Pulls(), 1)

	v, _ = pull[int](t, s)
	testutil.AssertEqual(t, v, 3)
	testutil.AssertEqual(t, mock.Pulls(), 4)
}

func TestStepRejectsNonPositive(t *testing.T) {
	testutil.AssertPanics(t, func() { Range(5).Step(0) })
	testutil.AssertPanics(t, func() { Range(5).Step(-2) })
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step int
		want              []int
	}{
		{"everything", 0, Unbounded, 1, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"start only", 7, Unbounded, 1, []int{7, 8, 9}},
		{"start and stop", 2, 5, 1, []int{2, 3, 4}},
		{"with step", 1, 9, 3, []int{1, 4}},
		{"exact step", 1, 10, 3, []int{1, 4, 7}},
		{"unbounded with step", 1, Unbounded, 4, []int{1, 5, 9}},
		{"stop before start", 5, 2, 1, []int{}},
		{"stop past end", 8, 20, 1, []int{8, 9}},
		{"uneven step", 0, 10, 4, []int{0, 4}},
		{"step wider than span", 3, 5, 4, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, Range(10).Slice(tt.start, tt.stop, tt.step))
			testutil.AssertDeepEqual(t, got, tt.want)
		})
	}
}

func TestSliceCountRoundsDown(t *testing.T) {
	for start := 0; start < 6; start++ {
		for stop := 0; stop < 12; stop++ {
			for step := 1; step < 5; step++ {
				got := collect(t, Slice(Count(0, 1), start, stop, step))

				count := 0
				if stop > start {
					count = (stop - start) / step
				}
				testutil.AssertEqual(t, len(got), count)

				// The selected indices are the first ones Range would produce.
				want := collect(t, Range(start, stop, step).Take(count))
				testutil.AssertDeepEqual(t, got, want)
			}
		}
	}
}

func TestSliceNeverPullsPastStop(t *testing.T) {
	mock := testutil.NewMockSource(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	testutil.AssertDeepEqual(t, collect(t, Slice[int](mock, 1, 5, 2)), []int{1, 3})
	testutil.AssertEqual(t, mock.Pulls(), 4)
}

func TestSliceRejectsInvalidArguments(t *testing.T) {
	testutil.AssertPanics(t, func() { Range(5).Slice(-1, 3, 1) })
	testutil.AssertPanics(t, func() { Range(5).Slice(0, 3, 0) })
	testutil.AssertPanics(t, func() { Range(5).Slice(0, -2, 1) })
}

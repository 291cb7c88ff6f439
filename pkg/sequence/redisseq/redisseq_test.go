package redisseq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/genflow/internal/testutil"
	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
	"github.com/vnykmshr/genflow/pkg/sequence/seq"
)

// newTestClient creates a go-redis client backed by miniredis.
func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// Complete the connection handshake so command counts only see the test.
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to ping miniredis: %v", err)
	}
	return client, mini
}

func drain[T any](t *testing.T, s *seq.Sequence[T]) []T {
	t.Helper()
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	got, err := s.ToSlice(ctx)
	testutil.AssertNoError(t, err)
	return got
}

func TestNewList(t *testing.T) {
	client, mini := newTestClient(t)
	mini.RPush("numbers", "1", "2", "3", "4", "5")

	tests := []struct {
		name     string
		pageSize int
	}{
		{"single page", DefaultPageSize},
		{"exact pages", 5},
		{"partial last page", 2},
		{"one per page", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewList(client, "numbers", WithPageSize(tt.pageSize))
			testutil.AssertNoError(t, err)
			testutil.AssertDeepEqual(t, drain(t, s), []string{"1", "2", "3", "4", "5"})
		})
	}

	// Reading never modifies the list.
	left, err := mini.List("numbers")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(left), 5)
}

func TestNewListMissingKey(t *testing.T) {
	client, _ := newTestClient(t)
	s, err := NewList(client, "missing")
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, drain(t, s), []string{})
}

func TestNewListFetchesPagesLazily(t *testing.T) {
	client, mini := newTestClient(t)
	mini.RPush("letters", "a", "b", "c", "d", "e")

	s, err := NewList(client, "letters", WithPageSize(2))
	testutil.AssertNoError(t, err)
	ctx := context.Background()

	_, _, err = s.Next(ctx)
	testutil.AssertNoError(t, err)
	before := mini.CommandCount()

	v, _, err := s.Next(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, "b")
	testutil.AssertEqual(t, mini.CommandCount(), before)

	v, _, err = s.Next(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, "c")
	testutil.AssertEqual(t, mini.CommandCount(), before+1)
}

func TestNewListTakeStopsFetching(t *testing.T) {
	client, mini := newTestClient(t)
	for i := 0; i < 50; i++ {
		mini.RPush("big", "x")
	}

	s, err := NewList(client, "big", WithPageSize(10))
	testutil.AssertNoError(t, err)
	before := mini.CommandCount()
	testutil.AssertEqual(t, len(drain(t, s.Take(15))), 15)
	testutil.AssertEqual(t, mini.CommandCount()-before, 2)
}

func TestNewListErrorsAreRetried(t *testing.T) {
	client, mini := newTestClient(t)
	mini.RPush("flaky", "1", "2")

	s, err := NewList(client, "flaky")
	testutil.AssertNoError(t, err)

	mini.SetError("ERR simulated failure")
	_, ok, err := s.Next(context.Background())
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, ok, false)
	if !gferrors.IsOperationError(err) {
		t.Fatalf("got %T, want *errors.OperationError", err)
	}
	if !errors.Is(err, gferrors.ErrSourceFailed) {
		t.Fatalf("error %v should wrap ErrSourceFailed", err)
	}

	mini.SetError("")
	testutil.AssertDeepEqual(t, drain(t, s), []string{"1", "2"})
}

func TestNewPop(t *testing.T) {
	for _, pageSize := range []int{1, 2, DefaultPageSize} {
		client, mini := newTestClient(t)
		mini.RPush("queue", "a", "b", "c")

		s, err := NewPop(client, "queue", WithPageSize(pageSize))
		testutil.AssertNoError(t, err)
		testutil.AssertDeepEqual(t, drain(t, s), []string{"a", "b", "c"})
		testutil.AssertEqual(t, mini.Exists("queue"), false)
	}
}

func TestNewPopSinglePageSizeRemovesOnlyPulled(t *testing.T) {
	client, mini := newTestClient(t)
	mini.RPush("queue", "a", "b", "c")

	s, err := NewPop(client, "queue", WithPageSize(1))
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, drain(t, s.Take(1)), []string{"a"})

	left, err := mini.List("queue")
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, left, []string{"b", "c"})
}

func TestNewStream(t *testing.T) {
	client, mini := newTestClient(t)
	for _, id := range []string{"1-1", "1-2", "2-0", "5-7", "9-0"} {
		_, err := mini.XAdd("events", id, []string{"id", id})
		testutil.AssertNoError(t, err)
	}

	for _, pageSize := range []int{1, 2, DefaultPageSize} {
		s, err := NewStream(client, "events", WithPageSize(pageSize))
		testutil.AssertNoError(t, err)

		ids := seq.Map(s, func(m redis.XMessage) string { return m.ID })
		testutil.AssertDeepEqual(t, drain(t, ids), []string{"1-1", "1-2", "2-0", "5-7", "9-0"})
	}
}

func TestNewStreamValues(t *testing.T) {
	client, mini := newTestClient(t)
	_, err := mini.XAdd("events", "3-0", []string{"kind", "click"})
	testutil.AssertNoError(t, err)

	s, err := NewStream(client, "events")
	testutil.AssertNoError(t, err)

	msgs := drain(t, s)
	testutil.AssertEqual(t, len(msgs), 1)
	testutil.AssertEqual(t, msgs[0].Values["kind"], any("click"))
}

func TestNextStreamID(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"0-0", "0-1"},
		{"1526919030474-55", "1526919030474-56"},
		{"7-18446744073709551615", "8-0"},
		{"18446744073709551615-18446744073709551615", ""},
		{"12", "12-1"},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, nextStreamID(tt.id), tt.want)
	}
}

func TestWriteList(t *testing.T) {
	client, mini := newTestClient(t)

	n, err := WriteList(context.Background(), client, "out", seq.Range(7), WithPageSize(3))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, int64(7))

	got, err := mini.List("out")
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, got, []string{"0", "1", "2", "3", "4", "5", "6"})
}

func TestWriteListRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := WriteList(ctx, client, "copy", seq.Of("x", "y"))
	testutil.AssertNoError(t, err)

	s, err := NewList(client, "copy")
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, drain(t, s), []string{"x", "y"})
}

func TestWriteListStopsOnSourceError(t *testing.T) {
	client, mini := newTestClient(t)

	mock := testutil.NewMockSource("a", "b", "c", "d")
	mock.SetErrorOnNth(4)

	n, err := WriteList[string](context.Background(), client, "partial", mock, WithPageSize(2))
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, n, int64(2))

	got, _ := mini.List("partial")
	testutil.AssertDeepEqual(t, got, []string{"a", "b"})
}

func TestInvalidOptions(t *testing.T) {
	client, _ := newTestClient(t)

	tests := []struct {
		name   string
		client redis.Cmdable
		key    string
		opts   []Option
	}{
		{"nil client", nil, "k", nil},
		{"empty key", client, "", nil},
		{"zero page size", client, "k", []Option{WithPageSize(0)}},
		{"negative timeout", client, "k", []Option{WithTimeout(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewList(tt.client, tt.key, tt.opts...)
			if !gferrors.IsValidationError(err) {
				t.Fatalf("NewList: got %v, want a validation error", err)
			}
			_, err = NewPop(tt.client, tt.key, tt.opts...)
			testutil.AssertError(t, err)
			_, err = NewStream(tt.client, tt.key, tt.opts...)
			testutil.AssertError(t, err)
			_, err = WriteList(context.Background(), tt.client, tt.key, seq.Of(1), tt.opts...)
			testutil.AssertError(t, err)
		})
	}
}

package integration

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/genflow/internal/testutil"
	"github.com/vnykmshr/genflow/pkg/metrics"
	"github.com/vnykmshr/genflow/pkg/sequence/redisseq"
	"github.com/vnykmshr/genflow/pkg/sequence/seq"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// TestRedisListThroughTeeToRedis reads a list page by page, fans it out to
// two consumers and writes each consumer's result back to Redis, verifying
// data and metrics flow through every component.
func TestRedisListThroughTeeToRedis(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	values := make([]string, 25)
	for i := range values {
		values[i] = strconv.Itoa(i)
	}
	mr.RPush("readings", values...)

	reg := prometheus.NewRegistry()
	config := metrics.Config{Enabled: true, Registry: reg}

	list, err := redisseq.NewList(client, "readings", redisseq.WithPageSize(4))
	testutil.AssertNoError(t, err)
	numbers := seq.TryMap(list, strconv.Atoi).Instrument("readings", config)

	branches := seq.TeeWithMetrics[int](numbers, 2, "readings", config)
	evens := branches[0].Filter(func(n int) bool { return n%2 == 0 })
	sums := branches[1].Accumulate(func(acc, n int) int { return acc + n })

	n, err := redisseq.WriteList[int](ctx, client, "evens", evens, redisseq.WithPageSize(5))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, int64(13))

	// The second branch replays everything the first one buffered.
	n, err = redisseq.WriteList[int](ctx, client, "sums", sums)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, int64(25))

	gotSums, err := mr.List("sums")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, gotSums[24], "300")

	r := metrics.NewRegistry(reg)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.SequenceItems.WithLabelValues("readings")), 25.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.SequenceExhausted.WithLabelValues("readings")), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.TeeBufferLength.WithLabelValues("readings")), 0.0)
}

// TestRedisQueueDrainedByConcurrentBranches pops a queue once and consumes
// the branches from separate goroutines.
func TestRedisQueueDrainedByConcurrentBranches(t *testing.T) {
	mr, client := newRedis(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	mr.RPush("jobs", "a", "b", "c", "d", "e", "f", "g")

	jobs, err := redisseq.NewPop(client, "jobs", redisseq.WithPageSize(3))
	testutil.AssertNoError(t, err)
	branches := jobs.Tee(3)

	results := make([][]string, len(branches))
	var wg sync.WaitGroup
	for i, branch := range branches {
		wg.Add(1)
		go func(i int, branch *seq.Sequence[string]) {
			defer wg.Done()
			got, err := branch.ToSlice(ctx)
			if err != nil {
				t.Errorf("branch %d: %v", i, err)
			}
			results[i] = got
		}(i, branch)
	}
	wg.Wait()

	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, got := range results {
		testutil.AssertDeepEqual(t, got, want)
	}
	testutil.AssertEqual(t, mr.Exists("jobs"), false)
}

// TestRedisStreamWindows pairs consecutive stream entries.
func TestRedisStreamWindows(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: "temps",
			ID:     strconv.Itoa(i) + "-0",
			Values: map[string]interface{}{"celsius": strconv.Itoa(i * 10)},
		}).Err()
		testutil.AssertNoError(t, err)
	}

	stream, err := redisseq.NewStream(client, "temps", redisseq.WithPageSize(2))
	testutil.AssertNoError(t, err)

	celsius := seq.TryMap(stream, func(m redis.XMessage) (int, error) {
		return strconv.Atoi(m.Values["celsius"].(string))
	})
	deltas := seq.Map(seq.Window(celsius, 2), func(w []int) int { return w[1] - w[0] })

	got, err := deltas.ToSlice(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertDeepEqual(t, got, []int{10, 10, 10, 10})
}

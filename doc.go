/*
Package genflow provides lazy, pull-based sequences for Go with a full set of
combinators, plus sources backed by cron schedules and Redis.

Sequences (pkg/sequence):
  - seq: Sequence, Count and Range, and the map, filter, take, window, zip,
    tee, accumulate, cycle, slice, flatten and enumerate operators
  - cronseq: cron activation times
  - redisseq: Redis lists and streams

Support (pkg):
  - metrics: Prometheus collectors for instrumented sequences and tee buffers
  - common/errors, common/validation: shared error types and argument checks

Command genflow (cmd/genflow) builds and prints a pipeline from flags, a
config file or the environment.

Example usage:

	import "github.com/vnykmshr/genflow/pkg/sequence/seq"

	evens, _ := seq.Count(0, 1).
		Filter(func(x int) bool { return x%2 == 0 }).
		Take(5).
		ToSlice(ctx) // [0 2 4 6 8]
*/
package genflow

/*
Package seq provides lazy, pull-based sequences and the combinators that
transform them.

A Sequence produces values one at a time, only when it is pulled. Operators
wrap one or more sequences and return a new one whose pulls are defined in
terms of their inputs' pulls, so nothing runs until a consumer asks for a
value and infinite sequences are ordinary.

Core Concepts:

Every sequence is built on the Source interface:

	type Source[T any] interface {
		Next(ctx context.Context) (T, bool, error)
	}

Next returns a value and true, or false once the source is exhausted. A
*Sequence guarantees exhaustion is permanent: it never pulls its source
again after exhaustion was reported. A non-nil error reports a failed pull;
it is not exhaustion, and every operator returns it to its caller unchanged.

Basic Usage:

	// Running totals of the first five even squares
	totals, err := seq.Map(seq.Count(0, 1), func(i int) int { return i * i }).
		Filter(func(x int) bool { return x%2 == 0 }).
		Take(5).
		Accumulate(func(acc, x int) int { return acc + x }).
		ToSlice(ctx)

	fmt.Println(totals) // [0 4 20 56 120]

Sources:

	seq.Range(5)           // 0 1 2 3 4
	seq.Range(3, 8)        // 3 4 5 6 7
	seq.Range(1, 9, 3)     // 1 4 7
	seq.Count(10, 5)       // 10 15 20 ... (infinite)
	seq.Of("a", "b")       // from values
	seq.FromSlice(values)  // from a slice
	seq.FromChannel(ch)    // until ch is closed
	seq.Generate(rand.Int) // infinite, one call per pull

Operators:

Operators that keep the element type are available both as package
functions and as chainable methods:

	s.Filter(pred)            // values satisfying pred; nil means Truthy
	s.Take(n)                 // at most n values
	s.TakeWhile(pred)         // until pred first fails
	s.Drop(n)                 // all but the first n values
	s.Step(n)                 // values at indices 0, n, 2n, ...
	s.Slice(start, stop, step)
	s.Accumulate(op)          // running fold
	s.Cycle(times)            // replay; Forever repeats without end
	s.Tee(n)                  // n independent branches
	s.Flatten()               // expand nested sequences and slices

Operators that change the element type are package functions, because Go
methods cannot introduce type parameters:

	seq.Map(s, strconv.Itoa)  // *Sequence[string]
	seq.Enumerate(s)          // *Sequence[Indexed[T]]
	seq.Window(s, 3)          // *Sequence[[]T]
	seq.Zip(a, b, c)          // *Sequence[[]T]

Tee:

Tee splits one sequence into branches that each see every value. The source
is pulled once per value; values are buffered until the slowest branch has
read them, so the buffer holds exactly the values between the slowest and
the fastest branch. Branches may be consumed from different goroutines.

	branches := seq.Range(4).Tee(3)
	rows, _ := seq.Zip(branches[0], branches[1], branches[2]).ToSlice(ctx)
	// [[0 0 0] [1 1 1] [2 2 2] [3 3 3]]

Error Handling:

Malformed arguments such as a negative Take or a zero Window panic when the
operator is built with a *errors.ValidationError from
github.com/vnykmshr/genflow/pkg/common/errors. RangeSafe returns the error
instead. Failures of upstream pulls and of TryMap mappers are returned from
Next; operators keep their state, so the next pull resumes where the failed
one stopped. Nothing is retried automatically.

Observability:

Instrument reports pulls, values, failures and pull latency to Prometheus,
and TeeWithMetrics reports tee buffer lengths. Trace logs every pull to a
zerolog.Logger.

Thread Safety:

A Sequence must not be pulled from several goroutines at once. Tee branches
are the exception: their shared buffer is guarded by a mutex.
*/
package seq

/*
Package sequence groups the lazy-sequence packages of genflow.

  - seq: the Sequence type, generator sources and every combinator
  - cronseq: activation times of cron schedules as sequences
  - redisseq: Redis lists and streams as sequences, and a list sink

Basic usage:

	times, _ := cronseq.Times("0 9 * * 1-5", time.Now())
	next, _ := times.Take(3).ToSlice(ctx)

	items, _ := redisseq.NewList(client, "jobs")
	lengths := seq.Map(items, func(s string) int { return len(s) })

Every package builds on seq.Source, so sequences from any of them compose
with all seq operators.
*/
package sequence

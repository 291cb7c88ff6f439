// Package metrics provides Prometheus instrumentation for genflow sequences.
//
// Sequences are not instrumented by default. Wrap the stages you care about:
//
//	registry := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: registry}
//
//	s := seq.Range(1000).Instrument("numbers", cfg).Filter(isPrime)
//	branches := seq.TeeWithMetrics(s, 2, "primes", cfg)
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
//   - genflow_sequence_pulls_total: pulls on an instrumented sequence
//   - genflow_sequence_items_total: values it yielded
//   - genflow_sequence_errors_total: pulls that failed
//   - genflow_sequence_exhausted_total: times it reported exhaustion (at most once)
//   - genflow_sequence_pull_duration_seconds: time spent per pull, upstream included
//   - genflow_tee_buffer_length: values held for slower tee branches
//   - genflow_tee_branches: branches sharing a tee buffer
//
// Every series carries a "sequence" label with the name given at
// instrumentation time. Keep those names low-cardinality.
//
// # Registries
//
// A Config without Registry reports to prometheus.DefaultRegisterer under its
// own Namespace and Labels; with neither set it shares the collectors of
// DefaultRegistry, registered at init time. NewRegistry can be called
// repeatedly for the same registerer: collectors that already exist are
// reused rather than registered twice.
package metrics

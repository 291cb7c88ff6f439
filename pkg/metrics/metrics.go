// Package metrics provides Prometheus instrumentation for genflow sequences.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metric instances for genflow components.
type Registry struct {
	// Sequence Metrics
	SequencePulls     *prometheus.CounterVec
	SequenceItems     *prometheus.CounterVec
	SequenceErrors    *prometheus.CounterVec
	SequenceExhausted *prometheus.CounterVec
	PullDuration      *prometheus.HistogramVec

	// Tee Metrics
	TeeBufferLength *prometheus.GaugeVec
	TeeBranches     *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by genflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Calling it again with the same registerer returns collectors bound to the
// series registered the first time.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	return &Registry{
		SequencePulls: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "sequence",
				Name:        "pulls_total",
				Help:        "Total number of pulls on instrumented sequences",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		SequenceItems: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "sequence",
				Name:        "items_total",
				Help:        "Total number of values yielded by instrumented sequences",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		SequenceErrors: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "sequence",
				Name:        "errors_total",
				Help:        "Total number of failed pulls on instrumented sequences",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		SequenceExhausted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "sequence",
				Name:        "exhausted_total",
				Help:        "Number of instrumented sequences that reached exhaustion",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		PullDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "sequence",
				Name:        "pull_duration_seconds",
				Help:        "Time spent in a single pull, including upstream pulls",
				Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		TeeBufferLength: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "tee",
				Name:        "buffer_length",
				Help:        "Values held by a tee buffer for its slower branches",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),

		TeeBranches: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "tee",
				Name:        "branches",
				Help:        "Number of branches sharing a tee buffer",
				ConstLabels: config.Labels,
			},
			[]string{"sequence"},
		)),
	}
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

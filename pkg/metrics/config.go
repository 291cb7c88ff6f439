package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every genflow metric unless Config.Namespace is set.
const DefaultNamespace = "genflow"

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, prometheus.DefaultRegisterer is used.
	Registry prometheus.Registerer

	// Namespace overrides the default "genflow" namespace for metrics.
	Namespace string

	// Labels are constant labels added to all metrics of the registry.
	// A registerer must always be used with the same Labels.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
		Labels:    nil,
	}
}

// Resolve returns the Registry a component configured with c should report to.
// It returns nil when metrics are disabled. A nil Registry reports to
// prometheus.DefaultRegisterer, still under c's Namespace and Labels.
func (c Config) Resolve() *Registry {
	if !c.Enabled {
		return nil
	}
	return NewRegistryWithConfig(c)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option tunes a Manager before its collectors are registered. Options run
// once, inside NewManager; changing them later has no effect.
type Option func(*Manager)

// WithNamespace replaces "silentdrop" in every metric name, e.g.
// clinic_scorer_assessments_total.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces "scorer" in every metric name.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithDurationBuckets lays out http_request_duration_milliseconds and the
// GC pause histogram.
func WithDurationBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.durationBuckets = buckets
		}
	}
}

// WithScoreBuckets lays out the score histogram, e.g. {30, 60, 100} to
// line buckets up with the risk thresholds.
func WithScoreBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.scoreBuckets = buckets
		}
	}
}

// WithMetricsEnabled starts the manager recording or muted.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) { m.enabled.Store(enabled) }
}

// WithRefreshInterval sets the tick of the memory and goroutine gauges.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithConstLabels stamps every series, e.g. {"clinic": "north"} when several
// scorers report into one Prometheus.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.constLabels = labels
		}
	}
}

// WithMetricPrefix inserts prefix between subsystem and name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithRegistry registers the collectors on registry. Without it they land on
// prometheus.DefaultRegisterer, which /metrics does not serve.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Package metrics provides Prometheus metrics for the silent dropout scorer.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Bucket layouts.
var (
	defaultScoreBuckets    = prometheus.LinearBuckets(10, 10, 10)                                // 10..100
	defaultDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}          // milliseconds
	batchBuckets           = prometheus.ExponentialBuckets(1, 2, 10)                             // 1..512
	latencyBuckets         = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} // microseconds
)

// Manager manages all Prometheus metrics for the scorer service.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	scoreBuckets    []float64
	enabled         atomic.Bool
	refreshInterval time.Duration
	constLabels     map[string]string
	metricPrefix    string
	registry        prometheus.Registerer

	// Core business metrics
	assessments    *prometheus.CounterVec
	scores         prometheus.Histogram
	invalidInputs  *prometheus.CounterVec
	batchSize      prometheus.Histogram
	scoringLatency prometheus.Histogram

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "silentdrop",
		subsystem:       "scorer",
		durationBuckets: defaultDurationBuckets,
		scoreBuckets:    defaultScoreBuckets,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.assessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("assessments_total"),
		Help:        "Total number of completed assessments by risk level",
		ConstLabels: labels,
	}, []string{"risk_level"})

	m.scores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score"),
		Help:        "Distribution of silent dropout scores",
		Buckets:     m.scoreBuckets,
		ConstLabels: labels,
	})

	m.invalidInputs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("invalid_input_total"),
		Help:        "Total number of submissions rejected as invalid input",
		ConstLabels: labels,
	}, []string{"source"})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batch_size"),
		Help:        "Number of records per batch scoring request",
		Buckets:     batchBuckets,
		ConstLabels: labels,
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_latency_microseconds"),
		Help:        "Time spent scoring a request in microseconds",
		Buckets:     latencyBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.durationBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Total number of errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Total number of errors by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.durationBuckets,
		ConstLabels: labels,
	})
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// SetEnabled toggles recording at runtime.
func (m *Manager) SetEnabled(enabled bool) { m.enabled.Store(enabled) }

// RefreshInterval returns how often gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordAssessment counts a completed assessment and observes its score.
func (m *Manager) RecordAssessment(riskLevel string, score float64) {
	if !m.Enabled() {
		return
	}
	m.assessments.WithLabelValues(riskLevel).Inc()
	m.scores.Observe(score)
}

// RecordInvalidInput counts a rejected submission from source (api, batch, form).
func (m *Manager) RecordInvalidInput(source string) {
	if !m.Enabled() {
		return
	}
	m.invalidInputs.WithLabelValues(source).Inc()
}

// RecordBatchSize observes the number of rows in a batch request.
func (m *Manager) RecordBatchSize(n int) {
	if !m.Enabled() {
		return
	}
	m.batchSize.Observe(float64(n))
}

// RecordScoringLatency observes scoring time.
func (m *Manager) RecordScoringLatency(d time.Duration) {
	if !m.Enabled() {
		return
	}
	m.scoringLatency.Observe(float64(d.Microseconds()))
}

// RecordHTTPRequest counts a served HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.Enabled() {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an HTTP error by type, severity and endpoint.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.Enabled() {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if !m.Enabled() {
		return
	}
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if !m.Enabled() {
		return
	}
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if !m.Enabled() {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// Package-level helpers delegate to the global manager.

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) { globalManager.SetEnabled(enabled) }

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// RecordAssessment records a completed assessment.
func RecordAssessment(riskLevel string, score float64) {
	globalManager.RecordAssessment(riskLevel, score)
}

// RecordInvalidInput records a rejected submission.
func RecordInvalidInput(source string) { globalManager.RecordInvalidInput(source) }

// RecordBatchSize records a batch request size.
func RecordBatchSize(n int) { globalManager.RecordBatchSize(n) }

// RecordScoringLatency records scoring time.
func RecordScoringLatency(d time.Duration) { globalManager.RecordScoringLatency(d) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an HTTP error.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// UpdateSystemMemoryUsage updates the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

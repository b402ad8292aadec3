// Package metrics provides Prometheus metrics for the casewatch engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh cycle outcomes used as the "outcome" label.
const (
	OutcomePublished  = "published"
	OutcomeFetchError = "fetch_error"
	OutcomeDiscarded  = "discarded"
)

// latencyBuckets covers sub-millisecond pipeline work up to slow upstream fetches (ms).
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // shared default buckets

// Manager manages all Prometheus metrics for the casewatch engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Refresh cycle metrics
	refreshCycles    *prometheus.CounterVec
	skippedTicks     prometheus.Counter
	fetchLatency     prometheus.Histogram
	cycleDuration    prometheus.Histogram
	malformedRecords prometheus.Counter
	schedulerState   prometheus.Gauge

	// Snapshot metrics
	snapshotEntries     prometheus.Gauge
	snapshotVersion     prometheus.Gauge
	snapshotLastUnix    prometheus.Gauge
	snapshotSourceCount prometheus.Gauge
	snapshotTotals      *prometheus.GaugeVec

	// Read path metrics
	viewRequests *prometheus.CounterVec
	viewSize     prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
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
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "casewatch",
		subsystem:        "engine",
		histogramBuckets: latencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.refreshCycles = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome (published, fetch_error, discarded)",
		},
		[]string{"outcome"},
	)

	m.skippedTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skipped_ticks_total",
		Help:      "Timer fires ignored because a cycle was already in flight",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Record source fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_duration_milliseconds",
		Help:      "Full refresh cycle duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.malformedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "malformed_records_total",
		Help:      "Raw records dropped before selection (missing fields or duplicates)",
	})

	m.schedulerState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scheduler_state",
		Help:      "Scheduler state (0 idle, 1 fetching, 2 publishing)",
	})

	m.snapshotEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_entries",
		Help:      "Number of records in the published snapshot",
	})

	m.snapshotVersion = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_version",
		Help:      "Version of the published snapshot",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_published_unix",
		Help:      "Unix time of the last published snapshot",
	})

	m.snapshotSourceCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_source_records",
		Help:      "Records returned by the source for the published snapshot",
	})

	m.snapshotTotals = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "snapshot_total",
			Help:      "Aggregate totals of the published snapshot by field",
		},
		[]string{"field"},
	)

	m.viewRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "view_requests_total",
			Help:      "Filtered view reads by whether a search term was active",
		},
		[]string{"filtered"},
	)

	m.viewSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "view_size_records",
		Help:      "Number of records returned by view reads",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordRefreshCycle counts a finished cycle under outcome.
func (m *Manager) RecordRefreshCycle(outcome string) error {
	switch outcome {
	case OutcomePublished, OutcomeFetchError, OutcomeDiscarded:
		m.refreshCycles.WithLabelValues(outcome).Inc()
		return nil
	default:
		return ErrUnknownOutcome
	}
}

// RecordSnapshot updates the gauges describing a newly published snapshot.
func (m *Manager) RecordSnapshot(version uint64, entries, sourceCount int, publishedUnix float64, totals map[string]int64) {
	m.snapshotVersion.Set(float64(version))
	m.snapshotEntries.Set(float64(entries))
	m.snapshotSourceCount.Set(float64(sourceCount))
	m.snapshotLastUnix.Set(publishedUnix)
	for field, v := range totals {
		m.snapshotTotals.WithLabelValues(field).Set(float64(v))
	}
}

// RecordRefreshCycle counts a finished cycle under outcome on the global manager.
func RecordRefreshCycle(outcome string) {
	_ = globalManager.RecordRefreshCycle(outcome)
}

// RecordSkippedTick increments the skipped tick counter.
func RecordSkippedTick() {
	globalManager.skippedTicks.Inc()
}

// RecordFetchLatency records source fetch latency in milliseconds.
func RecordFetchLatency(latencyMs float64) {
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordCycleDuration records a full cycle duration in milliseconds.
func RecordCycleDuration(latencyMs float64) {
	globalManager.cycleDuration.Observe(latencyMs)
}

// RecordMalformedRecords adds n dropped records.
func RecordMalformedRecords(n int) {
	if n > 0 {
		globalManager.malformedRecords.Add(float64(n))
	}
}

// UpdateSchedulerState sets the scheduler state gauge.
func UpdateSchedulerState(state int) {
	globalManager.schedulerState.Set(float64(state))
}

// RecordSnapshot updates the snapshot gauges on the global manager.
func RecordSnapshot(version uint64, entries, sourceCount int, publishedUnix float64, totals map[string]int64) {
	globalManager.RecordSnapshot(version, entries, sourceCount, publishedUnix, totals)
}

// RecordView records a view read and its size.
func RecordView(filtered bool, size int) {
	label := "false"
	if filtered {
		label = "true"
	}
	globalManager.viewRequests.WithLabelValues(label).Inc()
	globalManager.viewSize.Observe(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

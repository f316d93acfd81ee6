// Package metrics provides Prometheus metrics for the linepulse analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by linepulse.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	eventsRead            *prometheus.CounterVec
	eventsSkipped         *prometheus.CounterVec
	sessionsReconstructed *prometheus.CounterVec
	reconstructLatency    prometheus.Histogram

	// Caches
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	cacheWrites       *prometheus.CounterVec
	cacheWriteErrors  *prometheus.CounterVec
	cacheCorrupt      *prometheus.CounterVec
	sessionCacheItems prometheus.Gauge

	// Incremental sync
	syncPasses       *prometheus.CounterVec
	syncFiles        *prometheus.CounterVec
	syncPassDuration prometheus.Histogram
	syncLastUnix     prometheus.Gauge
	trackedFiles     prometheus.Gauge

	// Analysis
	analysisRequests *prometheus.CounterVec
	analysisLatency  *prometheus.HistogramVec
	workersScored    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "linepulse",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.eventsRead = m.counterVec("events_read_total",
		"Raw events read from event logs", "process")
	m.eventsSkipped = m.counterVec("events_skipped_total",
		"Raw events or lines skipped during read or reconstruction", "reason")
	m.sessionsReconstructed = m.counterVec("sessions_reconstructed_total",
		"Sessions produced by the session reconstructor", "process")
	m.reconstructLatency = m.histogram("reconstruct_latency_milliseconds",
		"Time spent reconstructing sessions for one batch", m.histogramBuckets)

	m.cacheHits = m.counterVec("cache_hits_total", "Cache hits by cache layer", "cache")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache misses by cache layer", "cache")
	m.cacheWrites = m.counterVec("cache_writes_total", "Cache writes by cache layer", "cache")
	m.cacheWriteErrors = m.counterVec("cache_write_errors_total", "Failed cache writes by cache layer", "cache")
	m.cacheCorrupt = m.counterVec("cache_corrupt_entries_total",
		"Cache entries rejected as unreadable, stale-schema or mismatched", "cache")
	m.sessionCacheItems = m.gauge("session_cache_items", "Entries held by the in-memory session cache")

	m.syncPasses = m.counterVec("sync_passes_total", "Incremental sync passes by trigger", "trigger")
	m.syncFiles = m.counterVec("sync_files_total", "Files processed by incremental sync by outcome", "status")
	m.syncPassDuration = m.histogram("sync_pass_duration_milliseconds",
		"Duration of one incremental sync pass", m.histogramBuckets)
	m.syncLastUnix = m.gauge("sync_last_unix", "Unix timestamp of the last completed sync pass")
	m.trackedFiles = m.gauge("sync_tracked_files", "Source files with a sync record")

	m.analysisRequests = m.counterVec("analysis_requests_total", "Analysis requests by process", "process")
	m.analysisLatency = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_latency_milliseconds",
		Help:      "End-to-end analysis latency by process",
		Buckets:   m.histogramBuckets,
	}, []string{"process"})
	m.workersScored = m.gauge("workers_scored", "Workers in the most recent scored result set")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordEventsRead adds n to the events-read counter for a process.
func RecordEventsRead(process string, n int) {
	globalManager.eventsRead.WithLabelValues(process).Add(float64(n))
}

// RecordEventSkipped counts one skipped event or line.
func RecordEventSkipped(reason string) {
	globalManager.eventsSkipped.WithLabelValues(reason).Inc()
}

// RecordSessionsReconstructed adds n to the reconstructed-sessions counter.
func RecordSessionsReconstructed(process string, n int) {
	globalManager.sessionsReconstructed.WithLabelValues(process).Add(float64(n))
}

// RecordReconstructLatency records reconstruction latency in milliseconds.
func RecordReconstructLatency(latencyMs float64) {
	globalManager.reconstructLatency.Observe(latencyMs)
}

// RecordCacheHit counts a hit on the named cache layer.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss counts a miss on the named cache layer.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheWrite counts a successful write on the named cache layer.
func RecordCacheWrite(cache string) {
	globalManager.cacheWrites.WithLabelValues(cache).Inc()
}

// RecordCacheWriteError counts a failed write on the named cache layer.
func RecordCacheWriteError(cache string) {
	globalManager.cacheWriteErrors.WithLabelValues(cache).Inc()
}

// RecordCacheCorrupt counts an entry rejected on read.
func RecordCacheCorrupt(cache string) {
	globalManager.cacheCorrupt.WithLabelValues(cache).Inc()
}

// UpdateSessionCacheItems sets the in-memory session cache size.
func UpdateSessionCacheItems(n int) {
	globalManager.sessionCacheItems.Set(float64(n))
}

// RecordSyncPass counts a sync pass started by trigger (manual, interval, watch).
func RecordSyncPass(trigger string) {
	globalManager.syncPasses.WithLabelValues(trigger).Inc()
}

// RecordSyncFile counts one file outcome (success, failed).
func RecordSyncFile(status string) {
	globalManager.syncFiles.WithLabelValues(status).Inc()
}

// RecordSyncPassDuration records pass duration and stamps the completion time.
func RecordSyncPassDuration(durationMs float64, finishedUnix int64) {
	globalManager.syncPassDuration.Observe(durationMs)
	globalManager.syncLastUnix.Set(float64(finishedUnix))
}

// UpdateTrackedFiles sets the number of files with a sync record.
func UpdateTrackedFiles(n int) {
	globalManager.trackedFiles.Set(float64(n))
}

// RecordAnalysis records one analysis request and its latency.
func RecordAnalysis(process string, latencyMs float64) {
	globalManager.analysisRequests.WithLabelValues(process).Inc()
	globalManager.analysisLatency.WithLabelValues(process).Observe(latencyMs)
}

// UpdateWorkersScored sets the size of the latest scored worker set.
func UpdateWorkersScored(n int) {
	globalManager.workersScored.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

// Package metrics provides Prometheus metrics for the duelwall service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBucketsMs = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns every series the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Duels and ratings
	duelsRecorded   *prometheus.CounterVec
	duelsDuplicate  prometheus.Counter
	ratingDelta     prometheus.Histogram
	ratingClamped   prometheus.Counter
	matchmakingOK   prometheus.Counter
	matchmakingFail prometheus.Counter

	// Wall and roster
	wallLayoutDuration *prometheus.HistogramVec
	wallInstances      prometheus.Gauge
	wallRefreshes      prometheus.Counter
	rosterSize         prometheus.Gauge
	rosterImported     prometheus.Counter
	rosterRejected     prometheus.Counter

	// Storage
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Event publishing
	eventsPublished *prometheus.CounterVec
	publishErrors   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton behind the Record* helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates and registers every series.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "duelwall",
		subsystem:        "core",
		histogramBuckets: latencyBucketsMs,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.duelsRecorded = m.counterVec("duels_recorded_total", "Duels committed, by outcome", "outcome")
	m.duelsDuplicate = m.counter("duels_duplicate_total", "Duel submissions rejected as already recorded")
	m.ratingDelta = m.histogram("rating_delta_points", "Absolute committed rating movement per side",
		[]float64{0, 1, 2, 4, 8, 12, 16, 20, 24, 32})
	m.ratingClamped = m.counter("rating_clamped_total", "Duels where the swing cap reduced a raw Elo delta")
	m.matchmakingOK = m.counter("matchmaking_selections_total", "Duel pairs handed out")
	m.matchmakingFail = m.counter("matchmaking_failures_total", "Pair requests that failed for lack of contestants")

	m.wallLayoutDuration = m.histogramVec("wall_layout_duration_milliseconds", "Wall layout time by mode",
		m.histogramBuckets, "mode")
	m.wallInstances = m.gauge("wall_instances", "Instances on the cached wall")
	m.wallRefreshes = m.counter("wall_refreshes_total", "Cached wall rebuilds")
	m.rosterSize = m.gauge("roster_size", "Contestants on the roster")
	m.rosterImported = m.counter("roster_imported_total", "Contestants added through bulk import")
	m.rosterRejected = m.counter("roster_rejected_rows_total", "Bulk import rows skipped with a warning")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Store write latency", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Store read latency", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Events waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Queue buffer size")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "queue_size over queue_capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Events enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Events dropped because the queue was full or closed")

	m.workerCount = m.gauge("worker_count", "Workers in the pool")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently handling an event")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Event handling time", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Events whose handler returned an error")

	m.eventsPublished = m.counterVec("events_published_total", "Events published to the broker, by kind", "kind")
	m.publishErrors = m.counterVec("events_publish_errors_total", "Broker publish failures, by kind", "kind")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by route, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request latency",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
}

// RecordDuel counts a committed duel and observes both sides' movement.
func RecordDuel(outcome string, deltaA, deltaB int, clamped bool) {
	globalManager.duelsRecorded.WithLabelValues(outcome).Inc()
	globalManager.ratingDelta.Observe(float64(abs(deltaA)))
	globalManager.ratingDelta.Observe(float64(abs(deltaB)))
	if clamped {
		globalManager.ratingClamped.Inc()
	}
}

// RecordDuelDuplicate counts a rejected retry.
func RecordDuelDuplicate() { globalManager.duelsDuplicate.Inc() }

// RecordMatchmaking counts a pair request.
func RecordMatchmaking(ok bool) {
	if ok {
		globalManager.matchmakingOK.Inc()
		return
	}
	globalManager.matchmakingFail.Inc()
}

// RecordWallLayout observes one layout computation.
func RecordWallLayout(mode string, latencyMs float64) {
	globalManager.wallLayoutDuration.WithLabelValues(mode).Observe(latencyMs)
}

// RecordWallRefresh counts a cached wall rebuild of the given size.
func RecordWallRefresh(instances int) {
	globalManager.wallRefreshes.Inc()
	globalManager.wallInstances.Set(float64(instances))
}

// UpdateRosterSize sets the roster gauge.
func UpdateRosterSize(count int) { globalManager.rosterSize.Set(float64(count)) }

// RecordRosterImport counts imported and rejected rows.
func RecordRosterImport(inserted, rejected int) {
	globalManager.rosterImported.Add(float64(inserted))
	globalManager.rosterRejected.Add(float64(rejected))
}

// RecordRepositoryUpdateLatency observes a store write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency observes a store read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the backlog gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an enqueued event.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued event.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a dropped event.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the pool size gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the busy worker gauge.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency observes one handled event.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed handler call.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordEventPublished counts a broker publish attempt by kind.
func RecordEventPublished(kind string, err error) {
	if err != nil {
		globalManager.publishErrors.WithLabelValues(kind).Inc()
		return
	}
	globalManager.eventsPublished.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry behind /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Package metrics provides Prometheus metrics for the FightSight engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default configuration values.
const (
	defaultNamespace       = "fightsight"
	defaultSubsystem       = "engine"
	defaultRefreshInterval = 15 * time.Second
)

// Manager owns all Prometheus collectors for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Session lifecycle metrics
	sessionsSubmitted prometheus.Counter
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsFailed    prometheus.Counter
	sessionsProcessed prometheus.Counter
	sessionDuration   prometheus.Histogram
	totalSessions     prometheus.Gauge

	// Pipeline stage metrics
	stageDuration        *prometheus.HistogramVec
	candidatesDetected   prometheus.Counter
	combinationsDetected prometheus.Counter

	// Classification metrics
	classificationCalls    prometheus.Counter
	classificationRetries  prometheus.Counter
	classificationErrors   prometheus.Counter
	classificationInFlight prometheus.Gauge
	classificationLatency  prometheus.Histogram
	providerCost           prometheus.Counter

	// Queue metrics
	queueCapacity       prometheus.Gauge
	queueSize           prometheus.Gauge
	queueUtilization    prometheus.Gauge
	queueEnqueues       prometheus.Counter
	queueDequeues       prometheus.Counter
	queueEnqueueErrors  prometheus.Counter
	queueEnqueueLatency prometheus.Histogram

	// Worker metrics
	workerActive            prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// globalManager is the package-wide Manager used by the helper functions.
var globalManager *Manager

// customRegistry isolates engine metrics from the default registry.
var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initMetrics()
	return m
}

func (m *Manager) initMetrics() {
	factory := promauto.With(m.registry)

	m.sessionsSubmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_submitted_total",
		Help:      "Total number of analysis sessions accepted for processing",
	})

	m.sessionsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of analysis sessions that began processing",
	})

	m.sessionsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_completed_total",
		Help:      "Total number of analysis sessions that completed successfully",
	})

	m.sessionsFailed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_failed_total",
		Help:      "Total number of analysis sessions that ended in failure",
	})

	m.sessionsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_processed_total",
		Help:      "Total number of jobs taken off the queue by workers",
	})

	m.sessionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_duration_seconds",
		Help:      "End-to-end processing time per session in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	m.totalSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_total",
		Help:      "Number of sessions currently stored",
	})

	m.stageDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Pipeline stage duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.candidatesDetected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_detected_total",
		Help:      "Total number of strike candidates proposed by detection",
	})

	m.combinationsDetected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combinations_detected_total",
		Help:      "Total number of strike combinations built",
	})

	m.classificationCalls = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_calls_total",
		Help:      "Total number of classifier provider calls, retries included",
	})

	m.classificationRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_retries_total",
		Help:      "Total number of classifier calls that were retries",
	})

	m.classificationErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_errors_total",
		Help:      "Total number of failed classifier provider calls",
	})

	m.classificationInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_in_flight",
		Help:      "Number of classifier provider calls currently in flight",
	})

	m.classificationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_latency_seconds",
		Help:      "Classifier provider call latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.providerCost = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_cost_dollars_total",
		Help:      "Accumulated provider spend in dollars",
	})

	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the job queue",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of jobs waiting in the queue",
	})

	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue size divided by queue capacity",
	})

	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of jobs accepted by the queue",
	})

	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of jobs handed to workers",
	})

	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of jobs refused by the queue",
	})

	m.queueEnqueueLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_latency_seconds",
		Help:      "Time spent enqueueing a job in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of workers currently running",
	})

	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of jobs that returned an error from the pipeline",
	})

	m.workerProcessingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_seconds",
		Help:      "Time a worker spent on a single job in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total errors by component and error type",
	}, []string{"component", "error_type"})

	m.errorsByEndpoint = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.errorsByType = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_ms",
		Help:      "Latency of requests that ended in an error, in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_seconds",
		Help:      "Garbage collection pause time in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
}

// GetRegistry returns the registry that holds the engine metrics. Serve it
// with promhttp.HandlerFor to expose them.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordSessionSubmitted increments the submitted sessions counter.
func RecordSessionSubmitted() {
	globalManager.sessionsSubmitted.Inc()
}

// RecordSessionStarted increments the started sessions counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionCompleted increments the completed sessions counter.
func RecordSessionCompleted() {
	globalManager.sessionsCompleted.Inc()
}

// RecordSessionFailed increments the failed sessions counter.
func RecordSessionFailed() {
	globalManager.sessionsFailed.Inc()
}

// RecordSessionProcessed increments the processed jobs counter.
func RecordSessionProcessed() {
	globalManager.sessionsProcessed.Inc()
}

// RecordSessionDuration observes the end-to-end processing time of a session.
func RecordSessionDuration(seconds float64) {
	globalManager.sessionDuration.Observe(seconds)
}

// UpdateTotalSessions sets the stored session count gauge.
func UpdateTotalSessions(count int) {
	globalManager.totalSessions.Set(float64(count))
}

// RecordStageDuration observes the duration of one pipeline stage.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordCandidatesDetected adds to the detected candidate counter.
func RecordCandidatesDetected(count int) {
	globalManager.candidatesDetected.Add(float64(count))
}

// RecordCombinationsDetected adds to the detected combination counter.
func RecordCombinationsDetected(count int) {
	globalManager.combinationsDetected.Add(float64(count))
}

// RecordClassificationCall increments the classifier call counter.
func RecordClassificationCall() {
	globalManager.classificationCalls.Inc()
}

// RecordClassificationRetry increments the classifier retry counter.
func RecordClassificationRetry() {
	globalManager.classificationRetries.Inc()
}

// RecordClassificationError increments the classifier error counter.
func RecordClassificationError() {
	globalManager.classificationErrors.Inc()
}

// UpdateClassificationInFlight adjusts the in-flight classifier call gauge.
func UpdateClassificationInFlight(delta int) {
	globalManager.classificationInFlight.Add(float64(delta))
}

// RecordClassificationLatency observes a classifier call latency.
func RecordClassificationLatency(seconds float64) {
	globalManager.classificationLatency.Observe(seconds)
}

// RecordProviderCost adds dollars to the provider spend counter.
func RecordProviderCost(dollars float64) {
	if dollars > 0 {
		globalManager.providerCost.Add(dollars)
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(ratio float64) {
	globalManager.queueUtilization.Set(ratio)
}

// RecordQueueEnqueue increments the accepted jobs counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the delivered jobs counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the refused jobs counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueEnqueueLatency observes the time spent enqueueing a job.
func RecordQueueEnqueueLatency(seconds float64) {
	globalManager.queueEnqueueLatency.Observe(seconds)
}

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency observes the time a worker spent on a job.
func RecordWorkerProcessingLatency(seconds float64) {
	globalManager.workerProcessingLatency.Observe(seconds)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent increments the component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint increments the endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType increments the typed error counter.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorLatency observes the latency of a failed request.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes a garbage collection pause.
func RecordSystemGCPauseTime(seconds float64) {
	globalManager.systemGCPauseTime.Observe(seconds)
}

// Package metrics provides Prometheus metrics for the obesiscope console.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets are tuned for remote calls in milliseconds.
var latencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // constant slice

// Manager owns every Prometheus collector exported by the console.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Prediction form
	predictionsSubmitted prometheus.Counter
	predictionsSucceeded prometheus.Counter
	validationFailures   *prometheus.CounterVec
	predictionsByLabel   *prometheus.CounterVec

	// Backend calls
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec

	// Dashboard
	refreshCycles    *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	lastRefreshUnix  prometheus.Gauge
	totalPredictions prometheus.Gauge
	chartsLive       prometheus.Gauge
	chartsRendered   *prometheus.CounterVec

	// Front end HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "obesiscope",
		subsystem:        "console",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.predictionsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_submitted_total",
		Help:      "Prediction form submissions that passed client-side validation",
	})

	m.predictionsSucceeded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_succeeded_total",
		Help:      "Prediction requests answered with a classification",
	})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Form submissions rejected before any network call, by field",
	}, []string{"field"})

	m.predictionsByLabel = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_by_category_total",
		Help:      "Classifications returned by the prediction service",
	}, []string{"category"})

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_requests_total",
		Help:      "Requests issued to the prediction service",
	}, []string{"endpoint", "status_code"})

	m.backendLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_request_duration_milliseconds",
		Help:      "Prediction service request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.backendErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_errors_total",
		Help:      "Failed prediction service calls by endpoint and kind",
	}, []string{"endpoint", "kind"})

	m.refreshCycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_refresh_cycles_total",
		Help:      "Dashboard refresh cycles by outcome",
	}, []string{"outcome"})

	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_refresh_duration_milliseconds",
		Help:      "Duration of a full fetch-then-render cycle in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.lastRefreshUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_last_refresh_unix",
		Help:      "Unix timestamp of the last successful dashboard refresh",
	})

	m.totalPredictions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_total_predictions",
		Help:      "Total predictions reported by the last successful refresh",
	})

	m.chartsLive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "charts_live",
		Help:      "Live chart instances held by the chart registry",
	})

	m.chartsRendered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "charts_rendered_total",
		Help:      "Chart instances created per region",
	}, []string{"chart"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

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
}

// Prediction form.

// RecordPredictionSubmitted counts a submission that passed validation.
func RecordPredictionSubmitted() {
	if globalManager.enabled {
		globalManager.predictionsSubmitted.Inc()
	}
}

// RecordPredictionSucceeded counts a classified submission.
func RecordPredictionSucceeded(category string) {
	if globalManager.enabled {
		globalManager.predictionsSucceeded.Inc()
		globalManager.predictionsByLabel.WithLabelValues(category).Inc()
	}
}

// RecordValidationFailure counts a rejected submission by field.
func RecordValidationFailure(field string) {
	if globalManager.enabled {
		globalManager.validationFailures.WithLabelValues(field).Inc()
	}
}

// Backend calls.

// RecordBackendRequest records a completed backend round trip.
func RecordBackendRequest(endpoint, statusCode string, latency time.Duration) {
	if globalManager.enabled {
		globalManager.backendRequests.WithLabelValues(endpoint, statusCode).Inc()
		globalManager.backendLatency.WithLabelValues(endpoint).Observe(float64(latency.Milliseconds()))
	}
}

// RecordBackendError counts a failed backend call; kind is server, network or decode.
func RecordBackendError(endpoint, kind string) {
	if globalManager.enabled {
		globalManager.backendErrors.WithLabelValues(endpoint, kind).Inc()
	}
}

// Dashboard.

// RecordRefreshCycle records the outcome and duration of a dashboard cycle.
func RecordRefreshCycle(outcome string, took time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.refreshCycles.WithLabelValues(outcome).Inc()
	globalManager.refreshDuration.Observe(float64(took.Milliseconds()))
	if outcome == "success" {
		globalManager.lastRefreshUnix.Set(float64(time.Now().Unix()))
	}
}

// UpdateTotalPredictions sets the total reported by the backend.
func UpdateTotalPredictions(total int) {
	if globalManager.enabled {
		globalManager.totalPredictions.Set(float64(total))
	}
}

// UpdateChartsLive sets the number of live chart instances.
func UpdateChartsLive(count int) {
	if globalManager.enabled {
		globalManager.chartsLive.Set(float64(count))
	}
}

// RecordChartRendered counts a chart instance creation for a region.
func RecordChartRendered(chart string) {
	if globalManager.enabled {
		globalManager.chartsRendered.WithLabelValues(chart).Inc()
	}
}

// Front end HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the asset prioritization service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Optimization runs
	optimizationRuns      *prometheus.CounterVec
	optimizationDuration  prometheus.Histogram
	lastSelectedCount     prometheus.Gauge
	lastUsedBudget        prometheus.Gauge
	lastObjectiveValue    prometheus.Gauge
	optimizationRejected  prometheus.Counter
	optimizationCandidate prometheus.Counter

	// Shaped dataset
	assetsTotal     prometheus.Gauge
	assetsHighRisk  prometheus.Gauge
	assetsAvgHealth prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "assetopt",
		subsystem:        "planner",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.optimizationRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "optimization_runs_total",
		Help:        "Optimization runs by final status",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.optimizationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "optimization_duration_milliseconds",
		Help:        "Wall time of shape+optimize in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.lastSelectedCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_selected_count",
		Help:        "Number of assets selected by the most recent successful run",
		ConstLabels: m.constLabels,
	})

	m.lastUsedBudget = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_used_budget",
		Help:        "Budget consumed by the most recent successful run",
		ConstLabels: m.constLabels,
	})

	m.lastObjectiveValue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_objective_value",
		Help:        "Total priority score selected by the most recent successful run",
		ConstLabels: m.constLabels,
	})

	m.optimizationRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "greedy_rejections_total",
		Help:        "Assets skipped because they did not fit the remaining budget",
		ConstLabels: m.constLabels,
	})

	m.optimizationCandidate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "greedy_candidates_total",
		Help:        "Assets considered by greedy selection",
		ConstLabels: m.constLabels,
	})

	m.assetsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assets_total",
		Help:        "Assets in the latest shaped snapshot",
		ConstLabels: m.constLabels,
	})

	m.assetsHighRisk = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assets_high_risk",
		Help:        "Assets labelled High risk in the latest shaped snapshot",
		ConstLabels: m.constLabels,
	})

	m.assetsAvgHealth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assets_avg_health",
		Help:        "Average normalized health (0-100) in the latest shaped snapshot",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: m.constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors by endpoint, method and type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordOptimizationRun counts a run and observes its duration.
func (m *Manager) RecordOptimizationRun(status string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.optimizationRuns.WithLabelValues(status).Inc()
	m.optimizationDuration.Observe(durationMs)
}

// UpdateLastSelection publishes the outcome of a successful run.
func (m *Manager) UpdateLastSelection(selected, candidates int, usedBudget, objective float64) {
	if !m.enabled {
		return
	}
	m.lastSelectedCount.Set(float64(selected))
	m.lastUsedBudget.Set(usedBudget)
	m.lastObjectiveValue.Set(objective)
	m.optimizationCandidate.Add(float64(candidates))
	m.optimizationRejected.Add(float64(candidates - selected))
}

// UpdateAssets publishes the KPIs of a shaped snapshot.
func (m *Manager) UpdateAssets(total, highRisk int, avgHealth float64) {
	if !m.enabled {
		return
	}
	m.assetsTotal.Set(float64(total))
	m.assetsHighRisk.Set(float64(highRisk))
	m.assetsAvgHealth.Set(avgHealth)
}

// RecordHTTPRequest increments the HTTP requests counter.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an error by type/severity and, when endpoint is set, by endpoint.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	if endpoint != "" {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystem publishes process-level gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause observes an average GC pause in milliseconds.
func (m *Manager) RecordGCPause(pauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// RecordOptimizationRun records a run on the global manager.
func RecordOptimizationRun(status string, durationMs float64) {
	globalManager.RecordOptimizationRun(status, durationMs)
}

// UpdateLastSelection records a selection outcome on the global manager.
func UpdateLastSelection(selected, candidates int, usedBudget, objective float64) {
	globalManager.UpdateLastSelection(selected, candidates, usedBudget, objective)
}

// UpdateAssets records snapshot KPIs on the global manager.
func UpdateAssets(total, highRisk int, avgHealth float64) {
	globalManager.UpdateAssets(total, highRisk, avgHealth)
}

// RecordHTTPRequest records a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error on the global manager.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// UpdateSystem records process gauges on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// RecordGCPause records a GC pause on the global manager.
func RecordGCPause(pauseMs float64) {
	globalManager.RecordGCPause(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

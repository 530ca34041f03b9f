package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Store metrics
	StoreCalls    *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec
	CacheResults  *prometheus.CounterVec

	// Frame metrics
	FramesRendered *prometheus.CounterVec
	DocumentBytes  *prometheus.HistogramVec
	ScriptErrors   *prometheus.CounterVec
	SizeReports    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for JSON responses
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	FramesRendered int64   `json:"frames_rendered"`
	ScriptErrors   int64   `json:"script_errors"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	totalDuration  float64
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postframe_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postframe_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"method", "path"},
		),

		// Store metrics
		StoreCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_store_calls_total",
				Help: "Total number of content store calls",
			},
			[]string{"store", "operation", "status"},
		),
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postframe_store_duration_seconds",
				Help:    "Content store call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"store", "operation"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_store_errors_total",
				Help: "Total number of content store errors",
			},
			[]string{"store", "operation", "type"},
		),
		CacheResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_cache_results_total",
				Help: "Cache lookups by result",
			},
			[]string{"operation", "result"},
		),

		// Frame metrics
		FramesRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_frames_rendered_total",
				Help: "Total number of sandboxed frames rendered",
			},
			[]string{"role"},
		),
		DocumentBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postframe_document_size_bytes",
				Help:    "Size of synthesized sandbox documents",
				Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
			},
			[]string{"role"},
		),
		ScriptErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_sandbox_script_errors_total",
				Help: "Script errors raised in emulated sandboxes",
			},
			[]string{"role"},
		),
		SizeReports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postframe_size_reports_total",
				Help: "Size reports received from emulated sandboxes",
			},
			[]string{"role"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "postframe_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordStoreCall records a content store call
func (m *Metrics) RecordStoreCall(store, operation, status string, duration time.Duration) {
	m.StoreCalls.WithLabelValues(store, operation, status).Inc()
	m.StoreDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

// RecordStoreError records a content store error
func (m *Metrics) RecordStoreError(store, operation, errorType string) {
	m.StoreErrors.WithLabelValues(store, operation, errorType).Inc()
}

// RecordCacheResult records a cache hit, miss or failure
func (m *Metrics) RecordCacheResult(operation, result string) {
	m.CacheResults.WithLabelValues(operation, result).Inc()
}

// RecordFrame records one rendered frame and its document size
func (m *Metrics) RecordFrame(role string, docBytes int) {
	m.FramesRendered.WithLabelValues(role).Inc()
	m.DocumentBytes.WithLabelValues(role).Observe(float64(docBytes))

	m.mu.Lock()
	m.snapshot.FramesRendered++
	m.mu.Unlock()
}

// RecordDiagnosis records the outcome of an emulated frame
func (m *Metrics) RecordDiagnosis(role string, reports, scriptErrors int) {
	m.SizeReports.WithLabelValues(role).Add(float64(reports))
	m.ScriptErrors.WithLabelValues(role).Add(float64(scriptErrors))

	m.mu.Lock()
	m.snapshot.ScriptErrors += int64(scriptErrors)
	m.mu.Unlock()
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

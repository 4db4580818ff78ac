package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the climb-sync gateway.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	uploadsStartedTotal   prometheus.Counter
	uploadsCompletedTotal prometheus.Counter
	uploadsFailedTotal    prometheus.Counter
	cacheHitsTotal        prometheus.Counter
	seeksIssuedTotal      prometheus.Counter
	activeVideos          prometheus.Gauge
	jobProgress           prometheus.Gauge
}

// New creates and registers Prometheus metrics for the gateway.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	uploadsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_uploads_started_total",
		Help: "Total number of upload attempts submitted",
	})
	uploadsCompletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_uploads_completed_total",
		Help: "Total number of upload attempts that completed with results",
	})
	uploadsFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_uploads_failed_total",
		Help: "Total number of upload attempts that ended in failure",
	})
	cacheHitsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_cache_hits_total",
		Help: "Total number of uploads bypassed because results were already processed",
	})
	seeksIssuedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climbsync_seeks_issued_total",
		Help: "Total number of seek commands broadcast to players",
	})
	activeVideos := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climbsync_active_videos",
		Help: "Number of videos in the current session",
	})
	jobProgress := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climbsync_job_progress",
		Help: "Processing progress of the current upload attempt (0-100)",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		uploadsStartedTotal,
		uploadsCompletedTotal,
		uploadsFailedTotal,
		cacheHitsTotal,
		seeksIssuedTotal,
		activeVideos,
		jobProgress,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		errorsTotal:           errorsTotal,
		uploadsStartedTotal:   uploadsStartedTotal,
		uploadsCompletedTotal: uploadsCompletedTotal,
		uploadsFailedTotal:    uploadsFailedTotal,
		cacheHitsTotal:        cacheHitsTotal,
		seeksIssuedTotal:      seeksIssuedTotal,
		activeVideos:          activeVideos,
		jobProgress:           jobProgress,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncUploadsStarted increments the uploads started counter.
func (m *Metrics) IncUploadsStarted() {
	m.uploadsStartedTotal.Inc()
}

// IncUploadsCompleted increments the uploads completed counter.
func (m *Metrics) IncUploadsCompleted() {
	m.uploadsCompletedTotal.Inc()
}

// IncUploadsFailed increments the uploads failed counter.
func (m *Metrics) IncUploadsFailed() {
	m.uploadsFailedTotal.Inc()
}

// IncCacheHits increments the cache hits counter.
func (m *Metrics) IncCacheHits() {
	m.cacheHitsTotal.Inc()
}

// IncSeeksIssued increments the seek command counter.
func (m *Metrics) IncSeeksIssued() {
	m.seeksIssuedTotal.Inc()
}

// SetActiveVideos sets the active videos gauge.
func (m *Metrics) SetActiveVideos(n int) {
	m.activeVideos.Set(float64(n))
}

// SetJobProgress sets the job progress gauge.
func (m *Metrics) SetJobProgress(percent int) {
	m.jobProgress.Set(float64(percent))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g.
// active videos and job progress).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

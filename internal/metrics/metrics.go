// Package metrics exposes Prometheus instrumentation for the ingestion
// pipelines and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradepulse/pkg/contracts/domain"
)

// Metrics holds the service's Prometheus collectors on a private
// registry so tests can instantiate freely.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	rowsProcessed *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	uploadsTotal  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates the service metrics with Go runtime and process
// collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepulse_runs_total",
			Help: "Processing runs by job and terminal status.",
		}, []string{"job", "status"}),
		rowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepulse_rows_processed_total",
			Help: "Result rows written by job.",
		}, []string{"job"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradepulse_run_duration_seconds",
			Help:    "Wall time of processing runs by job.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepulse_uploads_total",
			Help: "Uploaded files by job.",
		}, []string{"job"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepulse_http_requests_total",
			Help: "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradepulse_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	registry.MustRegister(
		m.runsTotal, m.rowsProcessed, m.runDuration,
		m.uploadsTotal, m.httpRequests, m.httpDuration,
	)
	return m
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(job domain.Job, status domain.RunStatus, rows int64, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(string(job), string(status)).Inc()
	m.runDuration.WithLabelValues(string(job)).Observe(elapsed.Seconds())
	if rows > 0 {
		m.rowsProcessed.WithLabelValues(string(job)).Add(float64(rows))
	}
}

// ObserveUpload records one accepted file upload.
func (m *Metrics) ObserveUpload(job domain.Job) {
	m.uploadsTotal.WithLabelValues(string(job)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	m.httpRequests.WithLabelValues(method, route, class).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

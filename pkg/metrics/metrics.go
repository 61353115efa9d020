package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/urfave/negroni"
)

const namespace = "glowingstore"

// Metrics contains all Prometheus metrics for glowingstore.
type Metrics struct {
	// HTTP.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Documents.
	DocumentsBuilt   *prometheus.CounterVec
	DocumentRequests *prometheus.CounterVec
	DocumentsTotal   prometheus.Gauge

	// Build info.
	BuildInfo *prometheus.GaugeVec
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a new Metrics instance registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		// HTTP.
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Documents.
		DocumentsBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "openapi_documents_built_total",
				Help:      "Total number of OpenAPI documents built",
			},
			[]string{"group", "deprecated"},
		),
		DocumentRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "openapi_document_requests_total",
				Help:      "Total number of OpenAPI document requests",
			},
			[]string{"group", "status"},
		),
		DocumentsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "openapi_documents",
				Help:      "Number of registered OpenAPI documents",
			},
		),

		// Build info.
		BuildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information",
			},
			[]string{"version", "commit", "date"},
		),
	}

	return m
}

// SetBuildInfo sets the build info metric.
func (m *Metrics) SetBuildInfo(version, commit, date string) {
	m.BuildInfo.WithLabelValues(version, commit, date).Set(1)
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordDocumentBuilt records a built OpenAPI document.
func (m *Metrics) RecordDocumentBuilt(group string, deprecated bool) {
	m.DocumentsBuilt.WithLabelValues(group, strconv.FormatBool(deprecated)).Inc()
}

// RecordDocumentRequest records a request for an OpenAPI document.
func (m *Metrics) RecordDocumentRequest(group string, status int) {
	m.DocumentRequests.WithLabelValues(group, strconv.Itoa(status)).Inc()
}

// SetDocumentCount sets the registered documents gauge.
func (m *Metrics) SetDocumentCount(n int) {
	m.DocumentsTotal.Set(float64(n))
}

// Middleware records request counts and durations labelled by the chi route
// pattern. It must run inside a chi router so the pattern is known.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := negroni.NewResponseWriter(w)

		next.ServeHTTP(rw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RecordHTTPRequest(r.Method, path, strconv.Itoa(status), time.Since(start).Seconds())
	})
}

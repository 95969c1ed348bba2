// Package metrics exposes Prometheus instrumentation for the LabWise API:
// HTTP request counters and latency histograms, PII gate rejections, and
// interpretation provider call outcomes.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "labwise"

// Provider call outcomes recorded by RecordProviderCall.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// httpDurationBuckets are histogram boundaries (seconds) for HTTP request
// duration.
var httpDurationBuckets = []float64{
	0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
}

// providerDurationBuckets are histogram boundaries (seconds) for upstream
// interpretation calls, which run for seconds rather than milliseconds.
var providerDurationBuckets = []float64{
	0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0,
}

// Metrics owns a private registry and every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	piiRejections    *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerDuration prometheus.Histogram
}

// New creates a Metrics with all collectors registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   httpDurationBuckets,
			},
			[]string{"method", "path"},
		),

		piiRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pii_rejections_total",
				Help:      "Total number of requests rejected by the PII gate, by category",
			},
			[]string{"category"},
		),

		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of interpretation provider calls by outcome",
			},
			[]string{"outcome"},
		),

		providerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of interpretation provider calls in seconds",
				Buckets:   providerDurationBuckets,
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.piiRejections,
		m.providerRequests,
		m.providerDuration,
	)

	return m
}

// Registry returns the underlying registry so tests can gather metric families.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an Echo handler serving the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
	return echo.WrapHandler(h)
}

// Middleware returns an Echo middleware that records request count and
// duration per route pattern. Errors have not reached the error handler yet
// when the chain unwinds, so the status is taken from the error itself.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			// Route pattern, not the raw path, to bound label cardinality.
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			m.requestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordPIIRejection increments the rejection counter for each detected
// category. Categories only; matched text is never recorded.
func (m *Metrics) RecordPIIRejection(categories []string) {
	for _, cat := range categories {
		m.piiRejections.WithLabelValues(cat).Inc()
	}
}

// RecordProviderCall records one upstream interpretation call.
func (m *Metrics) RecordProviderCall(outcome string, duration time.Duration) {
	m.providerRequests.WithLabelValues(outcome).Inc()
	m.providerDuration.Observe(duration.Seconds())
}

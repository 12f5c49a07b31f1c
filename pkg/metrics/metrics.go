package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	predictions        prometheus.Counter
	predictedRevenue   prometheus.Histogram
	validationFailures prometheus.Counter
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing nil uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "revenuecast_predictions_total",
			Help: "Total number of revenue estimates produced",
		}),
		predictedRevenue: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "revenuecast_predicted_revenue_dollars",
			Help:    "Distribution of predicted revenue",
			Buckets: prometheus.ExponentialBuckets(10_000, 2, 12),
		}),
		validationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "revenuecast_validation_failures_total",
			Help: "Total number of rejected prediction inputs",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "revenuecast_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "revenuecast_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObservePrediction(revenue float64) {
	m.predictions.Inc()
	m.predictedRevenue.Observe(revenue)
}

func (m *Metrics) ObserveValidationFailure(violations int) {
	if violations > 0 {
		m.validationFailures.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Package metrics exposes Prometheus counters and histograms for the plan
// cache, AI calls and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Plan request outcomes.
const (
	PlanHit       = "hit"
	PlanGenerated = "generated"
	PlanEmpty     = "empty"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	PlanRequests *prometheus.CounterVec
	AIRequests   *prometheus.CounterVec
	AIDuration   *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		PlanRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_plan_requests_total",
			Help: "Daily plan lookups by plan type and outcome (hit, generated, empty)",
		}, []string{"plan_type", "result"}),

		AIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_ai_requests_total",
			Help: "AI completion calls by purpose and outcome",
		}, []string{"purpose", "outcome"}),

		AIDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fittrack_ai_request_duration_seconds",
			Help:    "Latency of AI completion calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"purpose"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fittrack_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),

		registry: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAI satisfies ai.Observer.
func (m *Metrics) ObserveAI(purpose string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AIRequests.WithLabelValues(purpose, outcome).Inc()
	m.AIDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

// ObservePlan counts one plan lookup.
func (m *Metrics) ObservePlan(planType, result string) {
	m.PlanRequests.WithLabelValues(planType, result).Inc()
}

// ObserveHTTP counts one finished request.
func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

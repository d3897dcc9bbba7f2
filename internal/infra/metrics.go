package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	standingsDuration *prometheus.HistogramVec
	scoreSubmissions  *prometheus.CounterVec
	outboxPublished   prometheus.Counter
	extractionCalls   *prometheus.CounterVec
}

// NewMetrics registers all collectors plus the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaguebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leaguebook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		standingsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leaguebook",
			Name:      "standings_compute_seconds",
			Help:      "Time spent computing derived standings.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		scoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaguebook",
			Name:      "score_submissions_total",
			Help:      "Score sheet submissions by result.",
		}, []string{"result"}),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leaguebook",
			Name:      "outbox_events_published_total",
			Help:      "Outbox events relayed to the broker.",
		}),
		extractionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaguebook",
			Name:      "extraction_requests_total",
			Help:      "Photo extraction calls by kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.standingsDuration,
		m.scoreSubmissions, m.outboxPublished, m.extractionCalls,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ObserveStandings(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.standingsDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) CountScoreSubmission(result string) {
	if m == nil {
		return
	}
	m.scoreSubmissions.WithLabelValues(result).Inc()
}

func (m *Metrics) AddOutboxPublished(n int) {
	if m == nil {
		return
	}
	m.outboxPublished.Add(float64(n))
}

func (m *Metrics) CountExtraction(kind, result string) {
	if m == nil {
		return
	}
	m.extractionCalls.WithLabelValues(kind, result).Inc()
}

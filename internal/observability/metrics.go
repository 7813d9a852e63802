package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API and the realtime engine.
type Metrics struct {
	handler http.Handler

	RequestsTotal       *prometheus.CounterVec
	RequestErrors       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	PollsTotal          *prometheus.CounterVec
	PollDuration        *prometheus.HistogramVec
	ActiveSubscriptions prometheus.Gauge
	StatusChanges       *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status.",
		}, []string{"method", "path", "status"}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "HTTP requests that ended in an error envelope, by code.",
		}, []string{"method", "path", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_polls_total",
			Help: "Realtime fetches by session kind and outcome.",
		}, []string{"session", "outcome"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "realtime_poll_duration_seconds",
			Help:    "Realtime fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"session"}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_active_subscriptions",
			Help: "Realtime subscriptions currently held by the server.",
		}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_status_changes_total",
			Help: "Observed status transitions by resource.",
		}, []string{"resource"}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestErrors,
		m.RequestDuration,
		m.PollsTotal,
		m.PollDuration,
		m.ActiveSubscriptions,
		m.StatusChanges,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.RequestErrors.WithLabelValues(method, path, code).Inc()
}

// RecordPoll counts one realtime fetch. Session names look like
// "vehicle:VH-001"; only the kind before the colon is used as a label.
func (m *Metrics) RecordPoll(session string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	kind := sessionKind(session)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.PollsTotal.WithLabelValues(kind, outcome).Inc()
	m.PollDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SubscriptionOpened bumps the active subscription gauge.
func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Inc()
}

// SubscriptionClosed lowers the active subscription gauge.
func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Dec()
}

// RecordStatusChange counts one status transition for resource.
func (m *Metrics) RecordStatusChange(resource string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(resource).Inc()
}

func sessionKind(name string) string {
	kind, _, _ := strings.Cut(name, ":")
	if kind == "" {
		return "unknown"
	}
	return kind
}

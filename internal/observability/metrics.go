package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes request and location lifecycle counters. A nil *Metrics is
// a valid no-op collector.
type Metrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	audit     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil registerer returns nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by route, method and error code.",
		}, []string{"path", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "location_mutations_total",
			Help: "Committed location mutations by operation.",
		}, []string{"operation"}),
		audit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Audit entries written by update type.",
		}, []string{"update_type"}),
	}
	reg.MustRegister(m.requests, m.errors, m.duration, m.mutations, m.audit)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(path), method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(normalizeLabel(path), method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(normalizeLabel(path), method, normalizeLabel(code)).Inc()
}

// RecordMutation counts a committed location operation and its audit entries.
func (m *Metrics) RecordMutation(operation string, updateTypes ...string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(operation)).Inc()
	for _, t := range updateTypes {
		m.audit.WithLabelValues(normalizeLabel(t)).Inc()
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

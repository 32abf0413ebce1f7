package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainpricing "stayquote/internal/domain/pricing"
)

// Metrics groups the service collectors. Each instance owns its registry so
// tests can build several without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry
	messages *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	http     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stayquote",
			Subsystem: "bus",
			Name:      "messages_total",
			Help:      "Bus messages handled, segmented by key and outcome.",
		}, []string{"key", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stayquote",
			Subsystem: "bus",
			Name:      "message_duration_seconds",
			Help:      "Latency of bus message handling including provider reads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
		http: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stayquote",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.messages, m.latency, m.http)
	return m
}

// Observe implements middleware.Recorder. Invalid requests are labelled by
// kind so rejected quotes stay distinguishable from failures.
func (m *Metrics) Observe(key string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := domainpricing.KindOf(err); ok {
			outcome = string(kind)
		}
	}
	m.messages.WithLabelValues(key, outcome).Inc()
	m.latency.WithLabelValues(key).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	m.http.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

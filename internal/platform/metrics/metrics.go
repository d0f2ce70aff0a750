package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rwa_transitions_total",
			Help: "Lifecycle transitions processed, by asset, action and result",
		}, []string{"asset", "action", "result"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rwa_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordTransition counts one transition outcome. result is "ok" or the
// domain error code.
func (m *Metrics) RecordTransition(asset, action, result string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(asset, action, result).Inc()
}

// ObserveRequest records one request latency sample.
func (m *Metrics) ObserveRequest(route, method string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

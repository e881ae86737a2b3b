package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	pushes        *prometheus.CounterVec
	pushDuration  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexpush",
			Name:      "notifications_total",
			Help:      "Publish notifications handled, by outcome.",
		}, []string{"outcome"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indexpush",
			Name:      "pushes_total",
			Help:      "URL pushes sent to the indexing API, by result.",
		}, []string{"result"}),
		pushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "indexpush",
			Name:      "push_duration_seconds",
			Help:      "Latency of URL pushes to the indexing API.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.notifications, m.pushes, m.pushDuration)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePush(result string, latency time.Duration) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(result).Inc()
	m.pushDuration.Observe(latency.Seconds())
}

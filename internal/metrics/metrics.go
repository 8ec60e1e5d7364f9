// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry so repeated
// construction in tests never collides on global state.
type Metrics struct {
	registry  *prometheus.Registry
	reports   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New registers the service collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecograde_reports_total",
			Help: "Reports generated, labeled by analysis method and outcome.",
		}, []string{"method", "status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecograde_fallbacks_total",
			Help: "Producer fallbacks, labeled by the source that failed.",
		}, []string{"source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecograde_report_duration_seconds",
			Help:    "Time spent producing a report.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	registry.MustRegister(m.reports, m.fallbacks, m.duration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ReportGenerated records one finished report.
func (m *Metrics) ReportGenerated(method, status string, seconds float64) {
	m.reports.WithLabelValues(method, status).Inc()
	m.duration.Observe(seconds)
}

// FallbackTriggered records one producer failure.
func (m *Metrics) FallbackTriggered(source string) {
	m.fallbacks.WithLabelValues(source).Inc()
}

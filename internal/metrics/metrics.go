// Package metrics exposes Prometheus collectors for connectivity probes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopizi"

// Probe outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeFailure        = "failure"
	OutcomeTransportError = "transport_error"
)

// Metrics holds the probe collectors and the registry they belong to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	providerUp    *prometheus.GaugeVec
}

// New creates a registry with the Go runtime collectors and the probe metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Connectivity probes run, by provider, test type and outcome.",
		}, []string{"provider", "test_type", "outcome"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of connectivity probes.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "test_type"}),
		providerUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_up",
			Help:      "1 when the last scheduled probe of the active configuration succeeded.",
		}, []string{"provider"}),
	}
	reg.MustRegister(m.probesTotal, m.probeDuration, m.providerUp)
	return m
}

// ObserveProbe records one probe.
func (m *Metrics) ObserveProbe(provider, testType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.probesTotal.WithLabelValues(provider, testType, outcome).Inc()
	m.probeDuration.WithLabelValues(provider, testType).Observe(d.Seconds())
}

// SetProviderUp records the result of the last scheduled probe.
func (m *Metrics) SetProviderUp(provider string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.providerUp.WithLabelValues(provider).Set(v)
}

// ClearProviderUp drops the gauge of a provider with no active configuration.
func (m *Metrics) ClearProviderUp(provider string) {
	if m == nil {
		return
	}
	m.providerUp.DeleteLabelValues(provider)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus instrumentation of the provisioning service
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one registry. A nil *Metrics
// records nothing.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	prototypes    prometheus.Gauge
	gatherer      prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing nil uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vmforge",
				Subsystem: "provisioning",
				Name:      "requests_total",
				Help:      "Total number of provisioning requests by mode, provider and result status",
			},
			[]string{"mode", "provider", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vmforge",
				Subsystem: "provisioning",
				Name:      "duration_seconds",
				Help:      "Duration of provisioning requests in seconds, persistence included",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"mode"},
		),
		prototypes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vmforge",
				Name:      "prototypes_registered",
				Help:      "Number of templates in the prototype registry",
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.requestsTotal, m.duration, m.prototypes)
	return m
}

// ObserveRequest records one provisioning outcome
func (m *Metrics) ObserveRequest(mode, provider, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	m.requestsTotal.WithLabelValues(mode, provider, status).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// SetPrototypes records the current registry size
func (m *Metrics) SetPrototypes(n int) {
	if m == nil {
		return
	}
	m.prototypes.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

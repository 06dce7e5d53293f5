// Package metrics exposes Prometheus counters for the token lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophauth"

// Metrics records lifecycle events. The zero value is not usable; build one
// with New.
type Metrics struct {
	registry         *prometheus.Registry
	issued           prometheus.Counter
	rotated          prometheus.Counter
	rotationFailures *prometheus.CounterVec
	revoked          prometheus.Counter
	verifications    *prometheus.CounterVec
}

// New registers the counters on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Token pairs issued.",
		}),
		rotated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_rotations_total",
			Help:      "Refresh tokens exchanged for a new pair.",
		}),
		rotationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_rotation_failures_total",
			Help:      "Rejected or failed rotations by reason.",
		}, []string{"reason"}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_revocations_total",
			Help:      "Logout revocations.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_verifications_total",
			Help:      "Access token verifications by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.issued,
		m.rotated,
		m.rotationFailures,
		m.revoked,
		m.verifications,
	)
	return m
}

func (m *Metrics) Issued()  { m.issued.Inc() }
func (m *Metrics) Rotated() { m.rotated.Inc() }
func (m *Metrics) Revoked() { m.revoked.Inc() }

func (m *Metrics) RotationFailed(reason string) {
	m.rotationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) Verified(ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.verifications.WithLabelValues(result).Inc()
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// promMirror exposes the migration counters to Prometheus alongside the
// atomic counters. Methods handle a nil receiver (Prometheus disabled) as
// no-ops, mirroring the nil-safe pattern of AuthMetrics itself.
type promMirror struct {
	// authResults counts terminal handshake outcomes.
	// Labels: mechanism=[kerberos, simple], result=[success, failure, rejected]
	authResults *prometheus.CounterVec

	// activeConnections tracks sessions that have been opened and not yet
	// disposed.
	activeConnections prometheus.Gauge
}

// WithPrometheus registers the migration counters with the given registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
//
// The derived Kerberos ratio is registered as a GaugeFunc so it is computed
// on scrape rather than stored.
func WithPrometheus(registerer prometheus.Registerer) Option {
	return func(m *AuthMetrics) {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}

		mirror := &promMirror{
			authResults: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "saslgate_auth_results_total",
					Help: "Terminal authentication outcomes by mechanism and result",
				},
				[]string{"mechanism", "result"},
			),
			activeConnections: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "saslgate_active_connections",
					Help: "Negotiation sessions currently open",
				},
			),
		}

		kerberosRatio := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "saslgate_kerberos_ratio_percent",
				Help: "Share of successful handshakes that used Kerberos (0-100)",
			},
			m.KerberosPercentage,
		)

		registerer.MustRegister(
			mirror.authResults,
			mirror.activeConnections,
			kerberosRatio,
		)

		m.prom = mirror
	}
}

func (p *promMirror) recordResult(mechanism, result string) {
	if p == nil {
		return
	}
	p.authResults.WithLabelValues(mechanism, result).Inc()
}

func (p *promMirror) setActive(n int64) {
	if p == nil {
		return
	}
	p.activeConnections.Set(float64(n))
}

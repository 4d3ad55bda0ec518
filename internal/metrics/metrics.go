// Package metrics exposes Prometheus instrumentation for the gateway
// client and session manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the console core.
type Metrics struct {
	// Gateway metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DedupJoined     prometheus.Counter
	InFlight        prometheus.Gauge

	// Session metrics
	ForcedLogouts prometheus.Counter
}

// New creates a metrics collector registered against reg. Passing a
// dedicated registry keeps tests isolated from the default one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_gateway_requests_total",
				Help: "Total number of gateway calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_gateway_request_duration_seconds",
				Help:    "Gateway call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		DedupJoined: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_gateway_dedup_joined_total",
				Help: "Number of GET calls that joined an existing in-flight request",
			},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_gateway_inflight_requests",
				Help: "Number of network calls currently in flight",
			},
		),
		ForcedLogouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_session_forced_logouts_total",
				Help: "Number of server-initiated logouts (401 responses)",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestsTotal,
			m.RequestDuration,
			m.DedupJoined,
			m.InFlight,
			m.ForcedLogouts,
		)
	}

	return m
}

// NewDefault creates a metrics collector on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

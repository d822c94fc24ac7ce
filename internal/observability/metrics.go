package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the gateway's collectors so tests can use a private registry.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Compiles        *prometheus.CounterVec
	GuardDecisions  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerguide_http_requests_total",
				Help: "Total HTTP requests handled by the gateway",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerguide_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerguide_compiles_total",
				Help: "PDF compiles by the stage that produced the document",
			},
			[]string{"stage"},
		),
		GuardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerguide_auth_guard_decisions_total",
				Help: "Auth guard outcomes",
			},
			[]string{"state", "refreshed"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestDuration, m.Compiles, m.GuardDecisions)
	}
	return m
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth outcomes counted by AuthOutcome
const (
	OutcomeLogin         = "login"
	OutcomeFailedLogin   = "failed_login"
	OutcomeSecondFactor  = "second_factor_required"
	OutcomeOTPVerified   = "otp_verified"
	OutcomeOTPFailed     = "otp_failed"
	OutcomeAccessDenied  = "access_denied"
	OutcomeUnauthorized  = "unauthenticated"
	OutcomeAuditDegraded = "audit_degraded"
)

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authOutcomes *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "auth_outcomes_total",
			Help:      "Authentication and authorization outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.duration, m.authOutcomes)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.duration.WithLabelValues(method, route).Observe(seconds)
}

// AuthOutcome counts one authentication or authorization result
func (m *Metrics) AuthOutcome(outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(outcome).Inc()
}

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the gateway's prometheus instruments.
type Metrics struct {
	RequestDuration      *prometheus.HistogramVec
	GuardDecisions       *prometheus.CounterVec
	SessionEvents        *prometheus.CounterVec
	UpstreamRequests     *prometheus.CounterVec
	UpstreamBreakerState prometheus.Gauge
}

// NewMetrics registers the instruments against reg. A nil registerer falls
// back to a private registry, which keeps tests and library use quiet.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skylink_gateway_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),

		GuardDecisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "skylink_gateway_guard_decisions_total",
			Help: "Access guard outcomes by reason.",
		}, []string{"outcome", "reason"}),

		SessionEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "skylink_gateway_session_events_total",
			Help: "Session lifecycle events.",
		}, []string{"type"}),

		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "skylink_gateway_upstream_requests_total",
			Help: "Calls to the SkyLink API by operation and outcome.",
		}, []string{"operation", "outcome"}),

		UpstreamBreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "skylink_gateway_upstream_breaker_state",
			Help: "Circuit breaker state for the SkyLink API (0=closed, 1=open).",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordGuardDecision counts an access guard outcome.
func (m *Metrics) RecordGuardDecision(allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := "redirect"
	if allowed {
		outcome = "allow"
	}
	m.GuardDecisions.WithLabelValues(outcome, reason).Inc()
}

// RecordSessionEvent counts a session lifecycle event.
func (m *Metrics) RecordSessionEvent(eventType string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(eventType).Inc()
}

// RecordUpstreamRequest counts one upstream call.
func (m *Metrics) RecordUpstreamRequest(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
}

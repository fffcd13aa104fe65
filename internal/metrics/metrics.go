// Package metrics holds the storefront's Prometheus collectors.
//
// Collectors are created against an explicit Registerer so tests can use a
// private registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome of a store action.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeStale      = "stale"
	OutcomeGuarded    = "guarded"
	OutcomeFailed     = "failed"
)

// Metrics groups every collector the storefront exports.
type Metrics struct {
	storeActions     *prometheus.CounterVec
	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpInFlight     prometheus.Gauge
	activeSessions   prometheus.Gauge
	clientRejections *prometheus.CounterVec
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		storeActions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopfront_store_actions_total",
				Help: "Store actions by store, action and outcome",
			},
			[]string{"store", "action", "outcome"},
		),
		apiRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopfront_api_requests_total",
				Help: "Requests sent to the remote e-commerce API",
			},
			[]string{"method", "resource", "status"},
		),
		apiDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopfront_api_request_duration_seconds",
				Help:    "Remote e-commerce API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
		breakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shopfront_circuit_breaker_state",
				Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "shopfront_sessions_active",
			Help: "Storefront sessions currently held in memory",
		}),
		clientRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopfront_client_rejections_total",
				Help: "Requests rejected because of the Shopfront-Client header",
			},
			[]string{"reason"},
		),
	}
}

// StoreAction records the outcome of one store action.
func (m *Metrics) StoreAction(store, action, outcome string) {
	if m == nil {
		return
	}
	m.storeActions.WithLabelValues(store, action, outcome).Inc()
}

// APIRequest records one remote API round trip.
func (m *Metrics) APIRequest(method, resource, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, resource, status).Inc()
	m.apiDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// BreakerState sets the gauge for a named circuit breaker.
func (m *Metrics) BreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

// HTTPRequest records a served request. path is the route pattern, not the
// raw URL, to keep label cardinality bounded.
func (m *Metrics) HTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// InFlight adjusts the in-flight request gauge by delta.
func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.httpInFlight.Add(delta)
}

// SetSessions sets the active session gauge.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ClientRejected counts a request refused by the client-hint gate.
func (m *Metrics) ClientRejected(reason string) {
	if m == nil {
		return
	}
	m.clientRejections.WithLabelValues(reason).Inc()
}

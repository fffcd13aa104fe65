package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.StoreAction("cart", "update_quantity", OutcomeRolledBack)
	m.StoreAction("cart", "update_quantity", OutcomeRolledBack)
	m.StoreAction("wishlist", "toggle", OutcomeStale)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeActions.WithLabelValues("cart", "update_quantity", OutcomeRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeActions.WithLabelValues("wishlist", "toggle", OutcomeStale)))
}

func TestAPIRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.APIRequest("GET", "cart", "200", 120*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "cart", "200")))
	n, err := testutil.GatherAndCount(reg, "shopfront_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGauges(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BreakerState("ecommerce-api", 2)
	m.SetSessions(3)
	m.InFlight(1)
	m.InFlight(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.breakerState.WithLabelValues("ecommerce-api")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StoreAction("cart", "clear", OutcomeCommitted)
		m.APIRequest("GET", "cart", "200", time.Second)
		m.BreakerState("x", 0)
		m.HTTPRequest("GET", "/api/cart", "200", time.Second)
		m.InFlight(1)
		m.SetSessions(1)
		m.ClientRejected("version")
	})
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

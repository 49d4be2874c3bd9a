package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.NotificationPublished("cocina", "new_order")
	c.NotificationPublished("cocina", "new_order")
	c.NotificationPublished("cajero", "bill_request")
	c.OrderSubmitted()
	c.NotificationsRead(3)
	c.ClientConnected("mesero")
	c.ClientConnected("mesero")
	c.ClientDisconnected("mesero")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.notifications.WithLabelValues("cocina", "new_order")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("cajero", "bill_request")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.submissions))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.reads))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.wsClients.WithLabelValues("mesero")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.CashCounted("detailed")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `floor_cash_counts_total{method="detailed"} 1`)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	notifications *prometheus.CounterVec
	reads         prometheus.Counter
	submissions   prometheus.Counter
	rejected      prometheus.Counter
	cashCounts    *prometheus.CounterVec
	wsClients     *prometheus.GaugeVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floor_notifications_published_total",
				Help: "Notifications published, by target role and type",
			},
			[]string{"to_role", "type"},
		),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "floor_notifications_read_total",
			Help: "Notifications newly marked read",
		}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "floor_orders_submitted_total",
			Help: "Table orders sent to the kitchen",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "floor_orders_rejected_total",
			Help: "Submissions rejected because the cart was empty",
		}),
		cashCounts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floor_cash_counts_total",
				Help: "Cash reconciliations computed, by method",
			},
			[]string{"method"},
		),
		wsClients: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "floor_ws_clients",
				Help: "Connected WebSocket clients, by role",
			},
			[]string{"role"},
		),
	}

	c.registry.MustRegister(c.notifications, c.reads, c.submissions, c.rejected, c.cashCounts, c.wsClients)
	return c
}

func (c *Collector) NotificationPublished(toRole, kind string) {
	c.notifications.WithLabelValues(toRole, kind).Inc()
}

func (c *Collector) NotificationsRead(n int) {
	c.reads.Add(float64(n))
}

func (c *Collector) OrderSubmitted() { c.submissions.Inc() }

func (c *Collector) OrderRejected() { c.rejected.Inc() }

func (c *Collector) CashCounted(method string) {
	c.cashCounts.WithLabelValues(method).Inc()
}

func (c *Collector) ClientConnected(role string)    { c.wsClients.WithLabelValues(role).Inc() }
func (c *Collector) ClientDisconnected(role string) { c.wsClients.WithLabelValues(role).Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

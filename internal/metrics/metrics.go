// Package metrics holds the settlement-specific Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement paths.
const (
	PathDirect       = "direct"
	PathGatewayBegin = "gateway_begin"
	PathConfirm      = "gateway_confirm"
)

// Metrics records settlement outcomes. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	outcomes      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	clamped       prometheus.Counter
	lineFailures  prometheus.Counter
	lineSkips     prometheus.Counter
	reconciled    *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New registers the settlement metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_outcomes_total",
			Help: "Settlements by path and final state",
		}, []string{"path", "state"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Settlement latency by path",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		clamped: f.NewCounter(prometheus.CounterOpts{
			Name: "inventory_clamped_total",
			Help: "Stock decrements floored at zero",
		}),
		lineFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "inventory_line_failures_total",
			Help: "Stock decrements that failed and were left for reconciliation",
		}),
		lineSkips: f.NewCounter(prometheus.CounterOpts{
			Name: "inventory_line_skips_total",
			Help: "Stock decrements skipped because the product or variant no longer exists",
		}),
		reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_reconciled_orders_total",
			Help: "Orders processed by the inventory reconciler by result",
		}, []string{"result"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_notifications_total",
			Help: "Order notifications by result",
		}, []string{"result"}),
	}
}

// Settlement records one settlement reaching state.
func (m *Metrics) Settlement(path, state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(path, state).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// InventoryClamped counts a decrement floored at zero.
func (m *Metrics) InventoryClamped() {
	if m == nil {
		return
	}
	m.clamped.Inc()
}

// InventoryLineFailed counts a failed line decrement.
func (m *Metrics) InventoryLineFailed() {
	if m == nil {
		return
	}
	m.lineFailures.Inc()
}

// InventoryLineSkipped counts a line whose stock row no longer exists.
func (m *Metrics) InventoryLineSkipped() {
	if m == nil {
		return
	}
	m.lineSkips.Inc()
}

// Reconciled counts an order visited by the reconciler.
func (m *Metrics) Reconciled(result string) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(result).Inc()
}

// Notification counts a notification attempt.
func (m *Metrics) Notification(ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}

// Package worker runs background jobs of the settlement service.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/metrics"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/service"
)

// Reconciler results.
const (
	ResultAdjusted = "adjusted"
	ResultPending  = "pending"
)

// StockDecrementer applies the stock movements of an order.
type StockDecrementer interface {
	Decrement(ctx context.Context, o *domain.Order) []domain.LineResult
}

// ReconcilerConfig configures the inventory reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	// GracePeriod keeps the reconciler away from orders whose request is
	// still decrementing stock.
	GracePeriod time.Duration
	BatchSize   int
}

// Reconciler re-runs the stock decrement for orders that were settled but
// never stamped inventory-adjusted. Decrements are idempotent per order
// line, so a line applied by the request is not applied again.
//
// Orders that stay pending are not listed again until the scan reaches the
// end of the backlog, so a full batch of failing orders cannot hide the
// orders behind it.
type Reconciler struct {
	orders  repository.OrderRepository
	stock   StockDecrementer
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     ReconcilerConfig
	clock   func() time.Time
	cursor  repository.PendingCursor
}

// NewReconciler creates a reconciler.
func NewReconciler(orders repository.OrderRepository, stock StockDecrementer, m *metrics.Metrics, logger *slog.Logger, cfg ReconcilerConfig) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Reconciler{
		orders:  orders,
		stock:   stock,
		metrics: m,
		logger:  logger.With(slog.String("worker", "inventory_reconciler")),
		cfg:     cfg,
		clock:   time.Now,
	}
}

// Run reconciles on every tick until ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			adjusted, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("inventory reconciliation error", slog.String("error", err.Error()))
			} else if adjusted > 0 {
				r.logger.Info("inventory reconciled", slog.Int("orders", adjusted))
			}
		}
	}
}

// RunOnce processes one batch of pending orders and returns how many were
// fully adjusted. It is not safe for concurrent use.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	cutoff := r.clock().UTC().Add(-r.cfg.GracePeriod)
	orders, err := r.orders.ListPendingInventory(ctx, cutoff, r.cursor, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending inventory: %w", err)
	}

	// A short batch means the backlog is exhausted; start over next tick.
	if len(orders) < r.cfg.BatchSize {
		r.cursor = repository.PendingCursor{}
	} else {
		last := orders[len(orders)-1]
		r.cursor = repository.PendingCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	adjusted := 0
	for i := range orders {
		if ctx.Err() != nil {
			return adjusted, ctx.Err()
		}

		results := r.stock.Decrement(ctx, &orders[i])
		if service.Adjusted(results) {
			adjusted++
			r.metrics.Reconciled(ResultAdjusted)
			continue
		}
		r.metrics.Reconciled(ResultPending)
		r.logger.Warn("order still has unapplied stock movements",
			slog.String("order_id", orders[i].ID),
			slog.String("order_number", orders[i].OrderNumber),
		)
	}
	return adjusted, nil
}

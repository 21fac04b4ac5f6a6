package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/metrics"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

// InventoryUpdater decrements stock for settled orders. It is best-effort
// per line and safe to re-run: every line is applied at most once per order.
type InventoryUpdater struct {
	inventory repository.InventoryRepository
	orders    repository.OrderRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
	clock     func() time.Time
}

// NewInventoryUpdater creates an updater.
func NewInventoryUpdater(inventory repository.InventoryRepository, orders repository.OrderRepository, m *metrics.Metrics, logger *slog.Logger) *InventoryUpdater {
	return &InventoryUpdater{
		inventory: inventory,
		orders:    orders,
		metrics:   m,
		logger:    logger,
		clock:     time.Now,
	}
}

// Decrement applies every line of o. A failed line is logged and left for
// the reconciler; the order is stamped adjusted only when no line failed.
// A line whose stock row is gone can never apply, so it is skipped instead
// of failed.
func (u *InventoryUpdater) Decrement(ctx context.Context, o *domain.Order) []domain.LineResult {
	log := logger.WithContext(ctx, u.logger).With(slog.String("order_id", o.ID))

	results := make([]domain.LineResult, 0, len(o.Lines))
	failed := false
	for _, line := range o.Lines {
		res := domain.LineResult{ProductID: line.ProductID, VariantID: line.VariantID, Quantity: line.Quantity}

		applied, clamped, err := u.inventory.Decrement(ctx, o.ID, line)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			res.Skipped = true
			res.Error = err.Error()
			u.metrics.InventoryLineSkipped()
			log.WarnContext(ctx, "stock row missing, line skipped",
				slog.String("product_id", line.ProductID),
				slog.String("variant_id", line.VariantID),
			)
		case err != nil:
			failed = true
			res.Error = err.Error()
			u.metrics.InventoryLineFailed()
			log.ErrorContext(ctx, "stock decrement failed",
				slog.String("product_id", line.ProductID),
				slog.String("variant_id", line.VariantID),
				slog.String("error", err.Error()),
			)
		case !applied:
			res.Applied, res.Duplicate = true, true
		default:
			res.Applied, res.Clamped = true, clamped
			if clamped {
				u.metrics.InventoryClamped()
				log.WarnContext(ctx, "stock clamped at zero",
					slog.String("product_id", line.ProductID),
					slog.String("variant_id", line.VariantID),
					slog.Int("quantity", line.Quantity),
				)
			}
		}
		results = append(results, res)
	}

	if !failed {
		if err := u.orders.MarkInventoryAdjusted(ctx, o.ID, u.clock().UTC()); err != nil {
			log.ErrorContext(ctx, "failed to mark inventory adjusted", slog.String("error", err.Error()))
		}
	}
	return results
}

// Adjusted reports whether every line result was applied or skipped.
func Adjusted(results []domain.LineResult) bool {
	for _, r := range results {
		if !r.Applied && !r.Skipped {
			return false
		}
	}
	return true
}

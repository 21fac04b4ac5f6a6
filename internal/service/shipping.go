package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

// ShippingTable resolves shipping costs, falling back to a flat default.
type ShippingTable struct {
	repo        repository.ShippingRepository
	defaultCost int64
	logger      *slog.Logger
}

// NewShippingTable creates a shipping table with the given default cost.
func NewShippingTable(repo repository.ShippingRepository, defaultCost int64, logger *slog.Logger) *ShippingTable {
	return &ShippingTable{repo: repo, defaultCost: defaultCost, logger: logger}
}

// Default returns the flat-rate quote.
func (t *ShippingTable) Default() domain.ShippingQuote {
	return domain.ShippingQuote{Name: "Standard", Cost: t.defaultCost, Default: true}
}

// Quote returns the cost of methodID. An empty, unknown or inactive method
// gets the default quote, as does a lookup failure.
func (t *ShippingTable) Quote(ctx context.Context, methodID string) domain.ShippingQuote {
	if methodID == "" {
		return t.Default()
	}

	m, err := t.repo.GetMethod(ctx, methodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WithContext(ctx, t.logger).WarnContext(ctx, "shipping method lookup failed, using default",
				slog.String("shipping_method_id", methodID),
				slog.String("error", err.Error()),
			)
		}
		return t.Default()
	}
	if !m.Active {
		return t.Default()
	}

	return domain.ShippingQuote{
		MethodID:         m.ID,
		Name:             m.Name,
		Cost:             m.Cost,
		EstimatedDaysMin: m.EstimatedDaysMin,
		EstimatedDaysMax: m.EstimatedDaysMax,
	}
}

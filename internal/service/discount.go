package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

// DiscountLedger validates discount codes and prices their effect on a
// subtotal. The usage counter itself is only ever changed by a guarded
// statement in the store.
type DiscountLedger struct {
	repo  repository.DiscountRepository
	clock func() time.Time
}

// NewDiscountLedger creates a ledger.
func NewDiscountLedger(repo repository.DiscountRepository, clock func() time.Time) *DiscountLedger {
	if clock == nil {
		clock = time.Now
	}
	return &DiscountLedger{repo: repo, clock: clock}
}

// Quote checks that code can be applied to subtotal and returns the
// redemption it would produce, without consuming a use. An empty code
// quotes nothing.
func (l *DiscountLedger) Quote(ctx context.Context, code string, subtotal int64) (*domain.Redemption, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	d, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, discountRejected(code, "discount code does not exist")
		}
		return nil, fmt.Errorf("%w: get discount: %w", ErrPersistence, err)
	}

	if reason := d.Ineligibility(subtotal, l.clock().UTC()); reason != "" {
		return nil, discountRejected(code, reason)
	}

	return &domain.Redemption{
		DiscountID: d.ID,
		Code:       d.Code,
		Type:       d.Type,
		Value:      d.Value,
		Subtotal:   subtotal,
		Amount:     d.Amount(subtotal),
	}, nil
}

// Redeem consumes one use of code outside of an order transaction. The
// check and the increment are one guarded statement.
func (l *DiscountLedger) Redeem(ctx context.Context, code string, subtotal int64) (*domain.Redemption, error) {
	if _, err := l.Quote(ctx, code, subtotal); err != nil {
		return nil, err
	}

	red, err := l.repo.Redeem(ctx, code, subtotal, l.clock().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrDiscountExhausted) {
			return nil, discountRejected(code, "discount code usage limit reached")
		}
		return nil, fmt.Errorf("%w: redeem discount: %w", ErrPersistence, err)
	}
	return red, nil
}

// Release gives back a use consumed by Redeem.
func (l *DiscountLedger) Release(ctx context.Context, red *domain.Redemption) error {
	if red == nil {
		return nil
	}
	if err := l.repo.Release(ctx, red.DiscountID); err != nil {
		return fmt.Errorf("release discount %s: %w", red.Code, err)
	}
	return nil
}

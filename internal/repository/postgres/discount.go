package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

// redeemGuard holds every eligibility rule of a redemption so that the
// check and the increment are one statement.
const redeemGuard = `
	is_active
	AND usage_count < usage_limit
	AND (starts_at IS NULL OR starts_at <= $2)
	AND (ends_at IS NULL OR ends_at >= $2)
	AND minimum_purchase <= $3`

const redeemByCodeQuery = `
	UPDATE discounts
	SET usage_count = usage_count + 1, updated_at = $2
	WHERE UPPER(code) = UPPER($1) AND` + redeemGuard + `
	RETURNING id, code, type, value`

// redeemByIDQuery additionally pins type and value so a code edited after
// it was quoted is not redeemed on different terms.
const redeemByIDQuery = `
	UPDATE discounts
	SET usage_count = usage_count + 1, updated_at = $2
	WHERE id = $1 AND type = $4 AND value = $5 AND` + redeemGuard

const discountColumns = `id, code, type, value, minimum_purchase, usage_limit, usage_count, is_active, starts_at, ends_at`

// DiscountRepository implements repository.DiscountRepository using PostgreSQL.
type DiscountRepository struct {
	pool database.DBTX
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool database.DBTX) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// GetByCode retrieves a discount by code, ignoring case.
func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (d *domain.Discount, err error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE UPPER(code) = UPPER($1)`

	ctx, end := database.TraceQuery(ctx, "GetDiscountByCode", query)
	defer func() { end(err) }()

	var disc domain.Discount
	err = r.pool.QueryRow(ctx, query, code).Scan(
		&disc.ID, &disc.Code, &disc.Type, &disc.Value, &disc.MinimumPurchase,
		&disc.UsageLimit, &disc.UsageCount, &disc.Active, &disc.StartsAt, &disc.EndsAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get discount by code: %w", err)
	}
	return &disc, nil
}

// Redeem consumes one use of code with a single conditional UPDATE.
func (r *DiscountRepository) Redeem(ctx context.Context, code string, subtotal int64, now time.Time) (red *domain.Redemption, err error) {
	ctx, end := database.TraceQuery(ctx, "RedeemDiscount", redeemByCodeQuery)
	defer func() { end(err) }()

	d := domain.Discount{}
	err = r.pool.QueryRow(ctx, redeemByCodeQuery, code, now, subtotal).Scan(&d.ID, &d.Code, &d.Type, &d.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDiscountExhausted
		}
		return nil, fmt.Errorf("redeem discount: %w", err)
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

// Release gives back one use of a discount.
func (r *DiscountRepository) Release(ctx context.Context, discountID string) (err error) {
	query := `UPDATE discounts SET usage_count = GREATEST(usage_count - 1, 0), updated_at = NOW() WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "ReleaseDiscount", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, discountID)
	if err != nil {
		return fmt.Errorf("release discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// redeemWithin runs the guarded increment for an already quoted redemption
// on db, which is normally the settlement transaction.
func redeemWithin(ctx context.Context, db execer, red *domain.Redemption, now time.Time) error {
	tag, err := db.Exec(ctx, redeemByIDQuery, red.DiscountID, now, red.Subtotal, red.Type, red.Value)
	if err != nil {
		return fmt.Errorf("redeem discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrDiscountExhausted
	}
	return nil
}

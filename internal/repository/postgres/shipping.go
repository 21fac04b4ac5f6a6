package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

// ShippingRepository implements repository.ShippingRepository using PostgreSQL.
type ShippingRepository struct {
	pool database.DBTX
}

// NewShippingRepository creates a new PostgreSQL-backed shipping repository.
func NewShippingRepository(pool database.DBTX) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

// GetMethod retrieves a shipping method by id.
func (r *ShippingRepository) GetMethod(ctx context.Context, id string) (m *domain.ShippingMethod, err error) {
	query := `
		SELECT id, name, cost, estimated_days_min, estimated_days_max, is_active
		FROM shipping_methods
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetShippingMethod", query)
	defer func() { end(err) }()

	var method domain.ShippingMethod
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&method.ID, &method.Name, &method.Cost,
		&method.EstimatedDaysMin, &method.EstimatedDaysMax, &method.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get shipping method: %w", err)
	}
	return &method, nil
}

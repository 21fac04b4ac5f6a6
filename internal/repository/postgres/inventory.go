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

const insertMovementQuery = `
	INSERT INTO stock_movements (order_id, product_id, variant_id, quantity, previous_stock)
	VALUES ($1, $2, $3, $4, 0)
	ON CONFLICT DO NOTHING`

// InventoryRepository implements repository.InventoryRepository using PostgreSQL.
type InventoryRepository struct {
	pool database.DBTX
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool database.DBTX) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// Decrement records the stock movement for an order line and lowers stock,
// floored at zero. The movement row is inserted first: a concurrent or
// repeated call for the same order line blocks on the unique index and then
// inserts nothing, so stock is decremented at most once per line.
func (r *InventoryRepository) Decrement(ctx context.Context, orderID string, line domain.OrderLine) (applied, clamped bool, err error) {
	ctx, end := database.TraceQuery(ctx, "DecrementStock", insertMovementQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, insertMovementQuery, orderID, line.ProductID, nullable(line.VariantID), line.Quantity)
	if err != nil {
		return false, false, fmt.Errorf("insert stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, false, nil
	}

	table, id := "products", line.ProductID
	if line.VariantID != "" {
		table, id = "product_variants", line.VariantID
	}

	var previous int
	err = tx.QueryRow(ctx, `SELECT stock FROM `+table+` WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, apperrors.ErrNotFound
		}
		return false, false, fmt.Errorf("lock stock row: %w", err)
	}

	if _, err = tx.Exec(ctx, `UPDATE `+table+` SET stock = GREATEST(stock - $2, 0), updated_at = NOW() WHERE id = $1`, id, line.Quantity); err != nil {
		return false, false, fmt.Errorf("decrement stock: %w", err)
	}

	clamped = previous < line.Quantity
	if _, err = tx.Exec(ctx, `
		UPDATE stock_movements SET previous_stock = $4, clamped = $5
		WHERE order_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3`,
		orderID, line.ProductID, nullable(line.VariantID), previous, clamped,
	); err != nil {
		return false, false, fmt.Errorf("update stock movement: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, clamped, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

const productPriceQuery = `
	SELECT id, name, base_price, stock, status = 'published'
	FROM products
	WHERE id = $1`

const variantPriceQuery = `
	SELECT p.id, p.name, p.base_price + v.price_adjustment, v.stock,
		p.status = 'published' AND v.is_active, v.id, v.attributes
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.id = $1 AND v.product_id = $2`

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetPriceAndStock returns the authoritative unit price and stock of a
// product, or of a variant when variantID is set.
func (r *CatalogRepository) GetPriceAndStock(ctx context.Context, productID, variantID string) (item *domain.CatalogItem, err error) {
	if variantID == "" {
		ctx, end := database.TraceQuery(ctx, "GetProductPrice", productPriceQuery)
		defer func() { end(err) }()

		var it domain.CatalogItem
		err = r.pool.QueryRow(ctx, productPriceQuery, productID).Scan(
			&it.ProductID, &it.Name, &it.UnitPrice, &it.Stock, &it.Purchasable,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("query product price: %w", err)
		}
		return &it, nil
	}

	ctx, end := database.TraceQuery(ctx, "GetVariantPrice", variantPriceQuery)
	defer func() { end(err) }()

	var (
		it    domain.CatalogItem
		attrs []byte
	)
	err = r.pool.QueryRow(ctx, variantPriceQuery, variantID, productID).Scan(
		&it.ProductID, &it.Name, &it.UnitPrice, &it.Stock, &it.Purchasable, &it.VariantID, &attrs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query variant price: %w", err)
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &it.VariantAttributes); err != nil {
			return nil, fmt.Errorf("unmarshal variant attributes: %w", err)
		}
	}
	return &it, nil
}

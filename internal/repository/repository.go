package repository

import (
	"context"
	"time"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

// CatalogRepository is the read-only source of authoritative prices and stock.
type CatalogRepository interface {
	// GetPriceAndStock returns the catalog item for a product, or for one of
	// its variants when variantID is set. Returns apperrors.ErrNotFound when
	// the product or variant does not exist.
	GetPriceAndStock(ctx context.Context, productID, variantID string) (*domain.CatalogItem, error)
}

// DiscountRepository reads and atomically redeems discount codes.
type DiscountRepository interface {
	// GetByCode looks up a code case-insensitively.
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)

	// Redeem increments usage_count in a single guarded statement that only
	// succeeds while the code is active, within its window, under its usage
	// limit and the subtotal meets the minimum purchase. Returns
	// ErrDiscountExhausted when the guard rejects the redemption.
	Redeem(ctx context.Context, code string, subtotal int64, now time.Time) (*domain.Redemption, error)

	// Release gives back one use of the discount, never going below zero.
	Release(ctx context.Context, discountID string) error
}

// ShippingRepository reads shipping methods.
type ShippingRepository interface {
	GetMethod(ctx context.Context, id string) (*domain.ShippingMethod, error)
}

// OrderRepository persists settled orders.
type OrderRepository interface {
	// CreateSettled inserts the order and its lines in one transaction. When
	// redemption is non-nil the discount is redeemed inside the same
	// transaction, so a failed insert never consumes a use. A duplicate
	// payment correlation key returns ErrDuplicateCorrelationKey.
	CreateSettled(ctx context.Context, order *domain.Order, redemption *domain.Redemption, now time.Time) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCorrelationKey(ctx context.Context, key string) (*domain.Order, error)

	// ListPendingInventory returns up to limit orders created before
	// olderThan that have not been stamped inventory_adjusted_at and sort
	// after the cursor, ordered by creation time then id.
	ListPendingInventory(ctx context.Context, olderThan time.Time, after PendingCursor, limit int) ([]domain.Order, error)

	MarkInventoryAdjusted(ctx context.Context, orderID string, at time.Time) error
}

// PendingCursor is a position in the pending-inventory scan. The zero value
// starts at the oldest order.
type PendingCursor struct {
	CreatedAt time.Time
	ID        string
}

// InventoryRepository applies stock movements.
type InventoryRepository interface {
	// Decrement applies the movement for one order line at most once. The
	// stock is floored at zero; clamped reports that it had to be. applied
	// is false when the movement was already recorded for this order.
	Decrement(ctx context.Context, orderID string, line domain.OrderLine) (applied, clamped bool, err error)
}

// CartRepository reads and clears the shopper's stored cart.
type CartRepository interface {
	Get(ctx context.Context, identity string) (*domain.Cart, error)
	Clear(ctx context.Context, identity string) error
}

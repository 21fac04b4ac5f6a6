package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

const correlationKeyConstraint = "orders_payment_correlation_key_key"

const insertOrderQuery = `
	INSERT INTO orders (
		id, order_number, user_id, guest_id, email, status, payment_method, payment_status,
		subtotal, discount_amount, discount_code, discount_id, shipping_method_id, shipping_cost,
		tax_amount, total_amount, currency, shipping_address, payment_correlation_key,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

const insertOrderLineQuery = `
	INSERT INTO order_lines (id, order_id, product_id, variant_id, quantity, unit_price, line_total, product_name, variant_attributes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const insertRedemptionQuery = `
	INSERT INTO discount_redemptions (id, discount_id, order_id, amount, created_at)
	VALUES ($1, $2, $3, $4, $5)`

// selectOrderQuery loads orders with their lines aggregated in one round trip.
const selectOrderQuery = `
	SELECT
		o.id, o.order_number, o.user_id, o.guest_id, o.email, o.status, o.payment_method,
		o.payment_status, o.subtotal, o.discount_amount, o.discount_code, o.discount_id,
		o.shipping_method_id, o.shipping_cost, o.tax_amount, o.total_amount, o.currency,
		o.shipping_address, o.payment_correlation_key, o.inventory_adjusted_at,
		o.created_at, o.updated_at,
		COALESCE(
			JSONB_AGG(
				JSONB_BUILD_OBJECT(
					'id', l.id,
					'order_id', l.order_id,
					'product_id', l.product_id,
					'variant_id', l.variant_id,
					'quantity', l.quantity,
					'unit_price', l.unit_price,
					'line_total', l.line_total,
					'product_name', l.product_name,
					'variant_attributes', l.variant_attributes
				) ORDER BY l.product_id, l.variant_id
			) FILTER (WHERE l.id IS NOT NULL),
			'[]'::jsonb
		) AS lines
	FROM orders o
	LEFT JOIN order_lines l ON l.order_id = o.id`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateSettled redeems the discount (if any) and inserts the order, its
// lines and the redemption record in one transaction.
func (r *OrderRepository) CreateSettled(ctx context.Context, o *domain.Order, redemption *domain.Redemption, now time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateSettledOrder", insertOrderQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if redemption != nil {
		if err = redeemWithin(ctx, tx, redemption, now); err != nil {
			return err
		}
	}

	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	_, err = tx.Exec(ctx, insertOrderQuery,
		o.ID, o.OrderNumber, nullable(o.UserID), nullable(o.GuestID), nullable(o.Email),
		o.Status, o.PaymentMethod, o.PaymentStatus,
		o.Subtotal, o.DiscountAmount, nullable(o.DiscountCode), nullable(o.DiscountID),
		nullable(o.ShippingMethodID), o.ShippingCost, o.TaxAmount, o.TotalAmount, o.Currency,
		addr, nullable(o.PaymentCorrelationKey), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) && database.ViolatedConstraint(err) == correlationKeyConstraint {
			return repository.ErrDuplicateCorrelationKey
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		attrs, err := json.Marshal(attributesOrEmpty(l.VariantAttributes))
		if err != nil {
			return fmt.Errorf("marshal variant attributes: %w", err)
		}
		if _, err = tx.Exec(ctx, insertOrderLineQuery,
			l.ID, l.OrderID, l.ProductID, nullable(l.VariantID),
			l.Quantity, l.UnitPrice, l.LineTotal, l.ProductName, attrs,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if redemption != nil {
		if _, err = tx.Exec(ctx, insertRedemptionQuery,
			uuid.New().String(), redemption.DiscountID, o.ID, redemption.Amount, now,
		); err != nil {
			return fmt.Errorf("insert discount redemption: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an order and its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, "GetOrderByID", selectOrderQuery+` WHERE o.id = $1 GROUP BY o.id`, id)
}

// GetByCorrelationKey retrieves the order settled for a payment session.
func (r *OrderRepository) GetByCorrelationKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.getOne(ctx, "GetOrderByCorrelationKey", selectOrderQuery+` WHERE o.payment_correlation_key = $1 GROUP BY o.id`, key)
}

func (r *OrderRepository) getOne(ctx context.Context, op, query string, arg any) (o *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	o, err = scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// nilUUID sorts before every order id.
const nilUUID = "00000000-0000-0000-0000-000000000000"

// ListPendingInventory returns settled orders whose stock has not been
// adjusted yet, oldest first, starting after the cursor.
func (r *OrderRepository) ListPendingInventory(ctx context.Context, olderThan time.Time, after repository.PendingCursor, limit int) (orders []domain.Order, err error) {
	query := selectOrderQuery + `
		WHERE o.inventory_adjusted_at IS NULL AND o.created_at < $1
		  AND (o.created_at, o.id) > ($2, $3::uuid)
		GROUP BY o.id
		ORDER BY o.created_at, o.id
		LIMIT $4`

	afterID := after.ID
	if afterID == "" {
		afterID = nilUUID
	}

	ctx, end := database.TraceQuery(ctx, "ListPendingInventory", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, olderThan, after.CreatedAt, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending inventory: %w", err)
	}
	defer rows.Close()

	orders = make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// MarkInventoryAdjusted stamps the order once all stock movements applied.
func (r *OrderRepository) MarkInventoryAdjusted(ctx context.Context, orderID string, at time.Time) (err error) {
	query := `
		UPDATE orders
		SET inventory_adjusted_at = $2, updated_at = $2
		WHERE id = $1 AND inventory_adjusted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "MarkInventoryAdjusted", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, orderID, at); err != nil {
		return fmt.Errorf("mark inventory adjusted: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                                                 domain.Order
		userID, guestID, email, discountCode, discountID *string
		shippingMethodID, correlationKey                 *string
		addrJSON, linesJSON                              []byte
	)

	if err := row.Scan(
		&o.ID, &o.OrderNumber, &userID, &guestID, &email, &o.Status, &o.PaymentMethod,
		&o.PaymentStatus, &o.Subtotal, &o.DiscountAmount, &discountCode, &discountID,
		&shippingMethodID, &o.ShippingCost, &o.TaxAmount, &o.TotalAmount, &o.Currency,
		&addrJSON, &correlationKey, &o.InventoryAdjustedAt,
		&o.CreatedAt, &o.UpdatedAt,
		&linesJSON,
	); err != nil {
		return nil, err
	}

	o.UserID = deref(userID)
	o.GuestID = deref(guestID)
	o.Email = deref(email)
	o.DiscountCode = deref(discountCode)
	o.DiscountID = deref(discountID)
	o.ShippingMethodID = deref(shippingMethodID)
	o.PaymentCorrelationKey = deref(correlationKey)

	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	// null variant_id decodes to "".
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}

	return &o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func attributesOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

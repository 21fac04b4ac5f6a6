package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

// OrderMeta carries the non-priced parts of a new order.
type OrderMeta struct {
	Caller         domain.Caller
	Email          string
	Status         string
	PaymentMethod  string
	PaymentStatus  string
	CorrelationKey string
}

// FactoryConfig configures an OrderFactory.
type FactoryConfig struct {
	TaxRateBps int64
	Currency   string

	// Clock and Entropy default to time.Now and ulid.DefaultEntropy.
	Clock   func() time.Time
	Entropy io.Reader
}

// OrderFactory assembles priced carts into orders. Apart from the clock and
// the order number's randomness it is deterministic.
type OrderFactory struct {
	shipping   *ShippingTable
	taxRateBps int64
	currency   string
	clock      func() time.Time
	entropy    io.Reader
}

// NewOrderFactory creates a factory.
func NewOrderFactory(shipping *ShippingTable, cfg FactoryConfig) *OrderFactory {
	f := &OrderFactory{
		shipping:   shipping,
		taxRateBps: cfg.TaxRateBps,
		currency:   cfg.Currency,
		clock:      cfg.Clock,
		entropy:    cfg.Entropy,
	}
	if f.clock == nil {
		f.clock = time.Now
	}
	if f.entropy == nil {
		f.entropy = ulid.DefaultEntropy()
	}
	return f
}

// Totals computes the breakdown for a priced cart.
func (f *OrderFactory) Totals(priced *PricedCart, red *domain.Redemption, shipping domain.ShippingQuote) domain.Totals {
	t := domain.Totals{
		Subtotal:     priced.Subtotal,
		ShippingCost: shipping.Cost,
		Currency:     f.currency,
	}
	if red != nil {
		t.DiscountAmount = red.Amount
	}
	t.TaxAmount = domain.RoundBasisPoints(t.Subtotal-t.DiscountAmount, f.taxRateBps)
	t.TotalAmount = t.Subtotal - t.DiscountAmount + t.ShippingCost + t.TaxAmount
	return t
}

// Build assembles an order with its lines. Nothing is persisted.
func (f *OrderFactory) Build(ctx context.Context, priced *PricedCart, red *domain.Redemption, shippingMethodID string, addr domain.Address, meta OrderMeta) (*domain.Order, error) {
	now := f.clock().UTC()
	number, err := f.orderNumber(now)
	if err != nil {
		return nil, err
	}

	quote := f.shipping.Quote(ctx, shippingMethodID)
	totals := f.Totals(priced, red, quote)

	o := &domain.Order{
		ID:                    uuid.New().String(),
		OrderNumber:           number,
		Email:                 meta.Email,
		Status:                meta.Status,
		PaymentMethod:         meta.PaymentMethod,
		PaymentStatus:         meta.PaymentStatus,
		Subtotal:              totals.Subtotal,
		DiscountAmount:        totals.DiscountAmount,
		ShippingMethodID:      quote.MethodID,
		ShippingCost:          totals.ShippingCost,
		TaxAmount:             totals.TaxAmount,
		TotalAmount:           totals.TotalAmount,
		Currency:              totals.Currency,
		ShippingAddress:       addr,
		PaymentCorrelationKey: meta.CorrelationKey,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if meta.Caller.Guest {
		o.GuestID = meta.Caller.Identity
	} else {
		o.UserID = meta.Caller.Identity
	}
	if red != nil {
		o.DiscountCode = red.Code
		o.DiscountID = red.DiscountID
	}

	o.Lines = make([]domain.OrderLine, 0, len(priced.Lines))
	for _, l := range priced.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{
			ID:                uuid.New().String(),
			OrderID:           o.ID,
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			LineTotal:         l.LineTotal(),
			ProductName:       l.ProductName,
			VariantAttributes: l.VariantAttributes,
		})
	}
	return o, nil
}

// orderNumber returns "ORD-<yyyymmdd>-<ULID>". ULIDs sort by creation time.
func (f *OrderFactory) orderNumber(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), f.entropy)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), id.String()), nil
}

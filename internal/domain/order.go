package domain

import "time"

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// Payment methods.
const (
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodCard           = "card"
)

// Payment status constants.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Order is a settled order. It is created exactly once per successful
// settlement together with its lines.
type Order struct {
	ID                    string      `json:"id"`
	OrderNumber           string      `json:"order_number"`
	UserID                string      `json:"user_id,omitempty"`
	GuestID               string      `json:"guest_id,omitempty"`
	Email                 string      `json:"email,omitempty"`
	Status                string      `json:"status"`
	PaymentMethod         string      `json:"payment_method"`
	PaymentStatus         string      `json:"payment_status"`
	Subtotal              int64       `json:"subtotal"`
	DiscountAmount        int64       `json:"discount_amount"`
	DiscountCode          string      `json:"discount_code,omitempty"`
	DiscountID            string      `json:"discount_id,omitempty"`
	ShippingMethodID      string      `json:"shipping_method_id,omitempty"`
	ShippingCost          int64       `json:"shipping_cost"`
	TaxAmount             int64       `json:"tax_amount"`
	TotalAmount           int64       `json:"total_amount"`
	Currency              string      `json:"currency"`
	ShippingAddress       Address     `json:"shipping_address"`
	PaymentCorrelationKey string      `json:"payment_correlation_key,omitempty"`
	InventoryAdjustedAt   *time.Time  `json:"inventory_adjusted_at,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	Lines                 []OrderLine `json:"lines"`
}

// OrderLine is a priced line of an order. UnitPrice is always the catalog
// price at validation time.
type OrderLine struct {
	ID                string            `json:"id"`
	OrderID           string            `json:"order_id"`
	ProductID         string            `json:"product_id"`
	VariantID         string            `json:"variant_id,omitempty"`
	Quantity          int               `json:"quantity"`
	UnitPrice         int64             `json:"unit_price"`
	LineTotal         int64             `json:"line_total"`
	ProductName       string            `json:"product_name"`
	VariantAttributes map[string]string `json:"variant_attributes,omitempty"`
}

// Address is the shipping address snapshot stored on an order.
type Address struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone      string `json:"phone,omitempty" validate:"max=32"`
}

// Owner returns the identity that owns the order.
func (o *Order) Owner() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.GuestID
}

// ComputedTotal returns subtotal - discount + shipping + tax.
func (o *Order) ComputedTotal() int64 {
	return o.Subtotal - o.DiscountAmount + o.ShippingCost + o.TaxAmount
}

// AllowedTransitions defines the forward-only status graph.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCanceled},
		OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCanceled},
		OrderStatusProcessing: {OrderStatusShipped},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCanceled:   {},
	}
}

// CanTransitionTo reports whether the order may move to target.
func (o *Order) CanTransitionTo(target string) bool {
	for _, s := range AllowedTransitions()[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

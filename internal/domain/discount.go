package domain

import "time"

// Discount types.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Discount is a redeemable code. Percentage values are basis points, fixed
// values are cents. UsageCount never exceeds UsageLimit.
type Discount struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Type            string     `json:"type"`
	Value           int64      `json:"value"`
	MinimumPurchase int64      `json:"minimum_purchase"`
	UsageLimit      int        `json:"usage_limit"`
	UsageCount      int        `json:"usage_count"`
	Active          bool       `json:"active"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

// Amount returns the discount applied to subtotal: percentage rounds half-up
// and both types are capped at the subtotal.
func (d *Discount) Amount(subtotal int64) int64 {
	var amount int64
	switch d.Type {
	case DiscountTypePercentage:
		amount = RoundBasisPoints(subtotal, d.Value)
	case DiscountTypeFixed:
		amount = d.Value
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// Ineligibility returns the reason the discount cannot be applied to subtotal
// at now, or "" when it can.
func (d *Discount) Ineligibility(subtotal int64, now time.Time) string {
	switch {
	case !d.Active:
		return "discount code is not active"
	case d.StartsAt != nil && now.Before(*d.StartsAt):
		return "discount code is not yet valid"
	case d.EndsAt != nil && now.After(*d.EndsAt):
		return "discount code has expired"
	case subtotal < d.MinimumPurchase:
		return "order subtotal is below the minimum purchase for this code"
	case d.UsageCount >= d.UsageLimit:
		return "discount code usage limit reached"
	}
	return ""
}

// Redemption is the result of applying a discount to a subtotal.
type Redemption struct {
	DiscountID string `json:"discount_id"`
	Code       string `json:"code"`
	Type       string `json:"type"`
	Value      int64  `json:"value"`
	Subtotal   int64  `json:"subtotal"`
	Amount     int64  `json:"amount"`
}

// RoundBasisPoints returns amount x bps / 10000 rounded half-up.
func RoundBasisPoints(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundBasisPoints(t *testing.T) {
	assert.Equal(t, int64(160), RoundBasisPoints(2000, 800))
	assert.Equal(t, int64(120), RoundBasisPoints(1500, 800))
	assert.Equal(t, int64(1), RoundBasisPoints(7, 800), "0.56 rounds up")
	assert.Equal(t, int64(0), RoundBasisPoints(6, 800), "0.48 rounds down")
	assert.Equal(t, int64(0), RoundBasisPoints(0, 800))
}

func TestDiscount_Amount(t *testing.T) {
	pct := &Discount{Type: DiscountTypePercentage, Value: 1500}
	assert.Equal(t, int64(300), pct.Amount(2000))
	assert.Equal(t, int64(150), pct.Amount(999), "149.85 rounds half up")

	fixed := &Discount{Type: DiscountTypeFixed, Value: 500}
	assert.Equal(t, int64(500), fixed.Amount(2000))
	assert.Equal(t, int64(300), fixed.Amount(300), "capped at subtotal")

	unknown := &Discount{Type: "bogo", Value: 500}
	assert.Equal(t, int64(0), unknown.Amount(2000))
}

func TestDiscount_Ineligibility(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	base := Discount{Type: DiscountTypeFixed, Value: 500, UsageLimit: 2, Active: true, MinimumPurchase: 1000}

	assert.Empty(t, base.Ineligibility(1000, now))

	inactive := base
	inactive.Active = false
	assert.NotEmpty(t, inactive.Ineligibility(1000, now))

	notYet := base
	notYet.StartsAt = &later
	assert.Contains(t, notYet.Ineligibility(1000, now), "not yet")

	expired := base
	expired.EndsAt = &earlier
	assert.Contains(t, expired.Ineligibility(1000, now), "expired")

	assert.Contains(t, base.Ineligibility(999, now), "minimum")

	used := base
	used.UsageCount = 2
	assert.Contains(t, used.Ineligibility(1000, now), "usage limit")
}

func TestOrder_Owner(t *testing.T) {
	assert.Equal(t, "u1", (&Order{UserID: "u1"}).Owner())
	assert.Equal(t, "g1", (&Order{GuestID: "g1"}).Owner())
}

func TestOrder_CanTransitionTo(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	assert.True(t, o.CanTransitionTo(OrderStatusConfirmed))
	assert.False(t, o.CanTransitionTo(OrderStatusShipped))

	o.Status = OrderStatusDelivered
	assert.False(t, o.CanTransitionTo(OrderStatusCanceled))
}

func TestCart_Lines(t *testing.T) {
	c := &Cart{Items: []CartItem{{ProductID: "p1", VariantID: "v1", Price: 1250, Quantity: 2}}}
	assert.Equal(t, []CartLine{{ProductID: "p1", VariantID: "v1", Quantity: 2, ClientPrice: 1250}}, c.Lines())
}

func TestSettlementState_Terminal(t *testing.T) {
	for _, s := range []SettlementState{StateSettled, StateRejected, StateGatewayDeclined, StateAlreadySettled} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []SettlementState{StateValidating, StatePricingOK, StateDiscountResolved, StateOrderCreated, StateInventoryAdjusted} {
		assert.False(t, s.Terminal(), s)
	}
}

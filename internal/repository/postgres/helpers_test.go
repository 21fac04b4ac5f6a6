package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
)

const (
	productX = "11111111-1111-1111-1111-111111111111"
	variantX = "22222222-2222-2222-2222-222222222222"
	orderID  = "33333333-3333-3333-3333-333333333333"
	lineID   = "44444444-4444-4444-4444-444444444444"
	discID   = "55555555-5555-5555-5555-555555555555"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	return database.NewMockPool(t)
}

func strPtr(s string) *string {
	return &s
}

func sampleOrder() *domain.Order {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:             orderID,
		OrderNumber:    "ORD-20261015-01JABCDEFGHJKMNPQRSTVWXYZ0",
		UserID:         "user-1",
		Email:          "ada@example.com",
		Status:         domain.OrderStatusConfirmed,
		PaymentMethod:  domain.PaymentMethodCard,
		PaymentStatus:  domain.PaymentStatusPaid,
		Subtotal:       2000,
		DiscountAmount: 500,
		DiscountCode:   "SAVE10",
		DiscountID:     discID,
		ShippingCost:   999,
		TaxAmount:      120,
		TotalAmount:    2619,
		Currency:       "USD",
		ShippingAddress: domain.Address{
			FullName: "Ada Lovelace", Line1: "1 Analytical Way", City: "London",
			PostalCode: "N1 9GU", Country: "GB",
		},
		PaymentCorrelationKey: "cs_test_1",
		CreatedAt:             now,
		UpdatedAt:             now,
		Lines: []domain.OrderLine{{
			ID:          lineID,
			OrderID:     orderID,
			ProductID:   productX,
			VariantID:   variantX,
			Quantity:    2,
			UnitPrice:   1000,
			LineTotal:   2000,
			ProductName: "Product X",
		}},
	}
}

func sampleRedemption() *domain.Redemption {
	return &domain.Redemption{
		DiscountID: discID,
		Code:       "SAVE10",
		Type:       domain.DiscountTypeFixed,
		Value:      500,
		Subtotal:   2000,
		Amount:     500,
	}
}

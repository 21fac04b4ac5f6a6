package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) GetPriceAndStock(ctx context.Context, productID, variantID string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

type mockDiscountRepository struct {
	mock.Mock
}

func (m *mockDiscountRepository) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

func (m *mockDiscountRepository) Redeem(ctx context.Context, code string, subtotal int64, now time.Time) (*domain.Redemption, error) {
	args := m.Called(ctx, code, subtotal, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Redemption), args.Error(1)
}

func (m *mockDiscountRepository) Release(ctx context.Context, discountID string) error {
	args := m.Called(ctx, discountID)
	return args.Error(0)
}

type mockShippingRepository struct {
	mock.Mock
}

func (m *mockShippingRepository) GetMethod(ctx context.Context, id string) (*domain.ShippingMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingMethod), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CreateSettled(ctx context.Context, order *domain.Order, redemption *domain.Redemption, now time.Time) error {
	args := m.Called(ctx, order, redemption, now)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByCorrelationKey(ctx context.Context, key string) (*domain.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListPendingInventory(ctx context.Context, olderThan time.Time, after repository.PendingCursor, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, olderThan, after, limit)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) MarkInventoryAdjusted(ctx context.Context, orderID string, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

type mockInventoryRepository struct {
	mock.Mock
}

func (m *mockInventoryRepository) Decrement(ctx context.Context, orderID string, line domain.OrderLine) (bool, bool, error) {
	args := m.Called(ctx, orderID, line)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

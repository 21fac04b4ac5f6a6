package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/validator"
)

func widget(stock int) *domain.CatalogItem {
	return &domain.CatalogItem{ProductID: productX, Name: "Widget", UnitPrice: 1000, Stock: stock, Purchasable: true}
}

func TestPricingValidator_MergesDuplicateLines(t *testing.T) {
	catalog := new(mockCatalogRepository)
	catalog.On("GetPriceAndStock", mock.Anything, productX, "").Return(widget(10), nil).Once()
	v := NewPricingValidator(catalog, time.Second)

	priced, err := v.Validate(context.Background(), []domain.CartLine{
		{ProductID: productX, Quantity: 2, ClientPrice: 1000},
		{ProductID: productX, Quantity: 3, ClientPrice: 1001},
	}, testAddress)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 1)
	assert.Equal(t, 5, priced.Lines[0].Quantity)
	assert.Equal(t, int64(1000), priced.Lines[0].UnitPrice)
	assert.Equal(t, int64(5000), priced.Subtotal)
	catalog.AssertExpectations(t)
}

func TestPricingValidator_MergedQuantityCheckedAgainstStock(t *testing.T) {
	catalog := new(mockCatalogRepository)
	catalog.On("GetPriceAndStock", mock.Anything, productX, "").Return(widget(4), nil)
	v := NewPricingValidator(catalog, 0)

	_, err := v.Validate(context.Background(), []domain.CartLine{
		{ProductID: productX, Quantity: 2, ClientPrice: 1000},
		{ProductID: productX, Quantity: 3, ClientPrice: 1000},
	}, testAddress)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 5, appErr.Details["requested"])
	assert.Equal(t, 4, appErr.Details["available"])
}

func TestPricingValidator_PriceTolerance(t *testing.T) {
	tests := []struct {
		name        string
		clientPrice int64
		wantErr     bool
	}{
		{"exact", 1000, false},
		{"one cent low", 999, false},
		{"one cent high", 1001, false},
		{"two cents low", 998, true},
		{"a dollar low", 900, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(mockCatalogRepository)
			catalog.On("GetPriceAndStock", mock.Anything, productX, "").Return(widget(10), nil)
			v := NewPricingValidator(catalog, 0)

			_, err := v.Validate(context.Background(), []domain.CartLine{{ProductID: productX, Quantity: 1, ClientPrice: tt.clientPrice}}, testAddress)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPriceMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPricingValidator_UnknownProduct(t *testing.T) {
	catalog := new(mockCatalogRepository)
	catalog.On("GetPriceAndStock", mock.Anything, productX, variantY1).Return(nil, apperrors.ErrNotFound)
	v := NewPricingValidator(catalog, 0)

	_, err := v.Validate(context.Background(), []domain.CartLine{{ProductID: productX, VariantID: variantY1, Quantity: 1}}, testAddress)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestPricingValidator_UnpublishedProduct(t *testing.T) {
	item := widget(10)
	item.Purchasable = false
	catalog := new(mockCatalogRepository)
	catalog.On("GetPriceAndStock", mock.Anything, productX, "").Return(item, nil)
	v := NewPricingValidator(catalog, 0)

	_, err := v.Validate(context.Background(), []domain.CartLine{{ProductID: productX, Quantity: 1, ClientPrice: 1000}}, testAddress)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestPricingValidator_CatalogOutage(t *testing.T) {
	catalog := new(mockCatalogRepository)
	catalog.On("GetPriceAndStock", mock.Anything, productX, "").Return(nil, errors.New("connection reset"))
	v := NewPricingValidator(catalog, 0)

	_, err := v.Validate(context.Background(), []domain.CartLine{{ProductID: productX, Quantity: 1, ClientPrice: 1000}}, testAddress)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidProduct)
}

func TestPricingValidator_AddressCheckedFirst(t *testing.T) {
	catalog := new(mockCatalogRepository)
	v := NewPricingValidator(catalog, 0)

	addr := testAddress
	addr.Country = "Britain"
	_, err := v.Validate(context.Background(), []domain.CartLine{{ProductID: productX, Quantity: 1, ClientPrice: 1000}}, addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "country")
	catalog.AssertNotCalled(t, "GetPriceAndStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPricingValidator_EmptyCart(t *testing.T) {
	v := NewPricingValidator(new(mockCatalogRepository), 0)

	_, err := v.Validate(context.Background(), nil, testAddress)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

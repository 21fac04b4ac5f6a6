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
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

var ledgerNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return ledgerNow }

func TestDiscountLedger_Quote(t *testing.T) {
	expired := ledgerNow.Add(-time.Hour)

	tests := []struct {
		name       string
		discount   *domain.Discount
		subtotal   int64
		wantAmount int64
		wantReject bool
	}{
		{
			name:       "percentage rounds half up",
			discount:   &domain.Discount{ID: "d1", Code: "TEN", Type: domain.DiscountTypePercentage, Value: 1000, UsageLimit: 5, Active: true},
			subtotal:   1995,
			wantAmount: 200,
		},
		{
			name:       "fixed capped at subtotal",
			discount:   &domain.Discount{ID: "d2", Code: "BIG", Type: domain.DiscountTypeFixed, Value: 5000, UsageLimit: 5, Active: true},
			subtotal:   2000,
			wantAmount: 2000,
		},
		{
			name:       "below minimum purchase",
			discount:   &domain.Discount{ID: "d3", Code: "MIN", Type: domain.DiscountTypeFixed, Value: 500, MinimumPurchase: 5000, UsageLimit: 5, Active: true},
			subtotal:   2000,
			wantReject: true,
		},
		{
			name:       "expired",
			discount:   &domain.Discount{ID: "d4", Code: "OLD", Type: domain.DiscountTypeFixed, Value: 500, UsageLimit: 5, Active: true, EndsAt: &expired},
			subtotal:   2000,
			wantReject: true,
		},
		{
			name:       "exhausted",
			discount:   &domain.Discount{ID: "d5", Code: "USED", Type: domain.DiscountTypeFixed, Value: 500, UsageLimit: 1, UsageCount: 1, Active: true},
			subtotal:   2000,
			wantReject: true,
		},
		{
			name:       "inactive",
			discount:   &domain.Discount{ID: "d6", Code: "OFF", Type: domain.DiscountTypeFixed, Value: 500, UsageLimit: 1},
			subtotal:   2000,
			wantReject: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockDiscountRepository)
			repo.On("GetByCode", mock.Anything, tt.discount.Code).Return(tt.discount, nil)
			ledger := NewDiscountLedger(repo, fixedClock)

			red, err := ledger.Quote(context.Background(), tt.discount.Code, tt.subtotal)
			if tt.wantReject {
				assert.ErrorIs(t, err, ErrDiscountRejected)
				assert.Nil(t, red)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, red.Amount)
			assert.Equal(t, tt.discount.ID, red.DiscountID)
			assert.Equal(t, tt.subtotal, red.Subtotal)
			repo.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDiscountLedger_Quote_EmptyCode(t *testing.T) {
	ledger := NewDiscountLedger(new(mockDiscountRepository), fixedClock)

	red, err := ledger.Quote(context.Background(), "  ", 2000)
	require.NoError(t, err)
	assert.Nil(t, red)
}

func TestDiscountLedger_Quote_UnknownCode(t *testing.T) {
	repo := new(mockDiscountRepository)
	repo.On("GetByCode", mock.Anything, "NOPE").Return(nil, apperrors.ErrNotFound)
	ledger := NewDiscountLedger(repo, fixedClock)

	_, err := ledger.Quote(context.Background(), "NOPE", 2000)
	assert.ErrorIs(t, err, ErrDiscountRejected)
}

func TestDiscountLedger_Quote_StoreFailure(t *testing.T) {
	repo := new(mockDiscountRepository)
	repo.On("GetByCode", mock.Anything, "SAVE10").Return(nil, errors.New("timeout"))
	ledger := NewDiscountLedger(repo, fixedClock)

	_, err := ledger.Quote(context.Background(), "SAVE10", 2000)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrDiscountRejected)
}

func TestDiscountLedger_Redeem(t *testing.T) {
	d := &domain.Discount{ID: "d1", Code: "SAVE10", Type: domain.DiscountTypeFixed, Value: 500, UsageLimit: 1, Active: true}
	red := &domain.Redemption{DiscountID: "d1", Code: "SAVE10", Type: domain.DiscountTypeFixed, Value: 500, Subtotal: 2000, Amount: 500}

	repo := new(mockDiscountRepository)
	repo.On("GetByCode", mock.Anything, "SAVE10").Return(d, nil)
	repo.On("Redeem", mock.Anything, "SAVE10", int64(2000), ledgerNow).Return(red, nil).Once()
	repo.On("Redeem", mock.Anything, "SAVE10", int64(2000), ledgerNow).Return(nil, repository.ErrDiscountExhausted)
	ledger := NewDiscountLedger(repo, fixedClock)

	got, err := ledger.Redeem(context.Background(), "SAVE10", 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Amount)

	_, err = ledger.Redeem(context.Background(), "SAVE10", 2000)
	assert.ErrorIs(t, err, ErrDiscountRejected)
	repo.AssertExpectations(t)
}

func TestDiscountLedger_Release(t *testing.T) {
	repo := new(mockDiscountRepository)
	repo.On("Release", mock.Anything, "d1").Return(nil).Once()
	ledger := NewDiscountLedger(repo, fixedClock)

	require.NoError(t, ledger.Release(context.Background(), &domain.Redemption{DiscountID: "d1", Code: "SAVE10"}))
	require.NoError(t, ledger.Release(context.Background(), nil))
	repo.AssertExpectations(t)
}

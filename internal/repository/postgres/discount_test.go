package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

var discountCols = []string{
	"id", "code", "type", "value", "minimum_purchase", "usage_limit",
	"usage_count", "is_active", "starts_at", "ends_at",
}

// --- GetByCode Tests ---

func TestDiscountRepository_GetByCode_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)

	mock.ExpectQuery("FROM discounts WHERE UPPER\\(code\\) = UPPER\\(\\$1\\)").
		WithArgs("save10").
		WillReturnRows(pgxmock.NewRows(discountCols).
			AddRow(discID, "SAVE10", "fixed", int64(500), int64(0), 1, 0, true, (*time.Time)(nil), (*time.Time)(nil)))

	d, err := repo.GetByCode(context.Background(), "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", d.Code)
	assert.Equal(t, int64(500), d.Value)
	assert.Nil(t, d.EndsAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepository_GetByCode_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)

	mock.ExpectQuery("FROM discounts").WithArgs("NOPE").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Redeem Tests ---

func TestDiscountRepository_Redeem_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE discounts\\s+SET usage_count = usage_count \\+ 1").
		WithArgs("SAVE10", now, int64(2000)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code", "type", "value"}).
			AddRow(discID, "SAVE10", "percentage", int64(1000)))

	red, err := repo.Redeem(context.Background(), "SAVE10", 2000, now)
	require.NoError(t, err)
	assert.Equal(t, discID, red.DiscountID)
	assert.Equal(t, int64(200), red.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepository_Redeem_GuardRejects(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE discounts").
		WithArgs("SAVE10", now, int64(2000)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Redeem(context.Background(), "SAVE10", 2000, now)
	assert.ErrorIs(t, err, repository.ErrDiscountExhausted)
}

// --- Release Tests ---

func TestDiscountRepository_Release(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)

	mock.ExpectExec("GREATEST\\(usage_count - 1, 0\\)").
		WithArgs(discID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Release(context.Background(), discID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepository_Release_Unknown(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscountRepository(mock)

	mock.ExpectExec("UPDATE discounts").WithArgs("missing").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Release(context.Background(), "missing"), apperrors.ErrNotFound)
}

func TestRedeemWithin_PinsTerms(t *testing.T) {
	mock := newMock(t)
	now := time.Now().UTC()
	red := &domain.Redemption{DiscountID: discID, Type: "fixed", Value: 500, Subtotal: 2000}

	mock.ExpectExec("WHERE id = \\$1 AND type = \\$4 AND value = \\$5").
		WithArgs(discID, now, int64(2000), "fixed", int64(500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, redeemWithin(context.Background(), mock, red, now), repository.ErrDiscountExhausted)
}

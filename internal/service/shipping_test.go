package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

func TestShippingTable_Quote(t *testing.T) {
	express := &domain.ShippingMethod{ID: expressID, Name: "Express", Cost: 1999, EstimatedDaysMin: 1, EstimatedDaysMax: 2, Active: true}
	retired := &domain.ShippingMethod{ID: "retired", Name: "Pigeon", Cost: 50}

	repo := new(mockShippingRepository)
	repo.On("GetMethod", mock.Anything, expressID).Return(express, nil)
	repo.On("GetMethod", mock.Anything, "retired").Return(retired, nil)
	repo.On("GetMethod", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)
	repo.On("GetMethod", mock.Anything, "broken").Return(nil, errors.New("db down"))

	table := NewShippingTable(repo, 999, logger.NewWithWriter("test", "error", io.Discard))
	ctx := context.Background()

	q := table.Quote(ctx, expressID)
	assert.Equal(t, int64(1999), q.Cost)
	assert.Equal(t, expressID, q.MethodID)
	assert.False(t, q.Default)

	for _, id := range []string{"", "retired", "missing", "broken"} {
		q := table.Quote(ctx, id)
		assert.True(t, q.Default, id)
		assert.Equal(t, int64(999), q.Cost, id)
		assert.Empty(t, q.MethodID, id)
	}
	repo.AssertNotCalled(t, "GetMethod", mock.Anything, "")
}

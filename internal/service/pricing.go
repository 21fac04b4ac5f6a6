package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/validator"
)

// priceTolerance is the largest accepted difference, in cents, between the
// client's price and the catalog price.
const priceTolerance = 1

// PricedCart is a cart re-priced from the catalog.
type PricedCart struct {
	Lines    []domain.ResolvedLine
	Subtotal int64
}

// PricingValidator re-derives line prices and checks stock. It has no side
// effects.
type PricingValidator struct {
	catalog repository.CatalogRepository
	timeout time.Duration
}

// NewPricingValidator creates a validator. Each catalog lookup is bounded by
// timeout when it is positive.
func NewPricingValidator(catalog repository.CatalogRepository, timeout time.Duration) *PricingValidator {
	return &PricingValidator{catalog: catalog, timeout: timeout}
}

// Validate resolves lines against the catalog and checks the shipping
// address. Lines for the same product and variant are merged first, so
// splitting a line cannot get past the stock check.
func (v *PricingValidator) Validate(ctx context.Context, lines []domain.CartLine, addr domain.Address) (*PricedCart, error) {
	if err := validator.Validate(addr); err != nil {
		return nil, invalidAddress(err)
	}
	if len(lines) == 0 {
		return nil, cartEmpty()
	}

	merged := make([]domain.CartLine, 0, len(lines))
	index := make(map[domain.LineKey]int, len(lines))
	items := make(map[domain.LineKey]*domain.CatalogItem, len(lines))

	for _, l := range lines {
		key := l.Key()
		item, ok := items[key]
		if !ok {
			var err error
			if item, err = v.lookup(ctx, l.ProductID, l.VariantID); err != nil {
				return nil, err
			}
			items[key] = item
		}

		if diff := l.ClientPrice - item.UnitPrice; diff > priceTolerance || diff < -priceTolerance {
			return nil, priceMismatch(l.ProductID, l.VariantID, l.ClientPrice, item.UnitPrice)
		}

		if i, seen := index[key]; seen {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, l)
	}

	priced := &PricedCart{Lines: make([]domain.ResolvedLine, 0, len(merged))}
	for _, l := range merged {
		item := items[l.Key()]
		if l.Quantity > item.Stock {
			return nil, insufficientStock(l.ProductID, l.VariantID, l.Quantity, item.Stock)
		}

		resolved := domain.ResolvedLine{
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			Quantity:          l.Quantity,
			UnitPrice:         item.UnitPrice,
			ProductName:       item.Name,
			VariantAttributes: item.VariantAttributes,
		}
		priced.Lines = append(priced.Lines, resolved)
		priced.Subtotal += resolved.LineTotal()
	}
	return priced, nil
}

func (v *PricingValidator) lookup(ctx context.Context, productID, variantID string) (*domain.CatalogItem, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	item, err := v.catalog.GetPriceAndStock(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalidProduct(productID, variantID, "product or variant does not exist")
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if !item.Purchasable {
		return nil, invalidProduct(productID, variantID, "product is not available for purchase")
	}
	return item, nil
}

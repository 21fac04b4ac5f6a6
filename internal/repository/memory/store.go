// Package memory provides in-process implementations of every repository
// interface. It backs STORAGE_DRIVER=memory and the settlement tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

// Product is a catalog product as seeded into the store.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BasePrice int64  `json:"base_price"`
	Stock     int    `json:"stock"`
	Published bool   `json:"published"`
}

// Variant is a product variant as seeded into the store.
type Variant struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	PriceAdjustment int64             `json:"price_adjustment"`
	Stock           int               `json:"stock"`
	Active          bool              `json:"active"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

type movementKey struct {
	orderID   string
	productID string
	variantID string
}

// Store holds all state behind one mutex, so every operation is atomic with
// respect to the others.
type Store struct {
	mu sync.Mutex

	products  map[string]Product
	variants  map[string]Variant
	discounts map[string]*domain.Discount // keyed by upper-cased code
	shipping  map[string]domain.ShippingMethod
	orders    map[string]*domain.Order
	byKey     map[string]string // payment correlation key -> order id
	numbers   map[string]struct{}
	movements map[movementKey]struct{}
	carts     map[string]*domain.Cart
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]Product),
		variants:  make(map[string]Variant),
		discounts: make(map[string]*domain.Discount),
		shipping:  make(map[string]domain.ShippingMethod),
		orders:    make(map[string]*domain.Order),
		byKey:     make(map[string]string),
		numbers:   make(map[string]struct{}),
		movements: make(map[movementKey]struct{}),
		carts:     make(map[string]*domain.Cart),
	}
}

// PutProduct adds or replaces a product.
func (s *Store) PutProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutVariant adds or replaces a variant.
func (s *Store) PutVariant(v Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[v.ID] = v
}

// PutDiscount adds or replaces a discount code.
func (s *Store) PutDiscount(d domain.Discount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	s.discounts[strings.ToUpper(d.Code)] = &d
}

// PutShippingMethod adds or replaces a shipping method.
func (s *Store) PutShippingMethod(m domain.ShippingMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipping[m.ID] = m
}

// SaveCart stores the cart for an identity.
func (s *Store) SaveCart(identity string, c *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	s.carts[identity] = &cp
}

// Stock returns the current stock of a product, or of a variant when
// variantID is set.
func (s *Store) Stock(productID, variantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if variantID != "" {
		return s.variants[variantID].Stock
	}
	return s.products[productID].Stock
}

// UsageCount returns how many times a code has been redeemed.
func (s *Store) UsageCount(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.discounts[strings.ToUpper(code)]; ok {
		return d.UsageCount
	}
	return 0
}

// OrderCount returns the number of persisted orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Seed is the JSON document accepted by LoadSeed.
type Seed struct {
	Products        []Product               `json:"products"`
	Variants        []Variant               `json:"variants"`
	Discounts       []domain.Discount       `json:"discounts"`
	ShippingMethods []domain.ShippingMethod `json:"shipping_methods"`
}

// LoadSeed reads a Seed document and adds its records to the store.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, p := range seed.Products {
		s.PutProduct(p)
	}
	for _, v := range seed.Variants {
		s.PutVariant(v)
	}
	for _, d := range seed.Discounts {
		s.PutDiscount(d)
	}
	for _, m := range seed.ShippingMethods {
		s.PutShippingMethod(m)
	}
	return nil
}

// --- Catalog ---

// GetPriceAndStock implements repository.CatalogRepository.
func (s *Store) GetPriceAndStock(_ context.Context, productID, variantID string) (*domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	item := &domain.CatalogItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.BasePrice,
		Stock:       p.Stock,
		Purchasable: p.Published,
	}
	if variantID == "" {
		return item, nil
	}

	v, ok := s.variants[variantID]
	if !ok || v.ProductID != productID {
		return nil, apperrors.ErrNotFound
	}
	item.VariantID = v.ID
	item.UnitPrice = p.BasePrice + v.PriceAdjustment
	item.Stock = v.Stock
	item.Purchasable = p.Published && v.Active
	item.VariantAttributes = copyAttrs(v.Attributes)
	return item, nil
}

// --- Discounts ---

// GetByCode implements repository.DiscountRepository.
func (s *Store) GetByCode(_ context.Context, code string) (*domain.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discounts[strings.ToUpper(code)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// Redeem implements repository.DiscountRepository.
func (s *Store) Redeem(_ context.Context, code string, subtotal int64, now time.Time) (*domain.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discounts[strings.ToUpper(code)]
	if !ok || d.Ineligibility(subtotal, now) != "" {
		return nil, repository.ErrDiscountExhausted
	}
	d.UsageCount++
	return &domain.Redemption{
		DiscountID: d.ID,
		Code:       d.Code,
		Type:       d.Type,
		Value:      d.Value,
		Subtotal:   subtotal,
		Amount:     d.Amount(subtotal),
	}, nil
}

// Release implements repository.DiscountRepository.
func (s *Store) Release(_ context.Context, discountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.discountByID(discountID)
	if d == nil {
		return apperrors.ErrNotFound
	}
	if d.UsageCount > 0 {
		d.UsageCount--
	}
	return nil
}

func (s *Store) discountByID(id string) *domain.Discount {
	for _, d := range s.discounts {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// --- Shipping ---

// GetMethod implements repository.ShippingRepository.
func (s *Store) GetMethod(_ context.Context, id string) (*domain.ShippingMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.shipping[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

// --- Orders ---

// CreateSettled implements repository.OrderRepository. All checks run before
// any state changes, so a rejected call leaves the store untouched.
func (s *Store) CreateSettled(_ context.Context, o *domain.Order, red *domain.Redemption, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.PaymentCorrelationKey != "" {
		if _, taken := s.byKey[o.PaymentCorrelationKey]; taken {
			return repository.ErrDuplicateCorrelationKey
		}
	}
	if _, taken := s.numbers[o.OrderNumber]; taken {
		return fmt.Errorf("insert order: order number %s already exists", o.OrderNumber)
	}

	var d *domain.Discount
	if red != nil {
		d = s.discountByID(red.DiscountID)
		if d == nil || d.Type != red.Type || d.Value != red.Value || d.Ineligibility(red.Subtotal, now) != "" {
			return repository.ErrDiscountExhausted
		}
	}

	if d != nil {
		d.UsageCount++
	}
	s.orders[o.ID] = cloneOrder(o)
	s.numbers[o.OrderNumber] = struct{}{}
	if o.PaymentCorrelationKey != "" {
		s.byKey[o.PaymentCorrelationKey] = o.ID
	}
	return nil
}

// GetByID implements repository.OrderRepository.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

// GetByCorrelationKey implements repository.OrderRepository.
func (s *Store) GetByCorrelationKey(_ context.Context, key string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneOrder(s.orders[id]), nil
}

// ListPendingInventory implements repository.OrderRepository.
func (s *Store) ListPendingInventory(_ context.Context, olderThan time.Time, after repository.PendingCursor, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.InventoryAdjustedAt != nil || !o.CreatedAt.Before(olderThan) {
			continue
		}
		if o.CreatedAt.Before(after.CreatedAt) || (o.CreatedAt.Equal(after.CreatedAt) && o.ID <= after.ID) {
			continue
		}
		orders = append(orders, *cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// MarkInventoryAdjusted implements repository.OrderRepository.
func (s *Store) MarkInventoryAdjusted(_ context.Context, orderID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders[orderID]; ok && o.InventoryAdjustedAt == nil {
		o.InventoryAdjustedAt = &at
		o.UpdatedAt = at
	}
	return nil
}

// --- Inventory ---

// Decrement implements repository.InventoryRepository.
func (s *Store) Decrement(_ context.Context, orderID string, line domain.OrderLine) (applied, clamped bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := movementKey{orderID: orderID, productID: line.ProductID, variantID: line.VariantID}
	if _, done := s.movements[key]; done {
		return false, false, nil
	}

	var stock *int
	if line.VariantID != "" {
		v, ok := s.variants[line.VariantID]
		if !ok {
			return false, false, apperrors.ErrNotFound
		}
		defer func() { s.variants[line.VariantID] = v }()
		stock = &v.Stock
	} else {
		p, ok := s.products[line.ProductID]
		if !ok {
			return false, false, apperrors.ErrNotFound
		}
		defer func() { s.products[line.ProductID] = p }()
		stock = &p.Stock
	}

	clamped = *stock < line.Quantity
	*stock = max(*stock-line.Quantity, 0)
	s.movements[key] = struct{}{}
	return true, clamped, nil
}

// --- Carts ---

// Get implements repository.CartRepository.
func (s *Store) Get(_ context.Context, identity string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[identity]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

// Clear implements repository.CartRepository.
func (s *Store) Clear(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, identity)
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Lines = make([]domain.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		l.VariantAttributes = copyAttrs(l.VariantAttributes)
		cp.Lines[i] = l
	}
	if o.InventoryAdjustedAt != nil {
		at := *o.InventoryAdjustedAt
		cp.InventoryAdjustedAt = &at
	}
	return &cp
}

func copyAttrs(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

package domain

import "time"

// CartLine is one line of a settlement request. ClientPrice is what the
// client believes the unit price is; it is checked, never trusted.
type CartLine struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	VariantID   string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0,lte=1000"`
	ClientPrice int64  `json:"client_price" validate:"gte=0"`
}

// Key identifies the product/variant the line refers to.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// LineKey identifies a purchasable product or variant.
type LineKey struct {
	ProductID string
	VariantID string
}

// ResolvedLine is a cart line after server-side re-pricing.
type ResolvedLine struct {
	ProductID         string            `json:"product_id"`
	VariantID         string            `json:"variant_id,omitempty"`
	Quantity          int               `json:"quantity"`
	UnitPrice         int64             `json:"unit_price"`
	ProductName       string            `json:"product_name"`
	VariantAttributes map[string]string `json:"variant_attributes,omitempty"`
}

// LineTotal returns UnitPrice x Quantity.
func (l ResolvedLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the shopper's stored cart, keyed by identity.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartItem is a stored cart item. Price is the price shown to the shopper
// when the item was added.
type CartItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Lines converts the stored cart into settlement lines.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, CartLine{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			ClientPrice: item.Price,
		})
	}
	return lines
}

// CatalogItem is the catalog's authoritative view of a product or variant.
// UnitPrice already includes the variant price adjustment.
type CatalogItem struct {
	ProductID         string
	VariantID         string
	Name              string
	UnitPrice         int64
	Stock             int
	Purchasable       bool
	VariantAttributes map[string]string
}

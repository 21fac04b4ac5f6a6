package domain

// SettlementState is a step of the settlement state machine.
type SettlementState string

const (
	StateValidating        SettlementState = "validating"
	StatePricingOK         SettlementState = "pricing_ok"
	StateDiscountResolved  SettlementState = "discount_resolved"
	StateOrderCreated      SettlementState = "order_created"
	StateInventoryAdjusted SettlementState = "inventory_adjusted"
	StateSettled           SettlementState = "settled"

	StateRejected        SettlementState = "rejected"
	StateGatewayDeclined SettlementState = "gateway_declined"
	StateAlreadySettled  SettlementState = "already_settled"
)

// Terminal reports whether no further transition follows s.
func (s SettlementState) Terminal() bool {
	switch s {
	case StateSettled, StateRejected, StateGatewayDeclined, StateAlreadySettled:
		return true
	}
	return false
}

// Caller identifies who a settlement runs for. It is passed explicitly to
// every settlement operation.
type Caller struct {
	Identity      string
	Guest         bool
	Email         string
	CorrelationID string
}

// Totals is the priced breakdown of a cart.
type Totals struct {
	Subtotal       int64  `json:"subtotal"`
	DiscountAmount int64  `json:"discount_amount"`
	ShippingCost   int64  `json:"shipping_cost"`
	TaxAmount      int64  `json:"tax_amount"`
	TotalAmount    int64  `json:"total_amount"`
	Currency       string `json:"currency"`
}

// SettlementResult is returned by both settlement paths.
type SettlementResult struct {
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	State          SettlementState `json:"state"`
	AlreadySettled bool            `json:"already_settled"`
	Totals         Totals          `json:"totals"`
	Inventory      []LineResult    `json:"inventory,omitempty"`
}

// GatewaySession is the redirect handle returned when a gateway-deferred
// settlement starts. No order exists yet.
type GatewaySession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Totals      Totals `json:"totals"`
}

// LineResult is the per-line outcome of an inventory decrement.
type LineResult struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Applied   bool   `json:"applied"`
	Clamped   bool   `json:"clamped,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	// Skipped marks a line whose product or variant no longer has a stock
	// row. It is final and never retried.
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

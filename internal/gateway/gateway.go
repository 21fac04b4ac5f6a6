// Package gateway integrates the external card payment gateway. Sessions are
// created before any order exists; an order is materialized only after
// GetSession reports the session as paid.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

// Session payment statuses.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Metadata keys carried on a session. They hold the shopper's choices, never
// prices: amounts are recomputed from the catalog at confirmation.
const (
	MetaIdentity         = "identity"
	MetaIdentityKind     = "identity_kind"
	MetaEmail            = "email"
	MetaDiscountCode     = "discount_code"
	MetaShippingMethodID = "shipping_method_id"
)

// MaxMetadataValueLength is the longest metadata value, in characters, a
// gateway accepts.
const MaxMetadataValueLength = 500

// Shipping address metadata keys. Each address field travels under its own
// key so that no value exceeds MaxMetadataValueLength.
const (
	MetaShipFullName   = "ship_full_name"
	MetaShipLine1      = "ship_line1"
	MetaShipLine2      = "ship_line2"
	MetaShipCity       = "ship_city"
	MetaShipState      = "ship_state"
	MetaShipPostalCode = "ship_postal_code"
	MetaShipCountry    = "ship_country"
	MetaShipPhone      = "ship_phone"
)

var (
	// ErrUnavailable marks transport failures and gateway outages. Callers
	// may retry.
	ErrUnavailable = errors.New("payment gateway unavailable")

	// ErrSessionNotFound is returned when the gateway does not know the
	// session id.
	ErrSessionNotFound = errors.New("payment session not found")
)

// LineItem is one priced line shown on the hosted payment page.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionParams describes a new payment session.
type SessionParams struct {
	LineItems      []LineItem
	Currency       string
	SuccessURL     string
	CancelURL      string
	CustomerEmail  string
	ReferenceID    string
	IdempotencyKey string
	Metadata       map[string]string
}

// Session is a created payment session.
type Session struct {
	ID          string
	RedirectURL string
	ExpiresAt   time.Time
}

// SessionStatus is the gateway's view of a session at confirmation time.
type SessionStatus struct {
	ID              string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
	ShippingAddress *domain.Address
}

// AddressMetadata flattens addr into session metadata. Empty fields are
// left out.
func AddressMetadata(addr domain.Address) map[string]string {
	meta := make(map[string]string, 8)
	for key, value := range map[string]string{
		MetaShipFullName:   addr.FullName,
		MetaShipLine1:      addr.Line1,
		MetaShipLine2:      addr.Line2,
		MetaShipCity:       addr.City,
		MetaShipState:      addr.State,
		MetaShipPostalCode: addr.PostalCode,
		MetaShipCountry:    addr.Country,
		MetaShipPhone:      addr.Phone,
	} {
		if value != "" {
			meta[key] = value
		}
	}
	return meta
}

// AddressFromMetadata rebuilds the address stored by AddressMetadata. It
// reports false when the metadata carries no address field at all.
func AddressFromMetadata(meta map[string]string) (domain.Address, bool) {
	addr := domain.Address{
		FullName:   meta[MetaShipFullName],
		Line1:      meta[MetaShipLine1],
		Line2:      meta[MetaShipLine2],
		City:       meta[MetaShipCity],
		State:      meta[MetaShipState],
		PostalCode: meta[MetaShipPostalCode],
		Country:    meta[MetaShipCountry],
		Phone:      meta[MetaShipPhone],
	}
	return addr, addr != (domain.Address{})
}

// CheckMetadata returns an error naming the first value longer than
// MaxMetadataValueLength.
func CheckMetadata(meta map[string]string) error {
	for key, value := range meta {
		if n := utf8.RuneCountInString(value); n > MaxMetadataValueLength {
			return fmt.Errorf("metadata %q is %d characters, limit is %d", key, n, MaxMetadataValueLength)
		}
	}
	return nil
}

// Paid reports whether the gateway captured the payment.
func (s *SessionStatus) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// PaymentGateway is the external card payment provider.
type PaymentGateway interface {
	// Name returns the provider name (e.g. "stripe", "mock").
	Name() string

	CreateSession(ctx context.Context, params SessionParams) (*Session, error)

	// GetSession returns the current status of a session. Transport failures
	// wrap ErrUnavailable.
	GetSession(ctx context.Context, id string) (*SessionStatus, error)
}

package repository

import "errors"

var (
	// ErrDiscountExhausted is returned when a guarded redemption updates no
	// row.
	ErrDiscountExhausted = errors.New("discount cannot be redeemed")

	// ErrDuplicateCorrelationKey is returned when an order already carries
	// the payment correlation key.
	ErrDuplicateCorrelationKey = errors.New("payment correlation key already settled")
)

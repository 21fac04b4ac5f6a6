package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

// Settlement error kinds. Every error returned by the settlement service
// wraps exactly one of them, so callers can branch with errors.Is.
var (
	ErrPriceMismatch      = errors.New("price mismatch")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrDiscountRejected   = errors.New("discount rejected")
	ErrRateLimited        = apperrors.ErrRateLimited
	ErrGatewayDeclined    = errors.New("payment declined")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrPersistence        = errors.New("persistence failure")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrAmountMismatch     = errors.New("paid amount does not cover the order")
)

func priceMismatch(productID, variantID string, clientPrice, catalogPrice int64) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "PRICE_MISMATCH",
		Message: "the price of an item has changed, refresh the cart and try again",
		Status:  http.StatusConflict,
		Err:     ErrPriceMismatch,
	}
	e.WithDetail("product_id", productID).
		WithDetail("client_price", clientPrice).
		WithDetail("catalog_price", catalogPrice)
	if variantID != "" {
		e.WithDetail("variant_id", variantID)
	}
	return e
}

func insufficientStock(productID, variantID string, requested, available int) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "INSUFFICIENT_STOCK",
		Message: "not enough stock for an item in the cart",
		Status:  http.StatusConflict,
		Err:     ErrInsufficientStock,
	}
	e.WithDetail("product_id", productID).
		WithDetail("requested", requested).
		WithDetail("available", available)
	if variantID != "" {
		e.WithDetail("variant_id", variantID)
	}
	return e
}

func invalidProduct(productID, variantID, reason string) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "INVALID_PRODUCT",
		Message: reason,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInvalidProduct,
	}
	e.WithDetail("product_id", productID)
	if variantID != "" {
		e.WithDetail("variant_id", variantID)
	}
	return e
}

// invalidAddress keeps the validation error reachable through errors.As so
// the HTTP layer can render per-field messages.
func invalidAddress(cause error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_ADDRESS",
		Message: "the shipping address is incomplete or invalid",
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %w", ErrInvalidAddress, cause),
	}
}

func discountRejected(code, reason string) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "DISCOUNT_REJECTED",
		Message: reason,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrDiscountRejected,
	}
	return e.WithDetail("code", code)
}

func rateLimited(retryAfter time.Duration) *apperrors.AppError {
	return apperrors.TooManyRequests("too many settlement attempts, retry later", retryAfter)
}

func gatewayDeclined(status string) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "GATEWAY_DECLINED",
		Message: "the payment was not completed",
		Status:  http.StatusPaymentRequired,
		Err:     ErrGatewayDeclined,
	}
	return e.WithDetail("payment_status", status)
}

// amountMismatch reports a paid session that does not cover the order built
// from the current cart. Nothing is persisted.
func amountMismatch(paid int64, paidCurrency string, total int64, currency string) *apperrors.AppError {
	e := &apperrors.AppError{
		Code:    "PAYMENT_AMOUNT_MISMATCH",
		Message: "the payment does not cover the current cart, contact support",
		Status:  http.StatusConflict,
		Err:     ErrAmountMismatch,
	}
	return e.WithDetail("paid_amount", paid).
		WithDetail("paid_currency", paidCurrency).
		WithDetail("total_amount", total).
		WithDetail("currency", currency)
}

func cartEmpty() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "CART_EMPTY",
		Message: "the cart is empty",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrCartEmpty,
	}
}

// systemError turns an infrastructure failure into a generic client error
// carrying only a diagnostic id. The cause stays on Err for logging.
func systemError(kind error, cause error, diagnosticID string) *apperrors.AppError {
	e := &apperrors.AppError{
		Err:          fmt.Errorf("%w: %w", kind, cause),
		DiagnosticID: diagnosticID,
	}
	switch kind {
	case ErrGatewayUnavailable:
		e.Code, e.Status = "GATEWAY_UNAVAILABLE", http.StatusServiceUnavailable
		e.Message = "the payment provider is temporarily unavailable, please retry"
	case ErrCatalogUnavailable:
		e.Code, e.Status = "CATALOG_UNAVAILABLE", http.StatusServiceUnavailable
		e.Message = "the catalog is temporarily unavailable, please retry"
	default:
		e.Code, e.Status = "PERSISTENCE_ERROR", http.StatusInternalServerError
		e.Message = "the order could not be saved"
	}
	return e
}

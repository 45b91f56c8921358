package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Kind is a stable machine-readable error classification. Clients branch on
// the kind, not on the message.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidQuantity   Kind = "invalid_quantity"
	KindInsufficientStock Kind = "insufficient_stock"
	KindAlreadyPurchased  Kind = "already_purchased"
	KindInvalidState      Kind = "invalid_state"
	KindEmptyTransaction  Kind = "empty_transaction"
	KindValidation        Kind = "validation_failed"
	KindUnauthorized      Kind = "unauthorized"
	KindBadRequest        Kind = "bad_request"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

// AppError represents an application error with an HTTP status code and a
// stable kind.
type AppError struct {
	Code      int          `json:"code"`
	Kind      Kind         `json:"kind"`
	Message   string       `json:"message"`
	ProductID *uuid.UUID   `json:"product_id,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindUnauthorized, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
)

// NewAppError creates a new application error
func NewAppError(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewInvalidQuantityError rejects a non-positive or malformed quantity
func NewInvalidQuantityError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInvalidQuantity,
		Message: message,
	}
}

// NewInsufficientStockError names the product whose available stock was
// exceeded. The product id travels with the error so callers can surface
// the offending line.
func NewInsufficientStockError(productID uuid.UUID, productName string) *AppError {
	msg := fmt.Sprintf("Insufficient stock for product %s", productID)
	if productName != "" {
		msg = fmt.Sprintf("Insufficient stock for %q", productName)
	}
	return &AppError{
		Code:      http.StatusConflict,
		Kind:      KindInsufficientStock,
		Message:   msg,
		ProductID: &productID,
	}
}

// NewAlreadyPurchasedError reports a repeated Pending -> Purchased transition
func NewAlreadyPurchasedError() *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyPurchased,
		Message: "Order has already been purchased",
	}
}

// NewInvalidStateError reports a mutation that the entity's lifecycle state
// forbids (e.g. editing a purchased order)
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidState,
		Message: message,
	}
}

// NewEmptyTransactionError rejects a sale with no lines
func NewEmptyTransactionError() *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindEmptyTransaction,
		Message: "Sale transaction must contain at least one line",
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}

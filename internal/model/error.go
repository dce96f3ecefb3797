package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeIllegalTransition = "ILLEGAL_TRANSITION"
	ErrCodeUnknownStatus     = "UNKNOWN_STATUS"
	ErrCodeLimitReached      = "LIMIT_REACHED"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeMedicineNotFound  = "MEDICINE_NOT_FOUND"
	ErrCodeRemoteSync        = "REMOTE_SYNC_FAILED"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrIllegalTransition = NewDomainError(ErrCodeIllegalTransition, "Requested action is not valid for the order's current status")
	ErrUnknownStatus     = NewDomainError(ErrCodeUnknownStatus, "Order status is not one of the recognised values")
	ErrLimitReached      = NewDomainError(ErrCodeLimitReached, "Purchase limit for this medicine has been reached")
	ErrOutOfStock        = NewDomainError(ErrCodeOutOfStock, "Medicine is out of stock")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrMedicineNotFound  = NewDomainError(ErrCodeMedicineNotFound, "Medicine not found in the formulary")
	ErrRemoteSync        = NewDomainError(ErrCodeRemoteSync, "Order service rejected or failed to apply the transition")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart has no lines to check out")
)

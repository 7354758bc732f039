package shared

import "fmt"

// DomainError represents a domain-level error.
// Messages are safe to display to end users.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrInvalidQuantity) matches errors carrying a line-specific message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes used by the reconciliation engine
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidState         = "INVALID_STATE"
	CodeInvalidQuantity      = "INVALID_QUANTITY"
	CodeAlreadyFullyReturned = "ALREADY_FULLY_RETURNED"
	CodeReturnsDisabled      = "RETURNS_DISABLED"
	CodeDriftDetected        = "DRIFT_DETECTED"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput         = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidQuantity      = NewDomainError(CodeInvalidQuantity, "Invalid return quantity")
	ErrAlreadyFullyReturned = NewDomainError(CodeAlreadyFullyReturned, "Sale has already been fully returned")
	ErrReturnsDisabled      = NewDomainError(CodeReturnsDisabled, "Returns are disabled for this tenant")
	ErrDriftDetected        = NewDomainError(CodeDriftDetected, "Stored balance does not match computed balance")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NotFoundf returns a NOT_FOUND error naming the missing resource
func NotFoundf(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeNotFound, format, args...)
}

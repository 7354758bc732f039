package dto

import "net/http"

// Error codes returned in the response envelope.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already used
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Return and balance error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current status
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidQuantity is used when a return quantity is zero, negative or
	// above what remains returnable
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	// ErrCodeAlreadyFullyReturned is used when nothing on the sale is returnable
	ErrCodeAlreadyFullyReturned = "ERR_ALREADY_FULLY_RETURNED"
	// ErrCodeReturnsDisabled is used when the tenant has switched returns off
	ErrCodeReturnsDisabled = "ERR_RETURNS_DISABLED"
	// ErrCodeDriftDetected is used when a stored balance disagrees with the ledger
	ErrCodeDriftDetected = "ERR_DRIFT_DETECTED"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:      http.StatusUnprocessableEntity,
	ErrCodeAlreadyFullyReturned: http.StatusUnprocessableEntity,
	ErrCodeReturnsDisabled:      http.StatusForbidden,
	ErrCodeDriftDetected:        http.StatusConflict,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for an error code, or 500 when the
// code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to response codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"INVALID_QUANTITY":       ErrCodeInvalidQuantity,
	"ALREADY_FULLY_RETURNED": ErrCodeAlreadyFullyReturned,
	"RETURNS_DISABLED":       ErrCodeReturnsDisabled,
	"DRIFT_DETECTED":         ErrCodeDriftDetected,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the ERR_ form. Codes
// already in that form, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if normalized, ok := DomainErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}

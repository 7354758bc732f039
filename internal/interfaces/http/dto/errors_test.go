package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidQuantity, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyFullyReturned, http.StatusUnprocessableEntity},
		{ErrCodeReturnsDisabled, http.StatusForbidden},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeDriftDetected, http.StatusConflict},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("every domain sentinel maps to a known ERR_ code", func(t *testing.T) {
		sentinels := []*shared.DomainError{
			shared.ErrNotFound,
			shared.ErrInvalidInput,
			shared.ErrInvalidState,
			shared.ErrInvalidQuantity,
			shared.ErrAlreadyFullyReturned,
			shared.ErrReturnsDisabled,
			shared.ErrDriftDetected,
			shared.ErrConcurrencyConflict,
		}
		for _, e := range sentinels {
			code := NormalizeErrorCode(e.Code)
			assert.True(t, strings.HasPrefix(code, "ERR_"), code)
			_, known := ErrorCodeHTTPStatus[code]
			assert.True(t, known, "%s has no HTTP status", code)
		}
	})

	t.Run("passes through codes already normalized or unknown", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
	})
}

func TestNewErrorResponse(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID("RETURNS_DISABLED", "Returns are disabled", "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeReturnsDisabled, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.False(t, resp.Error.Timestamp.Before(before))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"data"`)
	assert.NotContains(t, string(data), `"details"`)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
		{Field: "items", Message: "This field is required"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "items", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}

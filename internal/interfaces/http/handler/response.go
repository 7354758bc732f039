package handler

import "github.com/erp/reconciler/internal/interfaces/http/dto"

// APIResponse documents the typed success envelope
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the error envelope
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData carries the number of affected records
// @Description Count data
type CountData struct {
	Count int `json:"count"`
}

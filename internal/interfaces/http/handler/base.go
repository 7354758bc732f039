package handler

import (
	"errors"
	"net/http"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID returns the tenant resolved by the tenant middleware
func getTenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantUUID(c)
}

// getActorID returns the authenticated user
func getActorID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(raw)
}

// requestScope resolves tenant and actor, writing the error response itself
// when either is missing.
func (h *BaseHandler) requestScope(c *gin.Context) (tenantID, actorID uuid.UUID, ok bool) {
	tenantID, ok = getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return uuid.Nil, uuid.Nil, false
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, actorID, true
}

// pathID parses a UUID path parameter
func (h *BaseHandler) pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain errors to their HTTP status. Anything else is
// logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	h.InternalError(c, "An unexpected error occurred")
}

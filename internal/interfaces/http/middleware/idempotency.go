package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-chosen key of a mutation request
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// IdempotencyStore reserves keys for a limited time
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store  IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated mutation carrying an Idempotency-Key that
// was already used by the same tenant on the same route. Requests without
// the header pass through. A failed request (status >= 400) frees its key so
// the client can retry. Store errors let the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.Store == nil || !isMutation(c.Request.Method) {
			c.Next()
			return
		}
		raw := c.GetHeader(IdempotencyKeyHeader)
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > MaxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		tenant := "-"
		if id, ok := GetTenantUUID(c); ok {
			tenant = id.String()
		}
		key := tenant + ":" + c.Request.Method + ":" + c.FullPath() + ":" + raw

		ctx := c.Request.Context()
		reserved, err := cfg.Store.Reserve(ctx, key, cfg.TTL)
		if err != nil {
			logger.Enrich(ctx, cfg.Logger).Warn("Idempotency store unavailable, processing request", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already received")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Enrich(ctx, cfg.Logger).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

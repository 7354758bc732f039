package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantLookup loads a tenant by ID
type TenantLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
}

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// HeaderEnabled accepts X-Tenant-ID when the token carries no tenant.
	// Only service-to-service deployments should turn this on.
	HeaderEnabled bool
	SkipPaths     []string
	// Lookup rejects unknown and deactivated tenants when set
	Lookup TenantLookup
	Logger *zap.Logger
}

// Tenant resolves the tenant for the request. The JWT claim wins over the
// header, and every request outside SkipPaths must resolve one.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := GetJWTTenantID(c)
		if raw == "" && cfg.HeaderEnabled {
			raw = c.GetHeader(TenantHeaderKey)
		}
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant identification required")
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid tenant ID format")
			return
		}

		if cfg.Lookup != nil {
			tenant, err := cfg.Lookup.FindByID(c.Request.Context(), tenantID)
			if err != nil || !tenant.IsActive() {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Tenant validation failed",
					zap.String("tenant_id", raw),
					zap.Error(err),
				)
				abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid or inactive tenant")
				return
			}
			c.Set(TenantCodeKey, tenant.Code)
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), raw))
		c.Next()
	}
}

// GetTenantUUID returns the tenant resolved by Tenant
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

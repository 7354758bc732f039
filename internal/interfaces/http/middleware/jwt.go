package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/reconciler/internal/infrastructure/auth"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTConfig holds configuration for JWTAuth
type JWTConfig struct {
	Verifier TokenVerifier
	// SkipPaths are served without a token
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth verifies the bearer token and stores its claims in the context
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		for _, p := range cfg.SkipPaths {
			if c.Request.URL.Path == p {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			log.Warn("JWT authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			code, message := dto.ErrCodeTokenInvalid, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, message = dto.ErrCodeTokenExpired, "Token has expired"
			}
			abortWithError(c, http.StatusUnauthorized, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the token grants permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !claims.HasPermission(permission) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Missing permission "+permission)
			return
		}
		c.Next()
	}
}

// GetJWTClaims returns the verified claims, or nil on unauthenticated routes
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the user ID claim
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTTenantID returns the tenant ID claim
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}

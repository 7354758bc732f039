package auth

import (
	"testing"
	"time"

	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func signed(t *testing.T, secret string, method jwt.SigningMethod, mutate func(*Claims)) string {
	t.Helper()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "erp-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		TenantID:    uuid.NewString(),
		UserID:      uuid.NewString(),
		Username:    "clerk",
		Permissions: []string{"balance:read"},
		TokenType:   TokenTypeAccess,
	}
	if mutate != nil {
		mutate(claims)
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "erp-auth"})

	t.Run("valid access token", func(t *testing.T) {
		claims, err := v.Verify(signed(t, testSecret, jwt.SigningMethodHS256, nil))
		require.NoError(t, err)
		assert.Equal(t, "clerk", claims.Username)
		assert.True(t, claims.HasPermission("balance:read"))
		assert.False(t, claims.HasPermission("balance:repair"))

		tenantID, err := claims.TenantUUID()
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tenantID)
	})

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{"expired", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) {
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			})
		}, ErrExpiredToken},
		{"not yet valid", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) {
				c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
			})
		}, ErrTokenNotYetValid},
		{"wrong secret", func(t *testing.T) string {
			return signed(t, "another-secret-key-of-32-characters", jwt.SigningMethodHS256, nil)
		}, ErrInvalidToken},
		{"wrong algorithm", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS512, nil)
		}, ErrInvalidToken},
		{"wrong issuer", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) { c.Issuer = "elsewhere" })
		}, ErrInvalidToken},
		{"refresh token", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) { c.TokenType = "refresh" })
		}, ErrInvalidTokenType},
		{"tenant not a uuid", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) { c.TenantID = "acme" })
		}, ErrMissingTenantID},
		{"missing user", func(t *testing.T) string {
			return signed(t, testSecret, jwt.SigningMethodHS256, func(c *Claims) { c.UserID = "" })
		}, ErrMissingUserID},
		{"garbage", func(*testing.T) string { return "not.a.token" }, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Package auth verifies access tokens issued by the external auth service.
package auth

import (
	"errors"
	"slices"

	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type this service accepts
const TokenTypeAccess = "access"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the access token claims shared with the auth service
type Claims struct {
	jwt.RegisteredClaims
	TenantID    string   `json:"tenant_id"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions,omitempty"`
	TokenType   string   `json:"token_type"`
}

// TenantUUID parses the tenant claim
func (c *Claims) TenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// UserUUID parses the user claim
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// HasPermission reports whether the token grants permission
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// Verifier validates HS256 access tokens
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier from the JWT config. A non-empty issuer
// is enforced on every token.
func NewVerifier(cfg config.JWTConfig) *Verifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses tokenString and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if _, err := claims.TenantUUID(); err != nil {
		return nil, ErrMissingTenantID
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

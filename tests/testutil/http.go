package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is dto.Response with a typed data field
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// Authenticated stands in for JWTAuth and Tenant. A nil tenant or user
// leaves that key unset.
func Authenticated(tenantID, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.JWTUserIDKey, userID.String())
		}
		if tenantID != uuid.Nil {
			c.Set(middleware.TenantIDKey, tenantID)
		}
		c.Next()
	}
}

// NewRouter returns a gin engine authenticated as the standard test tenant and user
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), Authenticated(TestTenantID(), TestUserID()))
	return r
}

// Do sends a request with an optional JSON body
func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode parses the response envelope
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response: %s", w.Body.String())
	return env
}

// AssertError checks status and error code of a failed response
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, "body: %s", w.Body.String())
	env := Decode[json.RawMessage](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "expected error object in response")
	assert.Equal(t, code, env.Error.Code)
}

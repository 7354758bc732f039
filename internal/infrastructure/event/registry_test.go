package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("specific and wildcard handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		specific := newTestHandler()
		wildcard := newTestHandler()

		registry.Register(specific, "SaleCreated", "SaleDeleted")
		registry.Register(wildcard)

		assert.Len(t, registry.For("SaleCreated"), 2)
		assert.Len(t, registry.For("SaleDeleted"), 2)
		assert.Len(t, registry.For("PaymentVoided"), 1)
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()

		registry.Register(handler, "SaleCreated")
		registry.Register(handler, "SaleCreated")
		registry.Register(handler)
		registry.Register(handler)

		assert.Len(t, registry.For("SaleCreated"), 2)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		other := newTestHandler()
		registry.Register(handler, "SaleCreated", "SaleDeleted")
		registry.Register(handler)
		registry.Register(other, "SaleCreated")

		registry.Unregister(handler)

		assert.Equal(t, 1, registry.Len())
		assert.Len(t, registry.For("SaleCreated"), 1)
		assert.Empty(t, registry.For("SaleDeleted"))
	})
}

package event

import (
	"slices"
	"sync"

	"github.com/erp/reconciler/internal/domain/shared"
)

// anyEvent keys handlers that receive every event type
const anyEvent = "*"

// HandlerRegistry maps event types to their handlers
type HandlerRegistry struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes, or to every event type when none
// are given. A handler is registered at most once per type.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyEvent}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range eventTypes {
		if !slices.Contains(r.byType[t], handler) {
			r.byType[t] = append(r.byType[t], handler)
		}
	}
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, handlers := range r.byType {
		handlers = slices.DeleteFunc(handlers, func(h shared.EventHandler) bool { return h == handler })
		if len(handlers) == 0 {
			delete(r.byType, t)
			continue
		}
		r.byType[t] = handlers
	}
}

// For returns the handlers of eventType followed by the catch-all handlers.
// The slice is a copy.
func (r *HandlerRegistry) For(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eventType == anyEvent {
		return slices.Clone(r.byType[anyEvent])
	}
	return slices.Concat(r.byType[eventType], r.byType[anyEvent])
}

// Len counts distinct registered handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[shared.EventHandler]struct{})
	for _, handlers := range r.byType {
		for _, h := range handlers {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

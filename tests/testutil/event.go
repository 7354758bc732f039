package testutil

import (
	"context"
	"sync"

	"github.com/erp/reconciler/internal/domain/shared"
)

// RecordingPublisher is a shared.EventPublisher that keeps what it receives
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records events and returns the configured error
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// SetError makes later Publish calls fail after recording
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the event types in publish order
func (p *RecordingPublisher) Types() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// Package cache holds the short-lived key stores used to deduplicate
// retried mutation requests.
package cache

import (
	"context"
	"maps"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired keys are dropped from memory
const DefaultSweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps reserved keys and their expiry in a map.
// It serves a single instance, or tests.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time

	stop context.CancelFunc
	done chan struct{}
}

// MemoryStoreOption configures an InMemoryIdempotencyStore
type MemoryStoreOption func(*memoryStoreOptions)

type memoryStoreOptions struct {
	sweep time.Duration
}

// WithSweepInterval overrides DefaultSweepInterval
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(o *memoryStoreOptions) {
		if d > 0 {
			o.sweep = d
		}
	}
}

// NewInMemoryIdempotencyStore creates the store and starts its expiry sweep.
// Close stops the sweep.
func NewInMemoryIdempotencyStore(opts ...MemoryStoreOption) *InMemoryIdempotencyStore {
	o := memoryStoreOptions{sweep: DefaultSweepInterval}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		stop:    stop,
		done:    make(chan struct{}),
	}
	go s.sweepLoop(ctx, o.sweep)
	return s
}

// Reserve claims key for ttl. It returns false while an unexpired claim exists.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, held := s.expires[key]; held && now.Before(until) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Release drops the claim on key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Size returns the number of stored keys, expired ones included
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// Close stops the sweep and waits for it to exit. Repeated calls return nil.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stop()
	<-s.done
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(ctx context.Context, every time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	maps.DeleteFunc(s.expires, func(_ string, until time.Time) bool {
		return !now.Before(until)
	})
}

package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocker implements Locker inside one process.
// It is used when Redis is not configured, which is only safe for a single instance.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	token     uuid.UUID
	expiresAt time.Time
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Obtain takes the lock unless a live holder exists
func (l *MemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, exists := l.entries[key]; exists && now.Before(e.expiresAt) {
		return nil, ErrNotObtained
	}

	token := uuid.New()
	l.entries[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: token}, nil
}

func (l *MemoryLocker) release(key string, token uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// An expired lock may have been taken over; only the current holder may free it
	if e, exists := l.entries[key]; exists && e.token == token {
		delete(l.entries, key)
	}
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  uuid.UUID
}

func (l *memoryLock) Key() string {
	return l.key
}

func (l *memoryLock) Release(context.Context) error {
	l.locker.release(l.key, l.token)
	return nil
}

var _ Locker = (*MemoryLocker)(nil)

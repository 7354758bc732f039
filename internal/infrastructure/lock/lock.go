// Package lock provides named, expiring mutual exclusion between service
// instances. The nightly reconciliation sweep takes one lock per tenant so
// that two instances never repair the same tenant at the same time.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotObtained is returned when the lock is currently held by someone else
var ErrNotObtained = errors.New("lock not obtained")

// Locker obtains named locks that expire after ttl unless released
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock
type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

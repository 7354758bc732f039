package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisLocker implements Locker on top of bsm/redislock
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisLocker creates a locker; every key is prefixed with prefix
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		prefix: prefix,
	}
}

// Obtain tries once to take the lock. It returns ErrNotObtained when the key is held.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	held, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &redisLock{key: key, lock: held}, nil
}

type redisLock struct {
	key  string
	lock *redislock.Lock
}

func (l *redisLock) Key() string {
	return l.key
}

// Release frees the lock. A lock that already expired is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

var _ Locker = (*RedisLocker)(nil)

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "monartisan:lock:"

// RedisLocker serialises critical sections across instances (document
// numbering for instance). Acquire retries with a linear backoff until the
// context is done.
type RedisLocker struct {
	client  *redislock.Client
	backoff time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), backoff: 50 * time.Millisecond}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	lock, err := l.client.Obtain(ctx, lockPrefix+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockBusy
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return redisLock{lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release ignores ErrLockNotHeld: the TTL elapsed and the key is gone.
func (r redisLock) Release(ctx context.Context) error {
	if err := r.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}

// LocalLocker is the single-process fallback. TTLs are not enforced; a
// holder keeps the lock until Release.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (shared.Lock, error) {
	for {
		l.mu.Lock()
		held, busy := l.locks[key]
		if !busy {
			release := make(chan struct{})
			l.locks[key] = release
			l.mu.Unlock()
			return &localLock{owner: l, key: key, release: release}, nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, shared.ErrLockBusy
		}
	}
}

type localLock struct {
	owner   *LocalLocker
	key     string
	release chan struct{}
	once    sync.Once
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		l.owner.mu.Lock()
		delete(l.owner.locks, l.key)
		l.owner.mu.Unlock()
		close(l.release)
	})
	return nil
}

var (
	_ shared.Locker = (*RedisLocker)(nil)
	_ shared.Locker = (*LocalLocker)(nil)
)

package shared

import (
	"context"
	"time"
)

// ErrLockBusy is returned when a lock could not be obtained in time
var ErrLockBusy = NewDomainError("LOCK_BUSY", "Another operation is in progress, retry shortly")

// Locker hands out short-lived mutual exclusion across instances
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

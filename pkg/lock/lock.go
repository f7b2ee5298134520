// Package lock implements a minimal distributed mutex on top of the shared
// cache store: a single set-if-absent with TTL to acquire, and an atomic
// compare-and-delete to release so a holder can never free a lock it lost
// to TTL expiry.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealping/seckill/internal/repository"
)

const keyPrefix = "lock:"

// Lock is a handle on one named resource. The owner token is unique per
// handle, so two handles for the same resource never release each other.
// A Lock is not reentrant and is intended for one goroutine at a time.
type Lock struct {
	store repository.CacheStore
	key   string
	token string
}

func New(store repository.CacheStore, resource string) *Lock {
	return &Lock{
		store: store,
		key:   keyPrefix + resource,
		token: uuid.New().String(),
	}
}

// TryAcquire makes a single attempt to take the lock for ttl. It never
// blocks or retries; false means another holder has it, which is a normal
// outcome and not an error. The TTL frees the lock if the holder crashes.
func (l *Lock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.store.SetNX(ctx, l.key, []byte(l.token), ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release frees the lock if and only if this handle still owns it. Release
// after TTL expiry, or by a handle that never held the lock, is a no-op.
func (l *Lock) Release(ctx context.Context) error {
	if _, err := l.store.CompareAndDelete(ctx, l.key, l.token); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

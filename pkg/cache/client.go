// Package cache implements the cache-aside read path over the shared cache
// store, with null-value tombstones against penetration and a logical-expiry
// strategy against breakdown of hot keys.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dealping/seckill/internal/repository"
	"dealping/seckill/pkg/lock"
)

const (
	// nullTTL bounds how long a known-missing key suppresses loader calls.
	nullTTL = 2 * time.Minute
	// rebuildLockTTL frees the rebuild mutex if the rebuilding process dies.
	rebuildLockTTL = 10 * time.Second
	// rebuildTimeout bounds a background rebuild, which outlives the request
	// that triggered it.
	rebuildTimeout = 30 * time.Second
)

// envelope wraps a cached value with its logical expiry. The JSON shape is
// self-describing: a reader can tell a wrapped value from a bare one by the
// presence of the expire_at field.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	ExpireAt time.Time       `json:"expire_at"`
}

// Loader fetches a value from the backing store. Returning (nil, nil) means
// the value does not exist.
type Loader[T any] func(ctx context.Context) (*T, error)

type Client struct {
	store  repository.CacheStore
	logger *zap.Logger
}

func NewClient(store repository.CacheStore, logger *zap.Logger) *Client {
	return &Client{store: store, logger: logger}
}

// Set stores value as plain JSON under key with a physical TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %s: %w", key, err)
	}
	return c.store.Set(ctx, key, data, ttl)
}

// SetWithLogicalExpiry stores value wrapped in an envelope whose expiry is
// advisory only: the key itself carries no physical TTL, so readers always
// find *something* and breakdown cannot reach the backing store.
func (c *Client) SetWithLogicalExpiry(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %s: %w", key, err)
	}
	wrapped, err := json.Marshal(envelope{Data: data, ExpireAt: time.Now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("marshal cache envelope %s: %w", key, err)
	}
	return c.store.Set(ctx, key, wrapped, 0)
}

// Delete drops key. Writers call this after updating the backing store
// (write-through invalidation).
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Get is the penetration-protected cache-aside read. A hit deserializes and
// returns; a cached empty value is a null tombstone and returns absent
// without touching the loader; a true miss consults the loader and
// backfills either the value (with ttl) or a short-lived tombstone.
func Get[T any](ctx context.Context, c *Client, key string, ttl time.Duration, loader Loader[T]) (*T, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if raw != nil {
		if len(raw) == 0 {
			// Null tombstone: the backing store was already asked and had
			// nothing.
			return nil, nil
		}
		var value T
		decodeErr := json.Unmarshal(raw, &value)
		if decodeErr == nil {
			return &value, nil
		}
		c.logger.Warn("undecodable cache entry, falling through to loader",
			zap.String("key", key), zap.Error(decodeErr))
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil {
		if err := c.store.Set(ctx, key, []byte{}, nullTTL); err != nil {
			c.logger.Warn("failed to write null tombstone", zap.String("key", key), zap.Error(err))
		}
		return nil, nil
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("failed to backfill cache", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// GetWithLogicalExpiry reads a pre-warmed hot key. A physical miss returns
// absent immediately: this path never self-heals a cold cache. On a hit the
// envelope's logical expiry is checked; if stale, at most one caller wins a
// short rebuild lock and refreshes the key in the background while every
// caller, winner included, returns the stale value without blocking.
func GetWithLogicalExpiry[T any](ctx context.Context, c *Client, key string, ttl time.Duration, loader Loader[T]) (*T, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("undecodable cache envelope, falling through to loader",
			zap.String("key", key), zap.Error(err))
		return reload(ctx, c, key, ttl, loader)
	}
	var value T
	if err := json.Unmarshal(env.Data, &value); err != nil {
		c.logger.Warn("undecodable cache payload, falling through to loader",
			zap.String("key", key), zap.Error(err))
		return reload(ctx, c, key, ttl, loader)
	}

	if time.Now().Before(env.ExpireAt) {
		return &value, nil
	}

	rebuildLock := lock.New(c.store, "cache:"+key)
	acquired, err := rebuildLock.TryAcquire(ctx, rebuildLockTTL)
	if err != nil {
		c.logger.Warn("rebuild lock unavailable", zap.String("key", key), zap.Error(err))
		return &value, nil
	}
	if acquired {
		go rebuild(context.WithoutCancel(ctx), c, rebuildLock, key, ttl, loader)
	}

	// Stale but immediate. Staleness is bounded by rebuild latency.
	return &value, nil
}

// rebuild refreshes one expired envelope. The lock is released on every exit
// path so a failed loader cannot wedge the key until lock TTL.
func rebuild[T any](ctx context.Context, c *Client, rebuildLock *lock.Lock, key string, ttl time.Duration, loader Loader[T]) {
	ctx, cancel := context.WithTimeout(ctx, rebuildTimeout)
	defer cancel()
	defer func() {
		if err := rebuildLock.Release(ctx); err != nil {
			c.logger.Error("failed to release rebuild lock", zap.String("key", key), zap.Error(err))
		}
	}()

	value, err := loader(ctx)
	if err != nil {
		c.logger.Error("cache rebuild failed", zap.String("key", key), zap.Error(err))
		return
	}
	if value == nil {
		// The row vanished from the backing store; drop the hot key rather
		// than serving it forever.
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Error("cache rebuild delete failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	if err := c.SetWithLogicalExpiry(ctx, key, value, ttl); err != nil {
		c.logger.Error("cache rebuild write failed", zap.String("key", key), zap.Error(err))
	}
}

// reload replaces an undecodable envelope with a fresh one from the loader.
func reload[T any](ctx context.Context, c *Client, key string, ttl time.Duration, loader Loader[T]) (*T, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	if err := c.SetWithLogicalExpiry(ctx, key, value, ttl); err != nil {
		c.logger.Warn("failed to backfill cache", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

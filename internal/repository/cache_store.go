package repository

import (
	"context"
	"time"
)

// Admission result codes returned by CacheStore.ReserveStock.
const (
	ReserveAccepted  int64 = 0
	ReserveNoStock   int64 = 1
	ReserveDuplicate int64 = 2
)

// CacheStore abstracts the shared key-value cache.
// Implementations: Redis (production) or in-memory (local dev / tests).
//
// All contended mutations (ReserveStock, SetNX, CompareAndDelete, Increment)
// are atomic in a single round trip; callers never read-modify-write.
type CacheStore interface {
	// Get returns (nil, nil) when the key is absent. An empty non-nil slice
	// is a stored empty value, which callers may use as a null tombstone.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent. Returns true iff this call
	// created the key.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	// Increment atomically increments the integer at key, creating it at 0
	// first if absent, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)
	// CompareAndDelete deletes key only if its current value equals expected,
	// as one indivisible operation. Returns true iff the key was deleted.
	CompareAndDelete(ctx context.Context, key string, expected string) (bool, error)
	// ReserveStock runs the seckill admission check atomically: if the
	// counter at stockKey is <= 0 return ReserveNoStock; if userID is
	// already in the set at buyersKey return ReserveDuplicate; otherwise
	// decrement the counter, record userID and return ReserveAccepted.
	ReserveStock(ctx context.Context, stockKey, buyersKey, userID string) (int64, error)
}

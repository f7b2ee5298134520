// Package idgen generates globally unique, roughly time-ordered 64-bit ids
// without a central sequencer: seconds since a fixed epoch in the high bits,
// a per-namespace per-day counter from the cache store in the low 32 bits.
package idgen

import (
	"context"
	"fmt"
	"time"

	"dealping/seckill/internal/repository"
)

// Epoch is 2025-01-01T00:00:00Z. With 31 bits of headroom above the
// 32-bit sequence the timestamp component lasts roughly 68 years.
const epoch int64 = 1735689600

const sequenceBits = 32

type Worker struct {
	store repository.CacheStore
}

func NewWorker(store repository.CacheStore) *Worker {
	return &Worker{store: store}
}

// NextID returns the next id for namespace. Ids are unique as long as fewer
// than 2^32 are issued per namespace per calendar day, and non-decreasing at
// second granularity. Wall-clock regression is not compensated for.
func (w *Worker) NextID(ctx context.Context, namespace string) (uint64, error) {
	now := time.Now().UTC()
	timestamp := now.Unix() - epoch

	// Day-scoped counter key, so one hot counter never grows unbounded and
	// per-day issuance is visible operationally.
	counterKey := fmt.Sprintf("inc:%s:%s", namespace, now.Format("2006:01:02"))
	seq, err := w.store.Increment(ctx, counterKey)
	if err != nil {
		return 0, fmt.Errorf("increment id counter %s: %w", counterKey, err)
	}

	return uint64(timestamp)<<sequenceBits | uint64(seq), nil
}

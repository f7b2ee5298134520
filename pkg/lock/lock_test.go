package lock

import (
	"context"
	"testing"
	"time"

	"dealping/seckill/internal/repository"
)

func TestLock_TryAcquire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := repository.NewMemoryCacheStore()

	first := New(store, "res")
	second := New(store, "res")

	ok, err := first.TryAcquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	ok, err = second.TryAcquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected contended acquire to fail")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ok, err = second.TryAcquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
}

func TestLock_ReleaseByNonOwnerIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := repository.NewMemoryCacheStore()

	owner := New(store, "res")
	intruder := New(store, "res")

	if ok, _ := owner.TryAcquire(ctx, time.Minute); !ok {
		t.Fatalf("expected acquire to succeed")
	}

	if err := intruder.Release(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The original owner still holds the lock.
	if ok, _ := intruder.TryAcquire(ctx, time.Minute); ok {
		t.Fatalf("expected lock to still be held after non-owner release")
	}
	if err := owner.Release(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok, _ := intruder.TryAcquire(ctx, time.Minute); !ok {
		t.Fatalf("expected lock to be free after owner release")
	}
}

func TestLock_ExpiredThenReacquired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := repository.NewMemoryCacheStore()

	first := New(store, "res")
	if ok, _ := first.TryAcquire(ctx, 10*time.Millisecond); !ok {
		t.Fatalf("expected acquire to succeed")
	}
	time.Sleep(30 * time.Millisecond)

	second := New(store, "res")
	if ok, _ := second.TryAcquire(ctx, time.Minute); !ok {
		t.Fatalf("expected acquire after TTL expiry to succeed")
	}

	// A delayed release from the expired holder must not free the new
	// holder's lock.
	if err := first.Release(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	third := New(store, "res")
	if ok, _ := third.TryAcquire(ctx, time.Minute); ok {
		t.Fatalf("expected second holder's lock to survive stale release")
	}
}

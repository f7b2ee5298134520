package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheStore_SetNX(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryCacheStore()

	ok, err := store.SetNX(ctx, "k", []byte("a"), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected first SetNX to succeed")
	}

	ok, err = store.SetNX(ctx, "k", []byte("b"), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected second SetNX to fail")
	}

	val, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(val) != "a" {
		t.Fatalf("expected value a, got %q", val)
	}
}

func TestMemoryCacheStore_TTLExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryCacheStore()

	if err := store.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	val, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected expired key to be absent, got %q", val)
	}
}

func TestMemoryCacheStore_Increment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryCacheStore()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Increment(ctx, "counter")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestMemoryCacheStore_CompareAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryCacheStore()

	if err := store.Set(ctx, "k", []byte("owner-1"), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deleted, err := store.CompareAndDelete(ctx, "k", "owner-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted {
		t.Fatalf("expected mismatched delete to be a no-op")
	}
	if val, _ := store.Get(ctx, "k"); string(val) != "owner-1" {
		t.Fatalf("expected key to survive mismatched delete, got %q", val)
	}

	deleted, err = store.CompareAndDelete(ctx, "k", "owner-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Fatalf("expected matching delete to succeed")
	}
	if val, _ := store.Get(ctx, "k"); val != nil {
		t.Fatalf("expected key gone, got %q", val)
	}
}

func TestMemoryCacheStore_ReserveStock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("concurrent distinct users never oversell", func(t *testing.T) {
		store := NewMemoryCacheStore()
		if err := store.Set(ctx, "stock", []byte("5"), 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		const attempts = 50
		results := make([]int64, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				code, err := store.ReserveStock(ctx, "stock", "buyers", fmt.Sprintf("user-%d", i))
				if err != nil {
					t.Errorf("reserve: %v", err)
					return
				}
				results[i] = code
			}(i)
		}
		wg.Wait()

		accepted := 0
		for _, code := range results {
			if code == ReserveAccepted {
				accepted++
			}
		}
		if accepted != 5 {
			t.Fatalf("expected exactly 5 accepted, got %d", accepted)
		}
		if val, _ := store.Get(ctx, "stock"); string(val) != "0" {
			t.Fatalf("expected stock 0, got %q", val)
		}
	})

	t.Run("same user admitted at most once", func(t *testing.T) {
		store := NewMemoryCacheStore()
		if err := store.Set(ctx, "stock", []byte("5"), 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		const attempts = 20
		results := make([]int64, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				code, err := store.ReserveStock(ctx, "stock", "buyers", "user-1")
				if err != nil {
					t.Errorf("reserve: %v", err)
					return
				}
				results[i] = code
			}(i)
		}
		wg.Wait()

		accepted, duplicates := 0, 0
		for _, code := range results {
			switch code {
			case ReserveAccepted:
				accepted++
			case ReserveDuplicate:
				duplicates++
			}
		}
		if accepted != 1 {
			t.Fatalf("expected exactly 1 accepted, got %d", accepted)
		}
		if duplicates != attempts-1 {
			t.Fatalf("expected %d duplicates, got %d", attempts-1, duplicates)
		}
	})

	t.Run("missing stock counter means no stock", func(t *testing.T) {
		store := NewMemoryCacheStore()
		code, err := store.ReserveStock(ctx, "stock", "buyers", "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if code != ReserveNoStock {
			t.Fatalf("expected ReserveNoStock, got %d", code)
		}
	})
}

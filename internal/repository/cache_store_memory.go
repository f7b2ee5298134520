package repository

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	members   map[string]struct{}
	expiresAt time.Time
	hasTTL    bool
}

func (e memEntry) isExpired() bool {
	return e.hasTTL && time.Now().After(e.expiresAt)
}

type memoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

func NewMemoryCacheStore() CacheStore {
	return &memoryCacheStore{
		entries: make(map[string]memEntry),
	}
}

// lookup returns the live entry for key, dropping it first if expired.
// Caller must hold s.mu.
func (s *memoryCacheStore) lookup(key string) (memEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if entry.isExpired() {
		delete(s.entries, key)
		return memEntry{}, false
	}
	return entry, true
}

func (s *memoryCacheStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	if entry.value == nil {
		return []byte{}, nil
	}
	return entry.value, nil
}

func (s *memoryCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = newEntry(value, ttl)
	return nil
}

func (s *memoryCacheStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.entries[key] = newEntry(value, ttl)
	return true, nil
}

func (s *memoryCacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *memoryCacheStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if entry, ok := s.lookup(key); ok {
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	s.entries[key] = memEntry{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

func (s *memoryCacheStore) CompareAndDelete(_ context.Context, key string, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(key)
	if !ok || string(entry.value) != expected {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *memoryCacheStore) ReserveStock(_ context.Context, stockKey, buyersKey, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stock int64
	if entry, ok := s.lookup(stockKey); ok {
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err != nil {
			return 0, err
		}
		stock = parsed
	}
	if stock <= 0 {
		return ReserveNoStock, nil
	}

	buyers, ok := s.lookup(buyersKey)
	if !ok || buyers.members == nil {
		buyers = memEntry{members: make(map[string]struct{})}
	}
	if _, bought := buyers.members[userID]; bought {
		return ReserveDuplicate, nil
	}

	s.entries[stockKey] = memEntry{value: []byte(strconv.FormatInt(stock-1, 10))}
	buyers.members[userID] = struct{}{}
	s.entries[buyersKey] = buyers
	return ReserveAccepted, nil
}

func newEntry(value []byte, ttl time.Duration) memEntry {
	entry := memEntry{value: value}
	if entry.value == nil {
		entry.value = []byte{}
	}
	if ttl > 0 {
		entry.hasTTL = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	return entry
}

package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// unlockScript deletes a key only when it still holds the caller's value.
// A plain GET-then-DEL pair has a race: the key can expire and be re-created
// by another holder between the two calls.
var unlockScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`)

// reserveStockScript performs the admission check as one script so the
// stock read, duplicate check, decrement and membership write cannot
// interleave with a concurrent request for the same item.
// KEYS[1] = stock counter, KEYS[2] = set of user ids that already ordered.
var reserveStockScript = redis.NewScript(`
if tonumber(redis.call('get', KEYS[1]) or '0') <= 0 then
    return 1
end
if redis.call('sismember', KEYS[2], ARGV[1]) == 1 then
    return 2
end
redis.call('incrby', KEYS[1], -1)
redis.call('sadd', KEYS[2], ARGV[1])
return 0
`)

type redisCacheStore struct {
	client *redis.Client
}

func NewRedisCacheStore(client *redis.Client) CacheStore {
	return &redisCacheStore{client: client}
}

func (s *redisCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func (s *redisCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisCacheStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisCacheStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *redisCacheStore) CompareAndDelete(ctx context.Context, key string, expected string) (bool, error) {
	n, err := unlockScript.Run(ctx, s.client, []string{key}, expected).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *redisCacheStore) ReserveStock(ctx context.Context, stockKey, buyersKey, userID string) (int64, error) {
	return reserveStockScript.Run(ctx, s.client, []string{stockKey, buyersKey}, userID).Int64()
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared redis instance. All state
// lives server-side; no in-process caching is permitted, so a revoked
// token is rejected by every replica as soon as the write lands.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

var compareAndDeleteScript = redis.NewScript(`
-- KEYS[1] = session key
-- ARGV[1] = expected value
--
-- Returns 1 if the key held the expected value and was deleted,
-- 0 otherwise. Exactly one of N concurrent callers can win.
if redis.call('GET', KEYS[1]) == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) SAdd(ctx context.Context, set, member string) error {
	return s.rdb.SAdd(ctx, set, member).Err()
}

func (s *RedisStore) SMembers(ctx context.Context, set string) ([]string, error) {
	return s.rdb.SMembers(ctx, set).Result()
}

func (s *RedisStore) SRem(ctx context.Context, set, member string) error {
	return s.rdb.SRem(ctx, set, member).Err()
}

func (s *RedisStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	res, err := compareAndDeleteScript.Run(ctx, s.rdb, []string{key}, expected).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

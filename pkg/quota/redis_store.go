package quota

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis.
// INCR gives the atomic increment primitive; missing keys read as zero.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed quota store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, counterID string) (int, error) {
	val, err := s.client.Get(ctx, counterID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return val, nil
}

func (s *RedisStore) Incr(ctx context.Context, counterID string) (int, error) {
	val, err := s.client.Incr(ctx, counterID).Result()
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}

	// First increment on a fresh key: bound its lifetime so stale daily
	// counters do not accumulate. Expiry failure is not fatal, the counter
	// value is already correct.
	if val == 1 {
		_ = s.client.Expire(ctx, counterID, counterTTL).Err()
	}

	return int(val), nil
}

func (s *RedisStore) Set(ctx context.Context, counterID string, value int) error {
	if err := s.client.Set(ctx, counterID, value, 0).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ResetAll(ctx context.Context, counterIDs ...string) error {
	if len(counterIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range counterIDs {
		pipe.Set(ctx, id, 0, counterTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

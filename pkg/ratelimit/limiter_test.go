package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/pkg/ratelimit"
)

// failingStore simulates an unreachable counter backend.
type failingStore struct{}

func (failingStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	return 0, errors.Join(ratelimit.ErrStoreUnavailable, errors.New("connection refused"))
}

func (failingStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, ratelimit.ErrStoreUnavailable
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.New(nil, ratelimit.Config{Limit: 7, Window: time.Hour})
		assert.ErrorIs(t, err, ratelimit.ErrStoreNil)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 0, Window: time.Hour})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})

	t.Run("invalid window", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 7})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})

	t.Run("sub-second window", func(t *testing.T) {
		t.Parallel()

		// Bucket math works in whole seconds; a shorter window must be
		// rejected at construction, not blow up on the first Allow.
		_, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 7, Window: 500 * time.Millisecond})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})

	t.Run("one second window allows requests", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 7, Window: time.Second})
		require.NoError(t, err)

		res, err := limiter.Allow(context.Background(), "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	t.Run("admits up to the limit then denies", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 7, Window: time.Hour})
		require.NoError(t, err)

		ctx := context.Background()
		for i := 1; i <= 7; i++ {
			res, err := limiter.Allow(ctx, "203.0.113.7")
			require.NoError(t, err)
			assert.True(t, res.Allowed(), "request %d should be admitted", i)
			assert.Equal(t, 7-i, res.Remaining)
		}

		res, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.False(t, res.Allowed())

		retryAfter := res.RetryAfter()
		assert.Positive(t, retryAfter)
		assert.LessOrEqual(t, retryAfter, time.Hour)
	})

	t.Run("clients are counted independently", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Hour})
		require.NoError(t, err)

		ctx := context.Background()

		res, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, res.Allowed())

		res, err = limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.False(t, res.Allowed())

		res, err = limiter.Allow(ctx, "client-b")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})

	t.Run("next window bucket starts fresh", func(t *testing.T) {
		t.Parallel()

		current := time.Date(2025, 6, 1, 10, 59, 0, 0, time.UTC)
		limiter, err := ratelimit.New(
			ratelimit.NewMemoryStore(),
			ratelimit.Config{Limit: 1, Window: time.Hour},
			ratelimit.WithClock(func() time.Time { return current }),
		)
		require.NoError(t, err)

		ctx := context.Background()

		res, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())

		res, err = limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, res.Allowed())

		// Cross the hour boundary; the key changes and the count resets.
		current = time.Date(2025, 6, 1, 11, 0, 1, 0, time.UTC)

		res, err = limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})

	t.Run("store failure admits the request", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimit.New(failingStore{}, ratelimit.Config{Limit: 7, Window: time.Hour})
		require.NoError(t, err)

		res, err := limiter.Allow(context.Background(), "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})
}

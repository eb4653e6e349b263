package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/pkg/delivery"
	"github.com/prajwaln07/EmailSender/pkg/provider"
	"github.com/prajwaln07/EmailSender/pkg/quota"
)

// scriptChannel is a channel whose sends can be forced to fail.
type scriptChannel struct {
	name    string
	ceiling int
	fail    bool
	sends   int
}

func (s *scriptChannel) Name() string { return s.name }
func (s *scriptChannel) Ceiling() int { return s.ceiling }
func (s *scriptChannel) Send(ctx context.Context, msg provider.Message) error {
	s.sends++
	if s.fail {
		return errors.Join(provider.ErrTransport, errors.New("simulated failure"))
	}
	return nil
}

// brokenStore fails every operation, simulating an unreachable backend.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, id string) (int, error) {
	return 0, quota.ErrStoreUnavailable
}
func (brokenStore) Incr(ctx context.Context, id string) (int, error) {
	return 0, quota.ErrStoreUnavailable
}
func (brokenStore) Set(ctx context.Context, id string, v int) error {
	return quota.ErrStoreUnavailable
}
func (brokenStore) ResetAll(ctx context.Context, ids ...string) error {
	return quota.ErrStoreUnavailable
}

func testMessage() provider.Message {
	return provider.Message{
		To:       "dev@example.com",
		Subject:  "Reminder: Two Sum",
		BodyHTML: "<p>practice</p>",
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newRouter(t *testing.T, store quota.Store, channels ...provider.Channel) *delivery.Router {
	t.Helper()
	ring, err := provider.NewRing(channels...)
	require.NoError(t, err)
	router, err := delivery.NewRouter(ring, store, delivery.WithClock(fixedClock()))
	require.NoError(t, err)
	return router
}

func dayCounter(name string) string {
	return quota.DayKey("quota:"+name, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	t.Run("nil ring", func(t *testing.T) {
		t.Parallel()

		_, err := delivery.NewRouter(nil, quota.NewMemoryStore())
		assert.ErrorIs(t, err, delivery.ErrRingNil)
	})

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()

		ring, err := provider.NewRing(&scriptChannel{name: "postmark", ceiling: 1})
		require.NoError(t, err)
		_, err = delivery.NewRouter(ring, nil)
		assert.ErrorIs(t, err, delivery.ErrStoreNil)
	})
}

func TestRouter_Deliver(t *testing.T) {
	t.Parallel()

	t.Run("primary under quota wins and is counted", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100}
		secondary := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
		router := newRouter(t, store, primary, secondary)

		require.NoError(t, router.Deliver(context.Background(), testMessage()))

		assert.Equal(t, 1, primary.sends)
		assert.Zero(t, secondary.sends)

		count, err := store.Get(context.Background(), dayCounter("postmark"))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("primary failure falls through without consuming quota", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100, fail: true}
		secondary := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
		router := newRouter(t, store, primary, secondary)

		require.NoError(t, router.Deliver(context.Background(), testMessage()))

		assert.Equal(t, 1, primary.sends)
		assert.Equal(t, 1, secondary.sends)

		primaryCount, err := store.Get(context.Background(), dayCounter("postmark"))
		require.NoError(t, err)
		assert.Zero(t, primaryCount, "failed send must not consume quota")

		secondaryCount, err := store.Get(context.Background(), dayCounter("smtp:a@example.com"))
		require.NoError(t, err)
		assert.Equal(t, 1, secondaryCount)
	})

	t.Run("exhausted secondary skipped, next one used", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100, fail: true}
		secA := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
		secB := &scriptChannel{name: "smtp:b@example.com", ceiling: 500}
		router := newRouter(t, store, primary, secA, secB)

		// Secondary A is at full quota.
		require.NoError(t, store.Set(context.Background(), dayCounter("smtp:a@example.com"), 500))

		require.NoError(t, router.Deliver(context.Background(), testMessage()))

		assert.Zero(t, secA.sends)
		assert.Equal(t, 1, secB.sends)
	})

	t.Run("rotation offset advances across calls", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100, fail: true}
		secA := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
		secB := &scriptChannel{name: "smtp:b@example.com", ceiling: 500}
		router := newRouter(t, store, primary, secA, secB)

		ctx := context.Background()
		require.NoError(t, router.Deliver(ctx, testMessage()))
		require.NoError(t, router.Deliver(ctx, testMessage()))

		// First call uses A, persists offset; second starts after A.
		assert.Equal(t, 1, secA.sends)
		assert.Equal(t, 1, secB.sends)

		offset, err := store.Get(ctx, "router:rotation")
		require.NoError(t, err)
		assert.Equal(t, 2, offset)
	})

	t.Run("all channels exhausted", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100}
		secondary := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
		router := newRouter(t, store, primary, secondary)

		ctx := context.Background()
		require.NoError(t, store.Set(ctx, dayCounter("postmark"), 100))
		require.NoError(t, store.Set(ctx, dayCounter("smtp:a@example.com"), 500))

		err := router.Deliver(ctx, testMessage())
		assert.ErrorIs(t, err, delivery.ErrAllChannelsExhausted)
		assert.Zero(t, primary.sends)
		assert.Zero(t, secondary.sends)
	})

	t.Run("all sends failing", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		primary := &scriptChannel{name: "postmark", ceiling: 100, fail: true}
		secondary := &scriptChannel{name: "smtp:a@example.com", ceiling: 500, fail: true}
		router := newRouter(t, store, primary, secondary)

		err := router.Deliver(context.Background(), testMessage())
		assert.ErrorIs(t, err, delivery.ErrAllChannelsExhausted)
	})

	t.Run("store outage fails closed", func(t *testing.T) {
		t.Parallel()

		primary := &scriptChannel{name: "postmark", ceiling: 100}
		router := newRouter(t, brokenStore{}, primary)

		err := router.Deliver(context.Background(), testMessage())
		assert.ErrorIs(t, err, delivery.ErrAllChannelsExhausted)
		assert.Zero(t, primary.sends, "no channel may be attempted when quota is unreadable")
	})
}

func TestRouter_Snapshot(t *testing.T) {
	t.Parallel()

	store := quota.NewMemoryStore()
	primary := &scriptChannel{name: "postmark", ceiling: 100}
	secondary := &scriptChannel{name: "smtp:a@example.com", ceiling: 500}
	router := newRouter(t, store, primary, secondary)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, dayCounter("postmark"), 100))
	require.NoError(t, store.Set(ctx, dayCounter("smtp:a@example.com"), 42))

	statuses := router.Snapshot(ctx)
	require.Len(t, statuses, 2)

	assert.Equal(t, "postmark", statuses[0].Name)
	assert.Equal(t, 100, statuses[0].EmailsSent)
	assert.Zero(t, statuses[0].Remaining)
	assert.False(t, statuses[0].IsAvailable)

	assert.Equal(t, 42, statuses[1].EmailsSent)
	assert.Equal(t, 458, statuses[1].Remaining)
	assert.True(t, statuses[1].IsAvailable)
}

func TestRouter_ResetCounters(t *testing.T) {
	t.Parallel()

	store := quota.NewMemoryStore()
	primary := &scriptChannel{name: "postmark", ceiling: 100}
	router := newRouter(t, store, primary)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, dayCounter("postmark"), 50))
	require.NoError(t, router.ResetCounters(ctx))

	count, err := store.Get(ctx, dayCounter("postmark"))
	require.NoError(t, err)
	assert.Zero(t, count)

	statuses := router.Snapshot(ctx)
	assert.True(t, statuses[0].IsAvailable)
}

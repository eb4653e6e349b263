package quota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/pkg/quota"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("absent counter reads zero", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		val, err := store.Get(context.Background(), "never-written")
		require.NoError(t, err)
		assert.Equal(t, 0, val)
	})

	t.Run("increment reflects exactly once per call", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		ctx := context.Background()

		val, err := store.Incr(ctx, "postmark")
		require.NoError(t, err)
		assert.Equal(t, 1, val)

		val, err = store.Incr(ctx, "postmark")
		require.NoError(t, err)
		assert.Equal(t, 2, val)

		got, err := store.Get(ctx, "postmark")
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})

	t.Run("reset all returns counters to zero", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		ctx := context.Background()

		_, err := store.Incr(ctx, "a")
		require.NoError(t, err)
		_, err = store.Incr(ctx, "b")
		require.NoError(t, err)

		require.NoError(t, store.ResetAll(ctx, "a", "b"))

		for _, id := range []string{"a", "b"} {
			val, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 0, val)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "offset", 3))
		val, err := store.Get(ctx, "offset")
		require.NoError(t, err)
		assert.Equal(t, 3, val)
	})

	t.Run("concurrent increments do not lose updates", func(t *testing.T) {
		t.Parallel()

		store := quota.NewMemoryStore()
		ctx := context.Background()

		const goroutines = 50
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				_, _ = store.Incr(ctx, "shared")
			}()
		}
		wg.Wait()

		val, err := store.Get(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, goroutines, val)
	})
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	t.Run("same day yields same key", func(t *testing.T) {
		t.Parallel()

		morning := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		evening := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
		assert.Equal(t, quota.DayKey("postmark", morning), quota.DayKey("postmark", evening))
	})

	t.Run("next day rotates the key", func(t *testing.T) {
		t.Parallel()

		today := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		tomorrow := today.Add(24 * time.Hour)
		assert.NotEqual(t, quota.DayKey("postmark", today), quota.DayKey("postmark", tomorrow))
	})

	t.Run("key is derived in UTC", func(t *testing.T) {
		t.Parallel()

		// 23:30 in UTC+2 is 21:30 UTC on the same date.
		loc := time.FixedZone("UTC+2", 2*3600)
		local := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
		assert.Equal(t, "smtp-1:2025-06-01", quota.DayKey("smtp-1", local))
	})
}

package reminder_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/modules/reminder"
	"github.com/prajwaln07/EmailSender/pkg/delivery"
	"github.com/prajwaln07/EmailSender/pkg/provider"
	"github.com/prajwaln07/EmailSender/pkg/queue"
	"github.com/prajwaln07/EmailSender/pkg/quota"
)

// captureChannel records sent messages instead of delivering them.
type captureChannel struct {
	mu      sync.Mutex
	name    string
	ceiling int
	sent    []provider.Message
	fail    error
}

func (c *captureChannel) Name() string { return c.name }
func (c *captureChannel) Ceiling() int { return c.ceiling }

func (c *captureChannel) Send(ctx context.Context, msg provider.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureChannel) messages() []provider.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]provider.Message(nil), c.sent...)
}

func newTestService(t *testing.T, ch provider.Channel) (*reminder.Service, *queue.MemoryStorage) {
	t.Helper()

	storage := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)

	ring, err := provider.NewRing(ch)
	require.NoError(t, err)

	router, err := delivery.NewRouter(ring, quota.NewMemoryStore())
	require.NoError(t, err)

	svc, err := reminder.NewService(enq, router, storage)
	require.NoError(t, err)
	return svc, storage
}

func TestService_Schedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("enqueues with day-based delay", func(t *testing.T) {
		t.Parallel()

		svc, storage := newTestService(t, &captureChannel{name: "capture", ceiling: 100})

		jobID, err := svc.Schedule(ctx, validPayload())
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, jobID)

		job, err := storage.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, queue.JobStatusPending, job.Status)
		assert.WithinDuration(t, time.Now().Add(3*24*time.Hour), job.ScheduledAt, time.Minute)
	})

	t.Run("rejects invalid payloads without enqueueing", func(t *testing.T) {
		t.Parallel()

		svc, storage := newTestService(t, &captureChannel{name: "capture", ceiling: 100})

		p := validPayload()
		p.TimeInDays = 0
		_, err := svc.Schedule(ctx, p)
		require.ErrorIs(t, err, reminder.ErrValidation)

		counts, err := storage.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts[queue.JobStatusPending])
	})
}

func TestService_JobHandler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("renders and delivers the reminder", func(t *testing.T) {
		t.Parallel()

		ch := &captureChannel{name: "capture", ceiling: 100}
		svc, _ := newTestService(t, ch)

		handler := svc.JobHandler()
		payload := []byte(`{"email":"dev@example.com","problemLink":"https://example.com/p/1","problemName":"Two Sum","notes":"hashmap","timeInDays":3}`)
		require.NoError(t, handler.Handle(ctx, payload))

		sent := ch.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "dev@example.com", sent[0].To)
		assert.Equal(t, "Reminder: revisit Two Sum", sent[0].Subject)
		assert.Contains(t, sent[0].BodyHTML, "https://example.com/p/1")
		assert.Contains(t, sent[0].BodyHTML, "hashmap")
	})

	t.Run("handler name matches what Schedule enqueues", func(t *testing.T) {
		t.Parallel()

		ch := &captureChannel{name: "capture", ceiling: 100}
		svc, storage := newTestService(t, ch)

		jobID, err := svc.Schedule(ctx, validPayload())
		require.NoError(t, err)

		job, err := storage.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, svc.JobHandler().Name(), job.Name)
	})

	t.Run("exhausted channels fail the job for retry", func(t *testing.T) {
		t.Parallel()

		ch := &captureChannel{name: "capture", ceiling: 100, fail: provider.ErrTransport}
		svc, _ := newTestService(t, ch)

		handler := svc.JobHandler()
		payload := []byte(`{"email":"dev@example.com","problemLink":"https://example.com/p/1","problemName":"Two Sum","timeInDays":1}`)
		require.ErrorIs(t, handler.Handle(ctx, payload), delivery.ErrAllChannelsExhausted)
	})
}

func TestService_Status(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ch := &captureChannel{name: "capture", ceiling: 100}
	svc, _ := newTestService(t, ch)

	_, err := svc.Schedule(ctx, validPayload())
	require.NoError(t, err)

	st := svc.Status(ctx)
	require.Len(t, st.Channels, 1)
	assert.Equal(t, "capture", st.Channels[0].Name)
	assert.True(t, st.Channels[0].IsAvailable)
	assert.Equal(t, 1, st.Queue["pending"])
}

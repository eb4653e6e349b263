package queue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/pkg/queue"
)

type namedPayload struct {
	Count int `json:"count"`
}

func TestNewJobHandler(t *testing.T) {
	t.Parallel()

	t.Run("name matches qualified payload type", func(t *testing.T) {
		t.Parallel()

		h := queue.NewJobHandler(func(ctx context.Context, p namedPayload) error { return nil })
		assert.Equal(t, "queue_test.namedPayload", h.Name())
	})

	t.Run("pointer payloads share the same name", func(t *testing.T) {
		t.Parallel()

		h := queue.NewJobHandler(func(ctx context.Context, p *namedPayload) error { return nil })
		assert.Equal(t, "queue_test.namedPayload", h.Name())
	})

	t.Run("decodes payload before handling", func(t *testing.T) {
		t.Parallel()

		var got namedPayload
		h := queue.NewJobHandler(func(ctx context.Context, p namedPayload) error {
			got = p
			return nil
		})

		require.NoError(t, h.Handle(context.Background(), json.RawMessage(`{"count":42}`)))
		assert.Equal(t, 42, got.Count)
	})

	t.Run("propagates decode errors", func(t *testing.T) {
		t.Parallel()

		h := queue.NewJobHandler(func(ctx context.Context, p namedPayload) error { return nil })
		require.Error(t, h.Handle(context.Background(), json.RawMessage(`not json`)))
	})
}

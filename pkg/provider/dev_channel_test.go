package provider_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajwaln07/EmailSender/pkg/provider"
)

func TestDevChannel_Send(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ch := provider.NewDevChannel(dir, 100)

		msg := provider.Message{
			To:       "dev@example.com",
			Subject:  "Reminder: Two Sum",
			BodyHTML: "<p>practice time</p>",
			Tag:      "reminder",
		}
		require.NoError(t, ch.Send(context.Background(), msg))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = filepath.Join(dir, e.Name())
			case ".json":
				jsonFile = filepath.Join(dir, e.Name())
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)

		body, err := os.ReadFile(htmlFile)
		require.NoError(t, err)
		assert.Equal(t, msg.BodyHTML, string(body))

		var meta map[string]string
		raw, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "dev@example.com", meta["to"])
		assert.Equal(t, "Reminder: Two Sum", meta["subject"])

		assert.True(t, strings.Contains(filepath.Base(htmlFile), "reminder"))
	})

	t.Run("invalid message rejected before writing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ch := provider.NewDevChannel(dir, 100)

		err := ch.Send(context.Background(), provider.Message{To: "dev@example.com"})
		assert.ErrorIs(t, err, provider.ErrInvalidMessage)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})

	t.Run("default ceiling applied", func(t *testing.T) {
		t.Parallel()

		ch := provider.NewDevChannel(t.TempDir(), 0)
		assert.Equal(t, 1000, ch.Ceiling())
	})
}

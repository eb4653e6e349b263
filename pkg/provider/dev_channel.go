package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevChannel implements Channel for local development: instead of sending,
// it drops each message as an HTML file plus a JSON metadata file into a
// directory.
type DevChannel struct {
	dir     string
	ceiling int
}

// NewDevChannel creates a development channel writing to dir.
// The directory is created on first send if it does not exist.
func NewDevChannel(dir string, ceiling int) *DevChannel {
	if ceiling <= 0 {
		ceiling = 1000
	}
	return &DevChannel{dir: dir, ceiling: ceiling}
}

func (d *DevChannel) Name() string { return "dev" }

func (d *DevChannel) Ceiling() int { return d.ceiling }

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (d *DevChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("create dir: %w", err))
	}

	now := time.Now()
	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(identifier))

	htmlPath := filepath.Join(d.dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(msg.BodyHTML), 0o644); err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("write html: %w", err))
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
	}, "", "  ")
	if err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("marshal metadata: %w", err))
	}

	jsonPath := filepath.Join(d.dir, base+".json")
	if err := os.WriteFile(jsonPath, meta, 0o644); err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("write metadata: %w", err))
	}

	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a string into a safe lowercase filename.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}

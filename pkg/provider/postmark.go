package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkChannel sends through Postmark's transactional API. It is the
// ring's bulk primary: one shared server token, a single quota counter.
type PostmarkChannel struct {
	client  *postmark.Client
	sender  string
	ceiling int
}

// NewPostmarkChannel creates the Postmark-backed primary channel.
// The token and sender are required; a channel without credentials must
// fail construction rather than fail every send at runtime.
func NewPostmarkChannel(serverToken, sender string, ceiling int) (*PostmarkChannel, error) {
	if serverToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if sender == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(sender) {
		return nil, fmt.Errorf("%w: sender must be a valid email address", ErrInvalidConfig)
	}
	if ceiling <= 0 {
		return nil, fmt.Errorf("%w: ceiling must be positive, got %d", ErrInvalidConfig, ceiling)
	}

	return &PostmarkChannel{
		client:  postmark.NewClient(serverToken, ""),
		sender:  sender,
		ceiling: ceiling,
	}, nil
}

func (c *PostmarkChannel) Name() string { return "postmark" }

func (c *PostmarkChannel) Ceiling() int { return c.ceiling }

func (c *PostmarkChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       c.sender,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.BodyHTML,
		TrackOpens: true,
	})
	if err != nil {
		return errors.Join(ErrTransport, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrTransport, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

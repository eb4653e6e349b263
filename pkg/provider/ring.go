package provider

import (
	"context"
	"fmt"
)

// Channel is one outbound email transport with a static daily ceiling.
type Channel interface {
	// Name identifies the channel for logging and quota counters.
	Name() string

	// Ceiling is the maximum sends per day this channel accepts.
	Ceiling() int

	// Send delivers the message or returns an error wrapping ErrTransport.
	Send(ctx context.Context, msg Message) error
}

// Ring is the ordered list of outbound channels. Index 0 is the
// high-capacity bulk provider; indexes 1..N are individually credentialed
// accounts. The ring holds no quota state, it is pure transport plus static
// configuration.
type Ring struct {
	channels []Channel
}

// NewRing builds a ring from the given channels in priority order.
func NewRing(channels ...Channel) (*Ring, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", ErrInvalidConfig)
	}
	for i, ch := range channels {
		if ch == nil {
			return nil, fmt.Errorf("%w: channel %d is nil", ErrInvalidConfig, i)
		}
	}
	return &Ring{channels: channels}, nil
}

// Len returns the number of channels.
func (r *Ring) Len() int {
	return len(r.channels)
}

// NameOf returns the name of the channel at index i.
func (r *Ring) NameOf(i int) string {
	return r.channels[i].Name()
}

// CeilingOf returns the daily ceiling of the channel at index i.
func (r *Ring) CeilingOf(i int) int {
	return r.channels[i].Ceiling()
}

// Send delivers the message through the channel at index i.
func (r *Ring) Send(ctx context.Context, i int, msg Message) error {
	if i < 0 || i >= len(r.channels) {
		return fmt.Errorf("%w: %d", ErrChannelIndex, i)
	}
	return r.channels[i].Send(ctx, msg)
}

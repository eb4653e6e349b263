package provider

import "errors"

var (
	// ErrInvalidMessage indicates the message fails validation before any
	// transport is attempted.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidConfig indicates channel configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrTransport wraps a single channel's send failure. The delivery
	// router treats it as "try the next channel", never surfaces it to the
	// submitting client.
	ErrTransport = errors.New("transport send failed")

	// ErrChannelIndex is returned for out-of-range channel indexes.
	ErrChannelIndex = errors.New("channel index out of range")
)

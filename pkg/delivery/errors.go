package delivery

import "errors"

var (
	// ErrAllChannelsExhausted means every channel was over quota or failed
	// its send. Callers treat this as a retryable delivery failure.
	ErrAllChannelsExhausted = errors.New("all delivery channels exhausted")

	// ErrRingNil is returned when a nil provider ring is supplied.
	ErrRingNil = errors.New("provider ring cannot be nil")

	// ErrStoreNil is returned when a nil quota store is supplied.
	ErrStoreNil = errors.New("quota store cannot be nil")
)

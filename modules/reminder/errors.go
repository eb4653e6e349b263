package reminder

import "errors"

var (
	// ErrValidation marks a submission the client must fix before retrying
	ErrValidation = errors.New("invalid reminder request")

	// ErrSchedulingFailed is returned when a valid reminder could not be
	// persisted to the queue
	ErrSchedulingFailed = errors.New("failed to schedule reminder")
)

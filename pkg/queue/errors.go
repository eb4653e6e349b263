package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrNoJobToClaim signals an empty queue; callers treat it as a normal
	// idle tick, not a failure
	ErrNoJobToClaim = errors.New("no job available to claim")

	// ErrJobNotFound is returned when the referenced job does not exist
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotProcessing is returned when a lifecycle transition requires
	// the job to be held under a lease and it is not
	ErrJobNotProcessing = errors.New("job is not in processing state")

	// ErrHandlerNotFound is returned when no handler is registered for a job
	ErrHandlerNotFound = errors.New("no handler registered for job type")

	// ErrNoHandlers is returned when worker has no handlers registered
	ErrNoHandlers = errors.New("no job handlers registered")

	// ErrStorageUnavailable wraps backend failures of the durable queue store
	ErrStorageUnavailable = errors.New("queue storage unavailable")
)

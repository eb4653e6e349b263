package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	// JobStatusPending covers both "waiting for its delay to elapse" and
	// "ready to be claimed": a pending job is claimable once ScheduledAt
	// has passed.
	JobStatusPending JobStatus = "pending"

	// JobStatusProcessing means a worker holds the job under a lease.
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted is terminal success.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed is terminal failure: the job exhausted its retry
	// budget and will not be resurrected automatically.
	JobStatusFailed JobStatus = "failed"
)

// DefaultMaxRetries bounds processing attempts per job.
const DefaultMaxRetries int8 = 3

// Job is one scheduled unit of work.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Payload     []byte     `json:"payload,omitempty"`
	Status      JobStatus  `json:"status"`
	RetryCount  int8       `json:"retry_count"`
	MaxRetries  int8       `json:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FailedJob is an archived terminally-failed job, kept (capped) for manual
// inspection.
type FailedJob struct {
	JobID      uuid.UUID `json:"job_id"`
	Name       string    `json:"name"`
	Payload    []byte    `json:"payload,omitempty"`
	Error      string    `json:"error"`
	RetryCount int8      `json:"retry_count"`
	FailedAt   time.Time `json:"failed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

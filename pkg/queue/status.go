package queue

import (
	"context"

	"github.com/google/uuid"
)

// StatusRepository exposes read-only queue introspection for status
// endpoints and operators.
type StatusRepository interface {
	// GetJob returns a single job by ID, or ErrJobNotFound.
	GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error)

	// CountByStatus returns the number of jobs per lifecycle state.
	// Archived jobs count as failed.
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)

	// ListFailed returns archived failed jobs, newest first. A non-positive
	// limit returns the whole archive.
	ListFailed(ctx context.Context, limit int) ([]*FailedJob, error)
}

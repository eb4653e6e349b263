package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements all queue repository interfaces in process
// memory, for tests and Redis-less local development.
type MemoryStorage struct {
	mu       sync.RWMutex
	jobs     map[uuid.UUID]*Job
	archive  []*FailedJob
	byStatus map[JobStatus][]uuid.UUID

	retryBackoff       time.Duration
	completedRetention time.Duration
	failedCap          int

	janitor *time.Ticker
	done    chan struct{}
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithRetryBackoff sets the fixed delay before a failed job is retried.
func WithRetryBackoff(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d > 0 {
			ms.retryBackoff = d
		}
	}
}

// WithCompletedRetention sets how long completed jobs are kept.
func WithCompletedRetention(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d > 0 {
			ms.completedRetention = d
		}
	}
}

// WithFailedArchiveCap bounds the failed-job archive.
func WithFailedArchiveCap(n int) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if n > 0 {
			ms.failedCap = n
		}
	}
}

// NewMemoryStorage creates an in-memory queue storage. A background
// janitor recovers expired leases and purges old completed jobs.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	ms := &MemoryStorage{
		jobs:               make(map[uuid.UUID]*Job),
		byStatus:           make(map[JobStatus][]uuid.UUID),
		retryBackoff:       3 * time.Second,
		completedRetention: 24 * time.Hour,
		failedCap:          100,
		done:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}

	ms.janitor = time.NewTicker(time.Second)
	go ms.runJanitor()

	return ms
}

// Close stops the background janitor.
func (ms *MemoryStorage) Close() error {
	close(ms.done)
	ms.janitor.Stop()
	return nil
}

// CreateJob implements EnqueuerRepository.
func (ms *MemoryStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	jobCopy := *job
	ms.jobs[job.ID] = &jobCopy
	ms.byStatus[job.Status] = append(ms.byStatus[job.Status], job.ID)

	return nil
}

// ClaimJob implements WorkerRepository. The earliest due pending job wins.
func (ms *MemoryStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, lease time.Duration) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Job
	for _, jobID := range ms.byStatus[JobStatusPending] {
		job := ms.jobs[jobID]
		if job.ScheduledAt.After(now) {
			continue
		}
		if best == nil || job.ScheduledAt.Before(best.ScheduledAt) {
			best = job
		}
	}

	if best == nil {
		return nil, ErrNoJobToClaim
	}

	lockUntil := now.Add(lease)
	best.Status = JobStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.removeFromStatusIndex(best.ID, JobStatusPending)
	ms.byStatus[JobStatusProcessing] = append(ms.byStatus[JobStatusProcessing], best.ID)

	jobCopy := *best
	return &jobCopy, nil
}

// CompleteJob implements WorkerRepository.
func (ms *MemoryStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	ms.removeFromStatusIndex(jobID, JobStatusProcessing)
	ms.byStatus[JobStatusCompleted] = append(ms.byStatus[JobStatusCompleted], jobID)

	return nil
}

// FailJob implements WorkerRepository. Below the retry budget the job is
// re-scheduled with the fixed backoff; at the budget it becomes terminal.
func (ms *MemoryStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	if job.Status != JobStatusProcessing {
		return nil, ErrJobNotProcessing
	}

	job.RetryCount++
	job.Error = &errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	ms.removeFromStatusIndex(jobID, JobStatusProcessing)
	if job.RetryCount >= job.MaxRetries {
		job.Status = JobStatusFailed
		ms.byStatus[JobStatusFailed] = append(ms.byStatus[JobStatusFailed], jobID)
	} else {
		job.Status = JobStatusPending
		job.ScheduledAt = time.Now().Add(ms.retryBackoff)
		ms.byStatus[JobStatusPending] = append(ms.byStatus[JobStatusPending], jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ArchiveJob implements WorkerRepository. Works from any state so jobs
// without handlers can be parked without burning through retries.
func (ms *MemoryStorage) ArchiveJob(ctx context.Context, jobID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}

	entry := &FailedJob{
		JobID:      job.ID,
		Name:       job.Name,
		Payload:    job.Payload,
		RetryCount: job.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  job.CreatedAt,
	}
	if job.Error != nil {
		entry.Error = *job.Error
	}

	ms.archive = append([]*FailedJob{entry}, ms.archive...)
	if len(ms.archive) > ms.failedCap {
		ms.archive = ms.archive[:ms.failedCap]
	}

	ms.removeFromStatusIndex(jobID, job.Status)
	delete(ms.jobs, jobID)

	return nil
}

// ExtendLock implements WorkerRepository.
func (ms *MemoryStorage) ExtendLock(ctx context.Context, jobID uuid.UUID, lease time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}

	lockUntil := time.Now().Add(lease)
	job.LockedUntil = &lockUntil
	return nil
}

// GetJob implements StatusRepository.
func (ms *MemoryStorage) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	jobCopy := *job
	return &jobCopy, nil
}

// CountByStatus implements StatusRepository.
func (ms *MemoryStorage) CountByStatus(ctx context.Context) (map[JobStatus]int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	counts := make(map[JobStatus]int, 4)
	for status, ids := range ms.byStatus {
		counts[status] = len(ids)
	}
	counts[JobStatusFailed] += len(ms.archive)
	return counts, nil
}

// ListFailed implements StatusRepository, newest first.
func (ms *MemoryStorage) ListFailed(ctx context.Context, limit int) ([]*FailedJob, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if limit <= 0 || limit > len(ms.archive) {
		limit = len(ms.archive)
	}

	out := make([]*FailedJob, limit)
	for i := range out {
		entry := *ms.archive[i]
		out[i] = &entry
	}
	return out, nil
}

func (ms *MemoryStorage) removeFromStatusIndex(jobID uuid.UUID, status JobStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == jobID
	})
}

// runJanitor recovers expired leases and purges old completed jobs.
// Without lease recovery a job claimed by a crashed worker would be lost;
// instead it becomes claimable again and flows through the normal retry
// accounting.
func (ms *MemoryStorage) runJanitor() {
	for {
		select {
		case <-ms.janitor.C:
			ms.expireLocks()
			ms.purgeCompleted()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Collect first: removeFromStatusIndex compacts the slice being
	// iterated, which would leave later iterations reading zeroed IDs.
	now := time.Now()
	var expired []uuid.UUID
	for _, jobID := range ms.byStatus[JobStatusProcessing] {
		job := ms.jobs[jobID]
		if job.LockedUntil != nil && job.LockedUntil.Before(now) {
			expired = append(expired, jobID)
		}
	}

	for _, jobID := range expired {
		// The retry count is preserved; a stalled attempt still
		// consumed part of the budget.
		job := ms.jobs[jobID]
		job.Status = JobStatusPending
		job.LockedUntil = nil
		job.LockedBy = nil

		ms.removeFromStatusIndex(jobID, JobStatusProcessing)
		ms.byStatus[JobStatusPending] = append(ms.byStatus[JobStatusPending], jobID)
	}
}

func (ms *MemoryStorage) purgeCompleted() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := time.Now().Add(-ms.completedRetention)
	var purgeable []uuid.UUID
	for _, jobID := range ms.byStatus[JobStatusCompleted] {
		job := ms.jobs[jobID]
		if job.ProcessedAt != nil && job.ProcessedAt.Before(cutoff) {
			purgeable = append(purgeable, jobID)
		}
	}

	for _, jobID := range purgeable {
		ms.removeFromStatusIndex(jobID, JobStatusCompleted)
		delete(ms.jobs, jobID)
	}
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository defines the storage operations the worker drives.
type WorkerRepository interface {
	// ClaimJob atomically claims the next due pending job under a lease.
	// Returns ErrNoJobToClaim when nothing is due.
	ClaimJob(ctx context.Context, workerID uuid.UUID, lease time.Duration) (*Job, error)

	// CompleteJob marks the job as completed and releases it for purge.
	CompleteJob(ctx context.Context, jobID uuid.UUID) error

	// FailJob records the error and increments the retry count. Below the
	// retry budget the job is re-scheduled as pending with the storage's
	// retry backoff; at the budget it becomes terminally failed. The
	// updated job is returned so the caller can observe the outcome.
	FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) (*Job, error)

	// ArchiveJob moves a terminally failed job into the capped archive.
	ArchiveJob(ctx context.Context, jobID uuid.UUID) error

	// ExtendLock extends the lease for long-running jobs.
	ExtendLock(ctx context.Context, jobID uuid.UUID, lease time.Duration) error
}

// Worker pulls due jobs and runs their handlers. One logical consumer:
// with the default configuration at most one job is processed at a time,
// and the claim itself is atomic in storage, so a job is never processed
// concurrently with itself.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex // serializes stopping state against WaitGroup adds

	pollInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// WorkerOption is a functional option for configuring a worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pollInterval  time.Duration
	lockTimeout   time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// WithPollInterval sets how often the worker checks for due jobs.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLockTimeout sets the lease duration for claimed jobs.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithMaxConcurrentJobs sets how many jobs may run at once.
func WithMaxConcurrentJobs(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithWorkerLogger sets the logger for the worker.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewWorker creates a job worker.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		pollInterval:  time.Second,
		lockTimeout:   2 * time.Minute,
		maxConcurrent: 1,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrent),
		pollInterval: options.pollInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandler registers a job handler by its name.
func (w *Worker) RegisterHandler(handler Handler) {
	if handler == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.Name()] = handler
}

// Start begins processing jobs in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return fmt.Errorf("worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("queue worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Duration("poll_interval", w.pollInterval))

	return nil
}

// Stop gracefully shuts down the worker, waiting for active jobs.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return fmt.Errorf("worker not started")
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("queue worker stopped",
		slog.String("worker_id", w.workerID.String()))

	return nil
}

// Run starts the worker and returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

// run is the main polling loop.
func (w *Worker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(); err != nil && !errors.Is(err, ErrHandlerNotFound) {
						w.logger.Error("failed to process job",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy; skip this tick.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	job, err := w.repo.ClaimJob(w.ctx, w.workerID, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoJobToClaim) {
			return nil
		}
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if job == nil {
		return nil
	}

	w.logger.Debug("claimed job",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID.String()),
		slog.String("job_name", job.Name))

	return w.processJob(job)
}

func (w *Worker) processJob(job *Job) (retErr error) {
	start := time.Now()

	// The job context is bounded by the lease, not by the worker lifecycle:
	// graceful shutdown cancels w.ctx, but an in-flight job must still run
	// to completion AND record its outcome. Created before the recover hook
	// so the panic path can also reach storage.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in handler: %v", r)
			w.logger.Error("job handler panicked",
				slog.String("job_id", job.ID.String()),
				slog.String("job_name", job.Name),
				slog.Any("panic", r))
			_ = w.handleJobFailure(ctx, job, retErr, time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[job.Name]
	w.mu.RUnlock()

	if !ok {
		return w.handleMissingHandler(ctx, job)
	}

	err := handler.Handle(ctx, job.Payload)
	duration := time.Since(start)

	if err != nil {
		return w.handleJobFailure(ctx, job, err, duration)
	}
	return w.handleJobSuccess(ctx, job, duration)
}

// handleMissingHandler fails the job straight to the archive: retries
// cannot help a job nobody can process, and operators can requeue from the
// archive once the handler exists.
func (w *Worker) handleMissingHandler(ctx context.Context, job *Job) error {
	w.logger.Error("no handler registered for job",
		slog.String("job_id", job.ID.String()),
		slog.String("job_name", job.Name))

	errorMsg := "no handler registered for job: " + job.Name
	if _, err := w.repo.FailJob(ctx, job.ID, errorMsg); err != nil {
		return fmt.Errorf("failed to mark job %s as failed: %w", job.ID, err)
	}

	// Straight to the archive regardless of remaining retry budget; the
	// handler will not appear mid-flight.
	if err := w.repo.ArchiveJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to archive job %s: %w", job.ID, err)
	}

	return ErrHandlerNotFound
}

// handleJobFailure records the failure and, when the retry budget is
// exhausted, archives the job. Below the budget the storage layer has
// already re-scheduled it with the fixed backoff.
func (w *Worker) handleJobFailure(ctx context.Context, job *Job, execErr error, duration time.Duration) error {
	w.logger.Error("job failed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID.String()),
		slog.String("job_name", job.Name),
		slog.Int("retry_count", int(job.RetryCount)),
		slog.Int("max_retries", int(job.MaxRetries)),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))

	updated, err := w.repo.FailJob(ctx, job.ID, execErr.Error())
	if err != nil {
		return fmt.Errorf("failed to update job %s after failure: %w", job.ID, err)
	}

	if updated.Status == JobStatusFailed {
		if err := w.repo.ArchiveJob(ctx, job.ID); err != nil {
			return fmt.Errorf("failed to archive job %s after max retries: %w", job.ID, err)
		}
		w.logger.Warn("job moved to failed archive",
			slog.String("job_id", job.ID.String()),
			slog.String("job_name", job.Name),
			slog.Int("retry_count", int(updated.RetryCount)))
	}

	return nil
}

func (w *Worker) handleJobSuccess(ctx context.Context, job *Job, duration time.Duration) error {
	if err := w.repo.CompleteJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
	}

	w.logger.Info("job completed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("job_id", job.ID.String()),
		slog.String("job_name", job.Name),
		slog.Duration("duration", duration))

	return nil
}

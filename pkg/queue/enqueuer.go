package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository defines the interface for job creation.
type EnqueuerRepository interface {
	CreateJob(ctx context.Context, job *Job) error
}

// Enqueuer persists new jobs. It is safe for concurrent use and never
// blocks on the consumer; enqueueing is a single durable write.
type Enqueuer struct {
	repo EnqueuerRepository
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo EnqueuerRepository) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	return &Enqueuer{repo: repo}, nil
}

// EnqueueOption is a functional option for the Enqueue method.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	maxRetries  int8
	delay       time.Duration
	scheduledAt *time.Time
	name        string
}

// WithDelay schedules the job for now plus the given delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithScheduledAt schedules the job for a specific time.
func WithScheduledAt(at time.Time) EnqueueOption {
	return func(o *enqueueOptions) {
		o.scheduledAt = &at
	}
}

// WithMaxRetries overrides the retry budget (1-10).
func WithMaxRetries(maxRetries int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if maxRetries >= 1 && maxRetries <= 10 {
			o.maxRetries = maxRetries
		}
	}
}

// WithName sets a custom job name instead of the payload type name.
func WithName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// Enqueue persists a new job and returns its ID. The job becomes claimable
// once its scheduled time has passed; with no delay that is immediately.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, ErrPayloadNil
	}

	options := &enqueueOptions{maxRetries: DefaultMaxRetries}
	for _, opt := range opts {
		opt(options)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	name := options.name
	if name == "" {
		name = qualifiedStructName(payload)
	}

	now := time.Now()
	scheduledAt := now
	if options.scheduledAt != nil {
		scheduledAt = *options.scheduledAt
	} else if options.delay > 0 {
		scheduledAt = now.Add(options.delay)
	}

	job := &Job{
		ID:          uuid.New(),
		Name:        name,
		Payload:     payloadBytes,
		Status:      JobStatusPending,
		RetryCount:  0,
		MaxRetries:  options.maxRetries,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
	}

	if err := e.repo.CreateJob(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job %q: %w", job.Name, err)
	}

	return job.ID, nil
}

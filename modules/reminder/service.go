package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prajwaln07/EmailSender/pkg/delivery"
	"github.com/prajwaln07/EmailSender/pkg/logger"
	"github.com/prajwaln07/EmailSender/pkg/mailbody"
	"github.com/prajwaln07/EmailSender/pkg/provider"
	"github.com/prajwaln07/EmailSender/pkg/queue"
)

// Service schedules reminders and processes them when due.
type Service struct {
	enqueuer *queue.Enqueuer
	router   *delivery.Router
	status   queue.StatusRepository
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the reminder feature together. The status repository is
// optional; without it the status surface reports channels only.
func NewService(enqueuer *queue.Enqueuer, router *delivery.Router, status queue.StatusRepository, opts ...Option) (*Service, error) {
	if enqueuer == nil {
		return nil, errors.New("enqueuer cannot be nil")
	}
	if router == nil {
		return nil, errors.New("delivery router cannot be nil")
	}

	s := &Service{
		enqueuer: enqueuer,
		router:   router,
		status:   status,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule validates the reminder and enqueues it with a delay of
// TimeInDays days. The returned job ID lets clients correlate later.
// Scheduling succeeds as soon as the job is durably stored; delivery
// outcome is not part of this call.
func (s *Service) Schedule(ctx context.Context, p Payload) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}

	delay := time.Duration(p.TimeInDays) * 24 * time.Hour
	jobID, err := s.enqueuer.Enqueue(ctx, p, queue.WithDelay(delay))
	if err != nil {
		return uuid.Nil, errors.Join(ErrSchedulingFailed, err)
	}

	s.log.InfoContext(ctx, "reminder scheduled",
		logger.JobID(jobID.String()),
		slog.String("email", p.Email),
		slog.Int("time_in_days", p.TimeInDays))

	return jobID, nil
}

// JobHandler returns the queue handler that delivers due reminders. Its
// name is derived from the Payload type, matching what Schedule enqueues.
func (s *Service) JobHandler() queue.Handler {
	return queue.NewJobHandler(func(ctx context.Context, p Payload) error {
		body, err := mailbody.Render(p.ProblemName, p.ProblemLink, p.TimeInDays, p.Notes)
		if err != nil {
			return err
		}

		msg := provider.Message{
			To:       p.Email,
			Subject:  mailbody.Subject(p.ProblemName),
			BodyHTML: body,
			Tag:      "reminder",
		}
		if err := msg.Validate(); err != nil {
			return err
		}

		// ErrAllChannelsExhausted propagates as a plain failure so the
		// queue retries after backoff; capacity may free up by then.
		return s.router.Deliver(ctx, msg)
	})
}

// Status describes the module for the status endpoint: per-channel quota
// usage plus queue depth by lifecycle state.
type Status struct {
	Channels []delivery.ChannelStatus `json:"channels"`
	Queue    map[string]int           `json:"queue,omitempty"`
}

// Status reports channel quotas and queue counts. Queue counts degrade to
// absent rather than failing the endpoint when storage is unreachable.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{Channels: s.router.Snapshot(ctx)}

	if s.status != nil {
		counts, err := s.status.CountByStatus(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "queue counts unavailable for status", logger.Error(err))
		} else {
			st.Queue = make(map[string]int, len(counts))
			for status, n := range counts {
				st.Queue[string(status)] = n
			}
		}
	}

	return st
}

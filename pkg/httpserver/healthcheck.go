package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prajwaln07/EmailSender/pkg/logger"
)

// Check is a named readiness probe for one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler returns a probe endpoint. With no checks it answers
// liveness: 200 "ALIVE". With checks it answers readiness: every probe runs
// against the request context, and the first failure turns the response
// into 503 "NOT_READY".
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		ctx := r.Context()
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component(c.Name),
					logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}

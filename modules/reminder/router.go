package reminder

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prajwaln07/EmailSender/pkg/queue"
	"github.com/prajwaln07/EmailSender/pkg/ratelimit"
)

// Router mounts the reminder HTTP surface. The submission endpoint is
// rate limited per client; the liveness and status endpoints are not.
func Router(svc *Service, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Get("/", handleLiveness)
	r.Get("/status", svc.handleStatus)

	submit := r.With()
	if limiter != nil {
		submit = r.With(ratelimit.Middleware(limiter, ratelimit.ClientIP, deniedJSON))
	}
	submit.Post("/send-reminder", svc.handleSubmit)

	return r
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"jobId,omitempty"`
	Error   string `json:"error,omitempty"`
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Email reminder service is running"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status(r.Context()))
}

// handleSubmit accepts a reminder and reports the scheduling outcome only;
// whether the email eventually sends is the worker's business.
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var p Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   "request body must be valid JSON",
		})
		return
	}

	jobID, err := s.Schedule(r.Context(), p)
	switch {
	case errors.Is(err, ErrValidation):
		writeJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, queue.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, submitResponse{
			Success: false,
			Error:   "scheduling is temporarily unavailable, try again later",
		})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Error:   "failed to schedule reminder",
		})
	default:
		writeJSON(w, http.StatusOK, submitResponse{
			Success: true,
			Message: "reminder scheduled",
			JobID:   jobID.String(),
		})
	}
}

func deniedJSON(w http.ResponseWriter, r *http.Request, result *ratelimit.Result) {
	writeJSON(w, http.StatusTooManyRequests, submitResponse{
		Success: false,
		Error:   "rate limit exceeded, try again later",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

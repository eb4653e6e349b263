package reminder

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Payload is a reminder request. It doubles as the queue job payload, so
// every field must survive a JSON round trip through storage.
type Payload struct {
	Email       string `json:"email"`
	ProblemLink string `json:"problemLink"`
	ProblemName string `json:"problemName"`
	Notes       string `json:"notes,omitempty"`
	TimeInDays  int    `json:"timeInDays"`
}

// MaxReminderDays bounds how far out a reminder can be scheduled.
const MaxReminderDays = 365

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the submission. All failures wrap ErrValidation so the
// HTTP layer can map them to a 400 uniformly.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailRegex.MatchString(p.Email) {
		return fmt.Errorf("%w: email must be a valid address", ErrValidation)
	}
	if strings.TrimSpace(p.ProblemName) == "" {
		return fmt.Errorf("%w: problemName is required", ErrValidation)
	}
	if strings.TrimSpace(p.ProblemLink) == "" {
		return fmt.Errorf("%w: problemLink is required", ErrValidation)
	}
	if u, err := url.Parse(p.ProblemLink); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: problemLink must be an absolute http(s) URL", ErrValidation)
	}
	if p.TimeInDays < 1 || p.TimeInDays > MaxReminderDays {
		return fmt.Errorf("%w: timeInDays must be between 1 and %d", ErrValidation, MaxReminderDays)
	}
	return nil
}

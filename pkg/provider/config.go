package provider

import (
	"fmt"
	"strings"
)

// Config holds the static outbound channel configuration. The Postmark
// token and SMTP account list decide the ring shape at startup; they never
// change for the process lifetime.
type Config struct {
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN"`
	SenderEmail         string `env:"SENDER_EMAIL,required"`
	PostmarkCeiling     int    `env:"POSTMARK_DAILY_CEILING" envDefault:"100"`

	SMTPHost     string   `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPAccounts []string `env:"SMTP_ACCOUNTS" envSeparator:","`
	SMTPCeiling  int      `env:"SMTP_DAILY_CEILING" envDefault:"500"`

	// DevMailDir enables the file-drop channel when no Postmark token is
	// configured, so local development works without credentials.
	DevMailDir string `env:"DEV_MAIL_DIR" envDefault:"./tmp/mail"`
}

// ParseAccounts splits "user:password" pairs from SMTPAccounts.
func (c Config) ParseAccounts() ([]SMTPAccount, error) {
	accounts := make([]SMTPAccount, 0, len(c.SMTPAccounts))
	for _, raw := range c.SMTPAccounts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		user, pass, ok := strings.Cut(raw, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("%w: smtp account %q must be in user:password form", ErrInvalidConfig, raw)
		}
		accounts = append(accounts, SMTPAccount{Username: user, Password: pass})
	}
	return accounts, nil
}

// NewRingFromConfig assembles the provider ring: Postmark (or the dev
// channel when no token is set) first, then one channel per SMTP account.
func NewRingFromConfig(cfg Config) (*Ring, error) {
	var channels []Channel

	if cfg.PostmarkServerToken != "" {
		primary, err := NewPostmarkChannel(cfg.PostmarkServerToken, cfg.SenderEmail, cfg.PostmarkCeiling)
		if err != nil {
			return nil, err
		}
		channels = append(channels, primary)
	} else {
		channels = append(channels, NewDevChannel(cfg.DevMailDir, cfg.PostmarkCeiling))
	}

	accounts, err := cfg.ParseAccounts()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		ch, err := NewSMTPChannel(cfg.SMTPHost, cfg.SMTPPort, acc, cfg.SMTPCeiling)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	return NewRing(channels...)
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// SMTPChannel sends through one credentialed SMTP account. Each account in
// the ring is its own channel with its own quota counter.
type SMTPChannel struct {
	host     string
	port     int
	username string
	password string
	sender   string
	ceiling  int
	timeout  time.Duration

	// sendMail is swappable for tests; defaults to smtp.SendMail with
	// PLAIN auth over STARTTLS (port 587 semantics).
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPAccount holds one account's credentials and identity.
type SMTPAccount struct {
	Username string
	Password string
}

// NewSMTPChannel creates a channel for one SMTP account. The account's
// username doubles as the envelope sender, which is what individual
// credentialed mail accounts require.
func NewSMTPChannel(host string, port int, account SMTPAccount, ceiling int) (*SMTPChannel, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", ErrInvalidConfig)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: invalid smtp port %d", ErrInvalidConfig, port)
	}
	if account.Username == "" || account.Password == "" {
		return nil, fmt.Errorf("%w: smtp account credentials are required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(account.Username) {
		return nil, fmt.Errorf("%w: smtp username must be an email address", ErrInvalidConfig)
	}
	if ceiling <= 0 {
		return nil, fmt.Errorf("%w: ceiling must be positive, got %d", ErrInvalidConfig, ceiling)
	}

	return &SMTPChannel{
		host:     host,
		port:     port,
		username: account.Username,
		password: account.Password,
		sender:   account.Username,
		ceiling:  ceiling,
		timeout:  30 * time.Second,
		sendMail: smtp.SendMail,
	}, nil
}

// Name returns "smtp:<account>" so quota counters stay stable per account.
func (c *SMTPChannel) Name() string {
	return "smtp:" + c.username
}

func (c *SMTPChannel) Ceiling() int { return c.ceiling }

func (c *SMTPChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	payload := c.buildMessage(msg)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	// net/smtp has no context support; run the send in a goroutine and
	// honour cancellation and the per-send timeout here.
	done := make(chan error, 1)
	go func() {
		done <- c.sendMail(addr, auth, c.sender, []string{msg.To}, payload)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case err := <-done:
		if err != nil {
			return errors.Join(ErrTransport, err)
		}
		return nil
	case <-ctx.Done():
		return errors.Join(ErrTransport, ctx.Err())
	}
}

// buildMessage assembles RFC 5322 headers plus the HTML body.
func (c *SMTPChannel) buildMessage(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + c.sender + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.BodyHTML)
	return []byte(b.String())
}

package mailbody

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidLink is returned when the problem link is not an absolute
// http(s) URL.
var ErrInvalidLink = errors.New("link must be an absolute http or https URL")

const reminderTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, Helvetica, sans-serif; color: #222; max-width: 600px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #2c3e50;">Time to revisit: {{.ProblemName}}</h2>
  <p>You asked to be reminded about this problem {{.DaysLabel}}.</p>
  <p style="margin: 24px 0;">
    <a href="{{.ProblemLink}}" style="background: #2c3e50; color: #fff; padding: 12px 20px; text-decoration: none; border-radius: 4px;">Open the problem</a>
  </p>
{{- if .Notes}}
  <p style="background: #f6f8fa; border-left: 4px solid #2c3e50; padding: 12px;"><strong>Your notes:</strong><br>{{.Notes}}</p>
{{- end}}
  <p style="color: #888; font-size: 12px; margin-top: 32px;">This reminder was scheduled by you. No action is needed if you have already solved it.</p>
</body>
</html>
`

var reminderTmpl = template.Must(template.New("reminder").Parse(reminderTemplate))

type reminderData struct {
	ProblemName string
	ProblemLink string
	DaysLabel   string
	Notes       string
}

// Render produces the HTML body of a reminder email. The name and notes
// are escaped; the link must be an absolute http(s) URL so stored payloads
// cannot inject script-scheme anchors.
func Render(name, link string, days int, notes string) (string, error) {
	if err := validateLink(link); err != nil {
		return "", err
	}

	var sb strings.Builder
	err := reminderTmpl.Execute(&sb, reminderData{
		ProblemName: name,
		ProblemLink: link,
		DaysLabel:   daysLabel(days),
		Notes:       notes,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Subject builds the subject line for a reminder email.
func Subject(name string) string {
	return "Reminder: revisit " + name
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return errors.Join(ErrInvalidLink, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidLink
	}
	return nil
}

func daysLabel(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day ago"
	default:
		return strconv.Itoa(days) + " days ago"
	}
}

package reminder

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/models"

	"github.com/go-mail/mail/v2"
)

const digestTemplate = `
{{define "subject"}}Task reminder: {{len .Todos}} task(s) on your list{{end}}

{{define "plainBody"}}Hi,

Here is your current task list:
{{range .Todos}}
- {{.Title}}{{if not .IsOpen}} (closed){{end}}{{if .Deadline}} — due {{.Deadline.Format "Jan 2, 2006 15:04"}}{{end}}
{{- end}}

Task Tracker
{{end}}

{{define "htmlBody"}}<html>
<body>
<p>Hi,</p>
<p>Here is your current task list:</p>
<ul>
{{range .Todos}}<li>{{.Title}}{{if not .IsOpen}} (closed){{end}}{{if .Deadline}} &mdash; due {{.Deadline.Format "Jan 2, 2006 15:04"}}{{end}}</li>
{{end}}</ul>
<p>Task Tracker</p>
</body>
</html>{{end}}
`

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// MailNotifier emails each task owner a digest of their tasks over SMTP.
type MailNotifier struct {
	dialer dialer
	sender string
	tmpl   *template.Template
}

func NewMailNotifier(cfg config.SMTPConfig) *MailNotifier {
	return &MailNotifier{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
		tmpl:   template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

type digestData struct {
	Todos []models.ReminderRow
}

func (n *MailNotifier) Notify(ctx context.Context, payload Payload) (string, error) {
	byOwner := make(map[string][]models.ReminderRow)
	for _, row := range payload.Todos {
		byOwner[row.UserEmail] = append(byOwner[row.UserEmail], row)
	}

	sent := 0
	var lastErr error
	for email, todos := range byOwner {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if err := n.send(email, digestData{Todos: todos}); err != nil {
			lastErr = fmt.Errorf("failed to mail %s: %w", email, err)
			continue
		}
		sent++
	}

	if lastErr != nil && sent == 0 {
		return "", lastErr
	}

	ack := fmt.Sprintf("sent %d of %d reminder emails", sent, len(byOwner))
	if lastErr != nil {
		ack += fmt.Sprintf(" (last failure: %v)", lastErr)
	}
	return ack, nil
}

func (n *MailNotifier) send(to string, data digestData) error {
	var subject bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return err
	}
	var plainBody bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return err
	}
	var htmlBody bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", n.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	var err error
	for i := 0; i < 3; i++ {
		err = n.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}

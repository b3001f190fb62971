package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Mail(ctx context.Context, toEmail, toName, subject, plain, html string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
}

func NewSendGridMailer(apiKey, fromAddr, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

func (m *SendGridMailer) Mail(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.fromAddr),
		subject,
		mail.NewEmail(toName, toEmail),
		plain,
		html,
	)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

var emailLayout = template.Must(template.New("email").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #2f855a; margin-top: 0;">{{.Heading}}</h2>
		{{if .Name}}<p>Hi <strong>{{.Name}}</strong>,</p>{{end}}
		<p>{{.Body}}</p>
		{{if .Code}}<p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>{{end}}
		{{if .Link}}<div style="margin: 24px 0;">
			<a href="{{.Link}}" style="background: #2f855a; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Open {{.App}}</a>
		</div>{{end}}
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— {{.App}}</p>
	</div>
</body>
</html>`))

type emailContent struct {
	Heading string
	Name    string
	Body    string
	Code    string
	Link    string
	App     string
}

func renderEmail(content emailContent) (string, error) {
	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, content); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"beam/pkg/email"
)

// Sender delivers a verification link to an address.
type Sender interface {
	Send(ctx context.Context, to string, link string) error
}

// LogSender writes the link to the log. Default for local development, where
// no SendGrid key is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to string, link string) error {
	s.Logger.InfoContext(ctx, "verification email (log sender)", "to", to, "link", link)
	return nil
}

// SendgridSender delivers the link through the SendGrid API.
type SendgridSender struct {
	client *sendgrid.Client
	from   string
}

func NewSendgridSender(apiKey, from string) *SendgridSender {
	return &SendgridSender{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (s *SendgridSender) Send(ctx context.Context, to string, link string) error {
	first, _ := email.DeriveNameFromEmail(to)
	msg := mail.NewSingleEmail(
		mail.NewEmail("Beam", s.from),
		"Verify your email address",
		mail.NewEmail(first, to),
		fmt.Sprintf("Hi %s,\n\nPlease confirm your email address to continue registration:\n\n%s\n", first, link),
		fmt.Sprintf(`<p>Hi %s,</p><p>Please confirm your email address to continue registration:</p><p><a href=%q>Verify email</a></p>`, first, link),
	)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

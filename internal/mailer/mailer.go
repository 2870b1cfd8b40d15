// Package mailer delivers notification emails.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tickbug-backend/internal/config"
)

// Message is one email to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport attempts delivery of a message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the transport selected by MAIL_TRANSPORT.
func New(cfg *config.Config, logger *slog.Logger) (Transport, error) {
	switch cfg.MailTransport {
	case config.MailLog, "":
		return NewLogTransport(logger), nil
	case config.MailResend:
		return NewResendTransport(cfg.ResendAPIKey, cfg.MailFrom, &http.Client{Timeout: 15 * time.Second}), nil
	case config.MailSMTP:
		return NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom), nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info("email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}

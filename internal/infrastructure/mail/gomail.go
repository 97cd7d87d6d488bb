package mail

import (
	"context"
	"fmt"

	"github.com/stashway/stashway-backend/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const senderName = "Stashway"

// Dialer is the part of gomail.Dialer used for delivery
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer implements provider.Mailer over SMTP
type SMTPMailer struct {
	dialer Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer from the email config section
func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	return NewSMTPMailerWithDialer(
		gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		cfg.From,
		logger,
	)
}

func NewSMTPMailerWithDialer(dialer Dialer, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: dialer,
		from:   from,
		logger: logger,
	}
}

// Send delivers one plain-text message to all recipients.
// gomail has no context support, so ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, senderName))
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent",
		zap.Int("recipients", len(recipients)),
		zap.String("subject", subject))
	return nil
}

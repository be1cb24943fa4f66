package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"subtrack/internal/config"

	"github.com/wneessen/go-mail"
)

// EmailMessage is the payload handed to the email collaborator.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends one outbound email per call. No internal retry; a
// delivery failure surfaces to the caller.
type Mailer interface {
	Send(ctx context.Context, message EmailMessage) error
}

type smtpMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds a Mailer over an SMTP transport. The delivery
// timeout lives on the client; callers add none of their own.
func NewSMTPMailer(cfg config.SMTPConfig) (Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &smtpMailer{client: client, from: cfg.From}, nil
}

func (s *smtpMailer) Send(ctx context.Context, message EmailMessage) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat("Subscription Tracker", s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Text)
	if message.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs the message. Used in
// development when no SMTP transport is configured.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(_ context.Context, message EmailMessage) error {
	log.Printf("[EMAIL] To=%s, Subject=%s, Body=%s", message.To, message.Subject, message.Text)
	return nil
}

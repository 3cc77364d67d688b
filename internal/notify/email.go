// Package notify renders and sends the booking confirmation emails. The
// transport is a configuration-selected strategy behind EmailSender,
// never chosen implicitly inside business logic.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/scailer-io/booking-service/pkg/logging"
)

// EmailSender delivers one message and returns the provider's message
// identifier. Implementations can be swapped (SMTP, SendGrid, SES,
// sandbox) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (messageID string, err error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // HTML body
}

// SendGridSender sends emails via the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a SendGrid email sender. Returns nil when no
// API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Scailer Booking"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	messageID := firstHeader(response.Headers, "X-Message-Id")
	if messageID == "" {
		messageID = uuid.NewString()
	}
	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "message_id", messageID)
	return messageID, nil
}

func firstHeader(headers map[string][]string, key string) string {
	if values, ok := headers[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// StubSender logs instead of sending. It replaces the original's silent
// fallback to a throwaway test mailbox and is rejected by config
// validation in production.
type StubSender struct {
	logger *logging.Logger
}

func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

func (s *StubSender) Send(_ context.Context, msg EmailMessage) (string, error) {
	messageID := uuid.NewString()
	s.logger.Info("stub email sender: would send email",
		"to", msg.To,
		"subject", msg.Subject,
		"message_id", messageID,
	)
	return messageID, nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubSender)(nil)
)

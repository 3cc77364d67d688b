package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	"github.com/scailer-io/booking-service/pkg/logging"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host string
	Port int
	// Secure enables implicit TLS (port 465 style). When false the
	// sender upgrades with STARTTLS if the server offers it.
	Secure    bool
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPSender sends emails over a plain SMTP transport, mirroring the
// original deployment's app-password Gmail setup.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger
}

// NewSMTPSender creates an SMTP email sender. Returns nil when the
// account credentials are not configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Scailer Booking"
	}
	// App passwords are often pasted with grouping spaces.
	cfg.Password = strings.ReplaceAll(cfg.Password, " ", "")
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Verify probes connectivity and authentication once, at service
// startup rather than lazily at the first booking.
func (s *SMTPSender) Verify(ctx context.Context) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Noop(); err != nil {
		return fmt.Errorf("notify: smtp verify failed: %w", err)
	}
	s.logger.Info("smtp connection verified", "host", s.cfg.Host, "port", s.cfg.Port)
	return client.Quit()
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Mail(s.cfg.FromEmail); err != nil {
		return "", fmt.Errorf("notify: smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("notify: smtp RCPT failed: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("notify: smtp DATA failed: %w", err)
	}
	if _, err := w.Write(s.buildMessage(msg, messageID)); err != nil {
		return "", fmt.Errorf("notify: smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("notify: smtp delivery failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Warn("smtp quit failed", "error", err)
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject, "message_id", messageID)
	return messageID, nil
}

// connect dials the server, upgrades to TLS and authenticates. The
// context deadline bounds the whole exchange.
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if s.cfg.Secure {
		conn = tls.Client(conn, &tls.Config{ServerName: s.cfg.Host})
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: smtp handshake: %w", err)
	}

	if !s.cfg.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("notify: smtp starttls: %w", err)
			}
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("notify: smtp auth: %w", err)
		}
	}
	return client, nil
}

// buildMessage assembles a multipart/alternative MIME message with the
// plain-text and HTML bodies. The boundary is randomly generated so no
// body content can collide with it.
func (s *SMTPSender) buildMessage(msg EmailMessage, messageID string) []byte {
	var b bytes.Buffer
	alt := multipart.NewWriter(&b)

	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.FromEmail)
	if msg.ToName != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", alt.Boundary())
	b.WriteString("\r\n")

	// Writes into a bytes.Buffer cannot fail.
	part, _ := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	part.Write([]byte(msg.Body))

	part, _ = alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	part.Write([]byte(msg.HTML))

	alt.Close()
	return b.Bytes()
}

var _ EmailSender = (*SMTPSender)(nil)

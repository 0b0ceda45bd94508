package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPSettings configure the outgoing mail server.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// Encryption is "ssl", "tls"/"starttls" or empty for none.
	Encryption string
}

// MailSender sends a plain-text message.
type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type smtpSender struct {
	sender string
	dialer *gomail.Dialer
	logger *logger.Logger
}

func NewSMTPSender(s SMTPSettings, log *logger.Logger) (MailSender, error) {
	if s.Host == "" || s.Port == 0 || s.Sender == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}
	if log == nil {
		log = logger.NewNop()
	}

	dialer := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	switch strings.ToLower(s.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	case "tls", "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	}

	return &smtpSender{sender: s.Sender, dialer: dialer, logger: log.Named("SMTPSender")}, nil
}

func (s *smtpSender) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients provided for email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.sender)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.logger.Debug("Email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

// RecipientResolver maps a notification to e-mail addresses.
type RecipientResolver interface {
	Recipients(ctx context.Context, n entities.Notification) ([]string, error)
}

// StaticRecipients sends every notification to a fixed list, e.g. an operations inbox.
type StaticRecipients []string

func (s StaticRecipients) Recipients(context.Context, entities.Notification) ([]string, error) {
	return s, nil
}

// EmailChannel e-mails each notification to the addresses its resolver returns.
type EmailChannel struct {
	sender     MailSender
	recipients RecipientResolver
}

func NewEmailChannel(sender MailSender, recipients RecipientResolver) *EmailChannel {
	return &EmailChannel{sender: sender, recipients: recipients}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, n entities.Notification) error {
	to, err := c.recipients.Recipients(ctx, n)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(to) == 0 {
		return nil
	}
	subject, body := composeEmail(n)
	return c.sender.Send(ctx, to, subject, body)
}

var emailSubjects = map[entities.NotificationKind]string{
	entities.NotificationNewRequest: "New service request",
	entities.NotificationAccepted:   "Your service request was accepted",
	entities.NotificationRejected:   "Your service request was rejected",
	entities.NotificationCancelled:  "A service request was cancelled",
	entities.NotificationCompleted:  "Your service request was completed",
}

func composeEmail(n entities.Notification) (string, string) {
	subject, ok := emailSubjects[n.Kind]
	if !ok {
		subject = "Service request update"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", n.RequestID)
	fmt.Fprintf(&b, "State: %s\n", n.State)
	fmt.Fprintf(&b, "Recipient: %s #%d\n", n.RecipientRole, n.RecipientID)
	if !n.ServiceDate.IsZero() {
		fmt.Fprintf(&b, "Service date: %s\n", n.ServiceDate.UTC().Format("2006-01-02 15:04"))
	}
	if n.DescriptionPreview != "" {
		fmt.Fprintf(&b, "Description: %s\n", n.DescriptionPreview)
	}
	return subject, b.String()
}

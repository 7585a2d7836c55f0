package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Crowley723/site-monitor/config"
	"github.com/wneessen/go-mail"
)

// SMTPSender delivers mail through an SMTP relay, upgrading with STARTTLS
// when the server offers it.
type SMTPSender struct {
	host     string
	port     int
	from     string
	username string
	password string
}

func NewSMTPSender(cfg config.EmailAlertConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	msg, err := newMessage(s.from, recipient, subject, body, time.Now())
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password))
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// newMessage builds a plain-text message. Header values are encoded by
// go-mail, so names containing line breaks or non-ASCII text stay inside
// their header.
func newMessage(from, to, subject, body string, at time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(at)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// LogSender only logs the email. Used when no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.logger.Info("email (log only)", "recipient", recipient, "subject", subject, "body", body)
	return nil
}

// NewSender picks the SMTP sender when a relay host is configured.
func NewSender(cfg config.EmailAlertConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}

// SettingsFromConfig seeds the runtime email settings from alert.email.
func SettingsFromConfig(cfg config.EmailAlertConfig) EmailSettings {
	return EmailSettings{
		Enabled:                  cfg.Enabled,
		Recipient:                cfg.Recipient,
		NotificationDelayMinutes: cfg.NotificationDelayDuration().Minutes(),
	}
}

// Package mail delivers the OTP verification mails.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPSender sends HTML mail through an SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *zap.SugaredLogger
}

// NewSMTPSender creates a sender. Authentication is used only when a
// username is set.
func NewSMTPSender(host string, port int, username, password, from string, logger *zap.SugaredLogger) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password, from: from, logger: logger}
}

func (s *SMTPSender) message(to, subject, htmlBody string) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return m, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m, err := s.message(to, subject, htmlBody)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Infow("Mail sent", "subject", subject)
	return nil
}

// LogSender writes mails to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.logger.Warnw("SMTP not configured, mail not delivered",
		"to", to,
		"subject", subject,
		"body", htmlBody,
	)
	return nil
}

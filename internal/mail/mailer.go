// Package mail delivers outbound notification mail.
package mail

import (
	"context"
	"fmt"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"

	gomail "github.com/wneessen/go-mail"
)

type Message struct {
	To      string
	Subject string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a log mailer when no SMTP host is configured.
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.User),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", m.cfg.Host, err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// buildMessage renders a plain-text message with Date and Message-ID set; headers are
// encoded as UTF-8 where needed.
func buildMessage(from string, msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail to %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()
	out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	return out, nil
}

// LogMailer writes mail to the log; used in development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Noticef("mail to %s: %s\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}

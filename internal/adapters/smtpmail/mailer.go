// Package smtpmail sends transactional email over SMTP.
package smtpmail

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/mailer"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address, e.g. "results@cascaderando.org".
	From string
	// FromName is the display name on the sender address.
	FromName string
}

type Mailer struct {
	client *mail.Client
	cfg    Config
}

var _ mailer.Mailer = (*Mailer)(nil)

func NewMailer(cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, cfg: cfg}, nil
}

func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	out := mail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := out.AddToFormat(msg.ToName, msg.To); err != nil {
		return fmt.Errorf("set recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send to %q: %w", msg.To, err)
	}
	return nil
}

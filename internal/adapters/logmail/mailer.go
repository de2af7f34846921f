// Package logmail logs outgoing email instead of sending it. It is the
// development default so local runs never need SMTP credentials.
package logmail

import (
	"context"
	"log"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/mailer"
)

type Mailer struct {
	logger *log.Logger
}

var _ mailer.Mailer = (*Mailer)(nil)

func NewMailer(logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.Default()
	}
	return &Mailer{logger: logger}
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	m.logger.Printf("mail: to=%q (%s) subject=%q\n%s", msg.To, msg.ToName, msg.Subject, msg.TextBody)
	return nil
}

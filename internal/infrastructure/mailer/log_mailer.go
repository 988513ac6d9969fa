package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes emails to the application log instead of sending them.
// Intended for local development.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{
		"to":      msg.ToEmail,
		"subject": msg.Subject,
	}).Infof("[DEV MAIL]\n%s", msg.Text)
	return nil
}

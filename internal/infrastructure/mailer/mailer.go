package mailer

import (
	"context"
	"fmt"

	"health-program-api/config"

	"github.com/sirupsen/logrus"
)

// Message is a rendered email ready for delivery.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const (
	ProviderLog        = "log"
	ProviderSMTP       = "smtp"
	ProviderMailerSend = "mailersend"
)

// New selects the delivery backend from cfg.Provider.
func New(cfg config.EmailConfig, log *logrus.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "", ProviderLog:
		return NewLogMailer(log), nil
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for the smtp email provider")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.FromEmail, cfg.FromName, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPUseTLS), nil
	case ProviderMailerSend:
		if cfg.MailerSendKey == "" {
			return nil, fmt.Errorf("MAILERSEND_API_KEY is required for the mailersend email provider")
		}
		return NewMailerSendMailer(cfg.MailerSendKey, cfg.FromName, cfg.FromEmail), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

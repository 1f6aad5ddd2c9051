package mailer

import (
	"fmt"

	"github.com/rs/zerolog"

	"emailscheduler/internal/config"
)

// New builds the transport selected by cfg.Transport.
func New(cfg config.MailConfig, logger zerolog.Logger) (Sender, error) {
	switch cfg.Transport {
	case config.MailSMTP:
		return NewSMTPSender(SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.SendTimeout,
		})
	case config.MailWebhook:
		return NewWebhookSender(WebhookOptions{
			URL:     cfg.WebhookURL,
			AuthKey: cfg.WebhookKey,
			Timeout: cfg.SendTimeout,
		})
	case config.MailLog:
		return NewLogSender(logger), nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}

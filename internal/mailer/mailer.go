// Package mailer delivers dispatched events through a pluggable transport.
package mailer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Message is one outgoing mail addressed to every recipient at once.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	// Key identifies the logical delivery; transports that support
	// idempotency forward it.
	Key string
}

// Sender is the interface every mail transport implements.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipients is returned for a message with an empty To list.
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender builds a LogSender writing to logger.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mailer").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	s.logger.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.Body)).
		Msg("mail not delivered, log transport")
	return nil
}

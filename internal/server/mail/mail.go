// Package mail delivers the password reset messages.
package mail

import (
	"context"

	"github.com/dmitrijs2005/studenthub/internal/logging"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleMailer writes messages to the log instead of sending them. It is
// the development default.
type ConsoleMailer struct {
	log logging.Logger
}

func NewConsoleMailer(log logging.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log.With("component", "mail")}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info(ctx, "mail not sent, console provider", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}

package notification

import (
	"context"
	"errors"
)

// ErrRenderFailed is joined with the template error when an email cannot be rendered.
var ErrRenderFailed = errors.New("render email failed")

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTMLContent string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// Settings controls whether and how emails are produced.
type Settings struct {
	EmailsEnabled bool
	ProjectName   string
	FrontendHost  string
}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
}

// LogSender is a Sender that logs each message instead of delivering it.
type LogSender struct {
	logger Logger
}

// NewLogSender creates a LogSender writing to logger.
func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, message Message) error {
	s.logger.InfoContext(ctx, "email sent", "to", message.To, "subject", message.Subject, "html_bytes", len(message.HTMLContent))
	return nil
}

package testdoubles

import (
	"context"
	"sync"

	"github.com/TomasJani/bookshelf/notification"
)

// SenderSpy records every message instead of delivering it. Err, if set, is returned from Send.
type SenderSpy struct {
	mu   sync.Mutex
	sent []notification.Message
	Err  error
}

// NewSenderSpy creates an empty SenderSpy.
func NewSenderSpy() *SenderSpy {
	return &SenderSpy{}
}

func (s *SenderSpy) Send(_ context.Context, message notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, message)

	return s.Err
}

// Sent returns a copy of the recorded messages.
func (s *SenderSpy) Sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notification.Message, len(s.sent))
	copy(out, s.sent)

	return out
}

var _ notification.Sender = (*SenderSpy)(nil)

package mailer

import (
	"context"
	"sync"
)

// SentMail records one delivered message.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer captures messages in memory for tests.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// FailWith, when set, makes every Send return this error.
	FailWith error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

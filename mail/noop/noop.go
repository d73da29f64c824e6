package noop

import (
	"context"
	"sync"

	"github.com/pure-golang/resume-mailer/mail"
)

var (
	_ mail.Dialer  = (*Dialer)(nil)
	_ mail.Session = (*Session)(nil)
)

// Dialer opens sessions that accept and discard every message.
// It counts what it sees, which makes it useful in unit tests.
type Dialer struct {
	mx        sync.Mutex
	opened    int
	submitted []mail.Email
}

// NewDialer creates a new no-op Dialer.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Open returns a new no-op session.
func (d *Dialer) Open(_ context.Context, _ mail.Credentials) (mail.Session, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	d.opened++
	return &Session{dialer: d}, nil
}

// Opened returns the number of sessions opened so far.
func (d *Dialer) Opened() int {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.opened
}

// Submitted returns a copy of all messages submitted through the dialer's sessions.
func (d *Dialer) Submitted() []mail.Email {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]mail.Email(nil), d.submitted...)
}

// Session is a no-op mail session.
type Session struct {
	dialer *Dialer
	mx     sync.Mutex
	closed bool
}

// Submit silently discards the email.
func (s *Session) Submit(_ context.Context, email mail.Email) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed {
		return mail.ErrSessionClosed
	}

	s.dialer.mx.Lock()
	s.dialer.submitted = append(s.dialer.submitted, email)
	s.dialer.mx.Unlock()
	return nil
}

// Close is a no-op.
func (s *Session) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.closed = true
	return nil
}

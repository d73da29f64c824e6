package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/pure-golang/resume-mailer/mail"
)

// scriptedSession fails or blocks per recipient and records what it accepted.
type scriptedSession struct {
	mx       sync.Mutex
	behavior map[string]func(ctx context.Context) error
	sent     []string
	closed   int
}

func newScriptedSession() *scriptedSession {
	return &scriptedSession{behavior: map[string]func(ctx context.Context) error{}}
}

func (s *scriptedSession) on(recipient string, fn func(ctx context.Context) error) *scriptedSession {
	s.behavior[recipient] = fn
	return s
}

func (s *scriptedSession) Submit(ctx context.Context, email mail.Email) error {
	recipient := email.To[0].Address
	if fn, ok := s.behavior[recipient]; ok {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	s.sent = append(s.sent, recipient)
	return nil
}

func (s *scriptedSession) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.closed++
	return nil
}

func (s *scriptedSession) sentTo() []string {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]string(nil), s.sent...)
}

func (s *scriptedSession) closeCount() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.closed
}

type fakeDialer struct {
	mx      sync.Mutex
	session *scriptedSession
	err     error
	opened  int
	creds   []mail.Credentials
}

func (d *fakeDialer) Open(_ context.Context, creds mail.Credentials) (mail.Session, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.opened++
	d.creds = append(d.creds, creds)
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

func (d *fakeDialer) openCount() int {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.opened
}

// sleepRecorder counts pacing delays without waiting.
type sleepRecorder struct {
	mx        sync.Mutex
	durations []time.Duration
}

func (r *sleepRecorder) sleeper() Sleeper {
	return func(d time.Duration) {
		r.mx.Lock()
		defer r.mx.Unlock()
		r.durations = append(r.durations, d)
	}
}

func (r *sleepRecorder) count() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.durations)
}

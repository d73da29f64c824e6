package smtp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/resume-mailer/mail"
)

var _ mail.Session = (*Session)(nil)

// Session implements mail.Session over a single SMTP connection.
// mx serialises transactions. Close reads closed without taking mx.
type Session struct {
	mx     sync.Mutex
	cfg    Config
	conn   net.Conn
	client *smtp.Client
	logger *slog.Logger
	closed atomic.Bool
}

// Submit sends one message over the session connection.
// A failed transaction is reset so the connection stays usable.
func (s *Session) Submit(ctx context.Context, email mail.Email) error {
	ctx, span := tracer.Start(ctx, "SMTP.Submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("smtp.from", email.From.Address),
		attribute.String("smtp.subject", email.Subject),
		attribute.Int("smtp.to_count", len(email.To)),
		attribute.Int("smtp.attachments_count", len(email.Attachments)),
		attribute.Int64("smtp.attachments_size", email.Size()),
	)

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed.Load() {
		span.SetStatus(codes.Error, "session is closed")
		return mail.ErrSessionClosed
	}

	from := email.From.Address
	if from == "" {
		return mail.ErrNoSender
	}
	to := getEmailAddresses(email.To)
	if len(to) == 0 {
		return mail.ErrNoRecipients
	}

	s.extendDeadline()

	if err := s.transaction(from, to, buildMessage(email)); err != nil {
		recordError(span, err, err.Error())
		s.reset()
		messagesSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
		return err
	}

	messagesSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "sent")))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Session) transaction(from string, to []string, msg io.WriterTo) error {
	if err := s.client.Mail(from); err != nil {
		return errors.Wrap(err, "failed to set sender")
	}

	for _, addr := range to {
		if err := s.client.Rcpt(addr); err != nil {
			return errors.Wrapf(err, "failed to set recipient: %s", addr)
		}
	}

	writer, err := s.client.Data()
	if err != nil {
		return errors.Wrap(err, "failed to get data writer")
	}

	if _, err := msg.WriteTo(writer); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "failed to write message")
	}

	// The server accepts or rejects the message in reply to the final dot.
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "message rejected")
	}

	return nil
}

// reset aborts the current mail transaction. A failed RSET closes the
// session and later submissions get mail.ErrSessionClosed.
func (s *Session) reset() {
	if err := s.client.Reset(); err != nil {
		s.logger.Warn("failed to reset smtp transaction, dropping session", "error", err.Error())
		if s.closed.CompareAndSwap(false, true) {
			_ = s.conn.Close()
		}
	}
}

func (s *Session) extendDeadline() {
	if s.cfg.IOTimeout <= 0 {
		return
	}
	if err := s.conn.SetDeadline(time.Now().Add(s.cfg.IOTimeout)); err != nil {
		s.logger.Debug("failed to extend connection deadline", "error", err.Error())
	}
}

// Close sends QUIT and closes the connection. Safe to call more than once.
// When a submission is still in flight the connection is dropped without
// QUIT and the pending Submit fails.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	if !s.mx.TryLock() {
		s.logger.Debug("closing smtp session with a submission in flight")
		if err := s.conn.Close(); err != nil {
			return errors.Wrap(err, "failed to abort SMTP session")
		}
		return nil
	}
	defer s.mx.Unlock()

	s.extendDeadline()
	if err := s.client.Quit(); err != nil {
		// QUIT failed, the server may already be gone. Drop the connection anyway.
		_ = s.client.Close()
		return errors.Wrap(err, "failed to quit SMTP session")
	}
	return nil
}

// getEmailAddresses extracts email addresses from mail.Address slice.
func getEmailAddresses(addrs []mail.Address) []string {
	result := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr.Address != "" {
			result = append(result, addr.Address)
		}
	}
	return result
}

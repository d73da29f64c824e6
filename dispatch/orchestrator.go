package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pure-golang/resume-mailer/compose"
	"github.com/pure-golang/resume-mailer/logger"
	"github.com/pure-golang/resume-mailer/mail"
)

// Defaults used when Config leaves a value unset.
const (
	DefaultTimeout = 8 * time.Second
	DefaultDelay   = 1 * time.Second
)

// Config controls batch pacing.
type Config struct {
	Timeout      time.Duration `envconfig:"MAILER_SEND_TIMEOUT" default:"8s"`  // per message
	Delay        time.Duration `envconfig:"MAILER_SEND_DELAY" default:"1s"`    // between messages
	BatchTimeout time.Duration `envconfig:"MAILER_BATCH_TIMEOUT" default:"0s"` // 0 means unbounded
}

// Template is the message shared by every recipient of a batch.
type Template struct {
	From        mail.Address
	Subject     string
	Body        string
	Attachments []mail.Attachment
}

// For returns the message addressed to a single recipient.
func (t Template) For(recipient string) mail.Email {
	return mail.Email{
		From:        t.From,
		To:          []mail.Address{{Address: recipient}},
		Subject:     t.Subject,
		Body:        t.Body,
		Attachments: t.Attachments,
	}
}

// Sleeper waits between two submissions.
type Sleeper func(d time.Duration)

// Orchestrator sends a template to a recipient list one message at a time.
type Orchestrator struct {
	cfg   Config
	sleep Sleeper
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper replaces time.Sleep as the pacing primitive.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) {
		o.sleep = s
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config, opts ...Option) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	o := &Orchestrator{
		cfg:   cfg,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run submits one message per recipient through session, strictly in order.
//
// Each submission races a timer of cfg.Timeout. A failed or timed out
// recipient is recorded and the loop moves on. A fixed delay separates
// consecutive submissions; there is none before the first or after the last.
// Run never closes the session.
func (o *Orchestrator) Run(ctx context.Context, session mail.Session, tmpl Template, recipients compose.Recipients) Result {
	start := time.Now()
	log := logger.FromContext(ctx)

	var deadline time.Time
	if o.cfg.BatchTimeout > 0 {
		deadline = start.Add(o.cfg.BatchTimeout)
	}

	outcomes := make([]Outcome, 0, len(recipients))
	for i, recipient := range recipients {
		if !deadline.IsZero() && time.Now().After(deadline) {
			outcomes = o.record(ctx, outcomes, Outcome{Recipient: recipient, Status: StatusFailed, Detail: DetailBatchDeadline})
			continue
		}

		outcome := o.submit(ctx, session, tmpl.For(recipient))
		outcomes = o.record(ctx, outcomes, outcome)

		if outcome.Status == StatusSuccess {
			log.Debug("email sent", "recipient", recipient, "index", i)
		} else {
			log.Warn("email failed", "recipient", recipient, "index", i, "error", outcome.Detail)
		}

		if i < len(recipients)-1 {
			o.sleep(o.cfg.Delay)
		}
	}

	result := Summarize(outcomes, time.Since(start))
	batchTimeHist.Record(ctx, result.Elapsed.Milliseconds())
	return result
}

func (o *Orchestrator) record(ctx context.Context, outcomes []Outcome, outcome Outcome) []Outcome {
	outcomesCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(outcome.Status))))
	return append(outcomes, outcome)
}

// submit races one submission against the timeout. When the timer wins the
// submission is abandoned, not canceled: it keeps running on a context that
// ignores the caller's cancellation and its result is discarded.
func (o *Orchestrator) submit(ctx context.Context, session mail.Session, email mail.Email) Outcome {
	recipient := email.To[0].Address

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errors.Errorf("panic while sending: %v", r)
			}
		}()
		done <- session.Submit(context.WithoutCancel(ctx), email)
	}()

	timer := time.NewTimer(o.cfg.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return Outcome{Recipient: recipient, Status: StatusFailed, Detail: err.Error()}
		}
		return Outcome{Recipient: recipient, Status: StatusSuccess, Detail: DetailSent}
	case <-timer.C:
		return Outcome{Recipient: recipient, Status: StatusFailed, Detail: fmt.Sprintf("Email sending timeout for %s", recipient)}
	}
}

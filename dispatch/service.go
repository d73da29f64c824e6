package dispatch

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pure-golang/resume-mailer/compose"
	"github.com/pure-golang/resume-mailer/events"
	"github.com/pure-golang/resume-mailer/logger"
	"github.com/pure-golang/resume-mailer/mail"
	"github.com/pure-golang/resume-mailer/queue"
)

// Service runs one send request end to end.
type Service struct {
	dialer       mail.Dialer
	orchestrator *Orchestrator
	publisher    queue.Publisher
	limits       compose.Limits
}

// NewService creates a Service. A nil publisher disables batch reports.
func NewService(dialer mail.Dialer, orchestrator *Orchestrator, publisher queue.Publisher, limits compose.Limits) *Service {
	return &Service{
		dialer:       dialer,
		orchestrator: orchestrator,
		publisher:    publisher,
		limits:       limits,
	}
}

// Send validates req, opens one session for the sender and mails every recipient.
//
// Validation and attachment errors are returned before any session is opened.
// Once the session is open Send always returns a Result; per-recipient failures
// are part of it, not of the error.
func (s *Service) Send(ctx context.Context, req compose.Request) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "Dispatch.Send", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := compose.Validate(req, s.limits); err != nil {
		return Result{}, err
	}

	var (
		recipients  compose.Recipients
		attachments []mail.Attachment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		recipients, err = compose.ParseRecipients(req.RecipientsRaw)
		return err
	})
	g.Go(func() (err error) {
		attachments, err = compose.Assemble(gctx, req.Resume, req.Extras)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("recipients", len(recipients)),
		attribute.Int("attachments", len(attachments)),
	)

	session, err := s.dialer.Open(ctx, mail.Credentials{Username: req.Sender, Password: req.Secret})
	if err != nil {
		sessionOpenErrors.Add(ctx, 1)
		return Result{}, errors.Wrap(err, "failed to open mail session")
	}
	defer func() {
		logger.FromContextWithErrIf(ctx, session.Close()).Warn("failed to close mail session")
	}()

	tmpl := Template{
		From:        mail.Address{Address: req.Sender},
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: attachments,
	}
	res = s.orchestrator.Run(ctx, session, tmpl, recipients)

	span.SetAttributes(
		attribute.String("batch_id", res.ID.String()),
		attribute.Int("successful", res.Successful),
		attribute.Int("failed", res.Failed),
	)

	s.report(ctx, req, res)
	return res, nil
}

func (s *Service) report(ctx context.Context, req compose.Request, res Result) {
	if s.publisher == nil {
		return
	}

	records := make([]events.ReportRecord, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		records = append(records, events.ReportRecord{
			Recipient: o.Recipient,
			Status:    string(o.Status),
			Message:   o.Detail,
		})
	}

	err := events.Publish(ctx, s.publisher, events.Report{
		BatchID:     res.ID.String(),
		Account:     req.Sender,
		Subject:     req.Subject,
		Total:       res.Total,
		Successful:  res.Successful,
		Failed:      res.Failed,
		ElapsedMS:   res.Elapsed.Milliseconds(),
		Outcomes:    records,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.FromContextWithErr(ctx, err).Warn("failed to publish batch report", "batch_id", res.ID.String())
	}
}

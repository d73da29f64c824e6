package smtp

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/pure-golang/resume-mailer/mail/smtp"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.GetMeterProvider().Meter(instrumentationName)
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	sessionsOpened, _ = meter.Int64Counter("smtp.sessions_opened")
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	messagesSubmitted, _ = meter.Int64Counter("smtp.messages_submitted")
)

func recordError(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

package dispatch

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/pure-golang/resume-mailer/dispatch"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.GetMeterProvider().Meter(instrumentationName)
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	outcomesCount, _ = meter.Int64Counter("dispatch.outcomes")
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	batchTimeHist, _ = meter.Int64Histogram("dispatch.batch_time", metric.WithUnit("ms"))
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	sessionOpenErrors, _ = meter.Int64Counter("dispatch.session_open_errors")
)

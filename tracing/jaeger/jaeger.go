package jaeger

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/pure-golang/resume-mailer/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

type Config struct {
	EndPoint    string  `envconfig:"TRACING_ENDPOINT"`
	ServiceName string  `envconfig:"SERVICE_NAME" default:"resume-mailer"`
	AppVersion  string  `envconfig:"APP_VERSION" default:"dev"`
	SampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1"`
}

// Provider extends tracesdk.TraceProvider with an OTLP HTTP exporter.
type Provider struct {
	*tracesdk.TracerProvider
}

func (j *Provider) Close() error {
	ctx := context.Background()
	if err := j.ForceFlush(ctx); err != nil {
		// Ensure shutdown is called even if ForceFlush fails
		if shutdownErr := j.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			return errors.Wrap(err, "jaeger force flush failed (also shutdown failed)")
		}
		return errors.Wrap(err, "jaeger force flush failed")
	}

	return errors.Wrap(j.TracerProvider.Shutdown(ctx), "shutdown jaeger")
}

func NewProviderBuilder(conf Config) tracing.ProviderBuilder {
	return func() (tracing.Provider, error) {
		if conf.EndPoint == "" {
			return nil, errors.New("empty connection string")
		}
		if conf.ServiceName == "" {
			return nil, errors.New("service name is empty")
		}

		exp, err := otlptrace.New(
			context.Background(),
			otlptracehttp.NewClient(
				otlptracehttp.WithEndpointURL(conf.EndPoint),
			),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create jaeger instance")
		}

		tp := tracesdk.NewTracerProvider(
			tracesdk.WithBatcher(exp),
			tracesdk.WithResource(resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(conf.ServiceName),
				semconv.ServiceVersionKey.String(conf.AppVersion),
			)),
			tracesdk.WithSampler(sampler(conf.SampleRatio)),
		)

		return &Provider{TracerProvider: tp}, nil
	}
}

func sampler(ratio float64) tracesdk.Sampler {
	if ratio >= 1 {
		return tracesdk.AlwaysSample()
	}
	if ratio <= 0 {
		return tracesdk.NeverSample()
	}
	return tracesdk.ParentBased(tracesdk.TraceIDRatioBased(ratio))
}

// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"io"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Provider interface {
	trace.TracerProvider
	io.Closer
}

// ProviderBuilder wrap all realization details of constructor (ex. config struct)
type ProviderBuilder func() (Provider, error)

// Init installs the provider built by creator. On failure a no-op provider is
// returned together with the error so the caller may continue without traces.
func Init(creator ProviderBuilder) (Provider, error) {
	provider, err := creator()
	if err != nil {
		return NoopProvider{}, errors.Wrapf(err, "failed to load tracing provider")
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider, nil
}

// NoopProvider discards spans.
type NoopProvider struct{ noop.TracerProvider }

func (NoopProvider) Close() error { return nil }

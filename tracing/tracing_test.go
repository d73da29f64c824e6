package tracing

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
)

type sdkProvider struct{ *tracesdk.TracerProvider }

func (p sdkProvider) Close() error { return p.Shutdown(context.Background()) }

func TestInit_Success(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	want := sdkProvider{tracesdk.NewTracerProvider()}
	got, err := Init(func() (Provider, error) { return want, nil })

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want, otel.GetTracerProvider())
	assert.NoError(t, got.Close())
}

func TestInit_FallsBackToNoop(t *testing.T) {
	got, err := Init(func() (Provider, error) { return nil, errors.New("no endpoint") })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load tracing provider")
	assert.IsType(t, NoopProvider{}, got)

	_, span := got.Tracer("test").Start(context.Background(), "op")
	span.End()
	assert.NoError(t, got.Close())
}

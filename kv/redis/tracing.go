package redis

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/pure-golang/resume-mailer/kv/redis")

func startSpan(ctx context.Context, operation, key string, db int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "redis"),
		attribute.Int("db.redis.database_index", db),
	}
	if key != "" {
		attrs = append(attrs, attribute.String("redis.key", key))
	}
	return tracer.Start(ctx, "Redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// finishSpan отмечает результат команды. Промах по ключу ошибкой не считается.
func finishSpan(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, ErrKeyNotFound):
		span.SetAttributes(attribute.Bool("redis.miss", true))
		span.SetStatus(codes.Ok, "")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/resume-mailer/logger"
)

const instrumentationName = "github.com/pure-golang/resume-mailer/httpserver/middleware"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

var (
	meter = otel.GetMeterProvider().Meter(instrumentationName)
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	requestsCount, _ = meter.Int64Counter("http.request_count")
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	requestTimeHist, _ = meter.Int64Histogram("http.request_time", metric.WithUnit("ms"))
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	requestBodyLenHist, _ = meter.Int64Histogram("http.request_body_len", metric.WithUnit("KB"))
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	responseBodyLenHist, _ = meter.Int64Histogram("http.response_body_len", metric.WithUnit("KB"))
	tracer                 = otel.Tracer(instrumentationName)
)

// Monitoring traces incoming http requests, records request metrics and
// attaches a request logger to the context.
//
// Request and response bodies are never read or recorded: send requests
// carry app passwords and resumes. Only their sizes are measured.
func Monitoring(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqTime := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := slog.Default().With("method", r.Method, "path", r.URL.Path, "request_id", requestID)
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			log = log.With("trace_id", traceID)
			w.Header().Set("X-Trace-Id", traceID)
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx = logger.NewContext(ctx, log)
		srw := newStatefulRespWriter(w)

		next.ServeHTTP(srw, r.WithContext(ctx))

		if srw.status == 0 {
			srw.status = http.StatusOK
		}

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("http.request_id", requestID),
			attribute.String("http.user_agent", r.UserAgent()),
			attribute.Int64("http.request_content_length", r.ContentLength),
			attribute.Int("http.status_code", srw.status),
			attribute.Int("http.response_size", srw.size),
		)

		// metrics
		labels := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		}
		requestsCount.Add(ctx, 1, metric.WithAttributes(append(labels,
			attribute.Int("http.response.code", srw.status))...))
		requestTimeHist.Record(ctx, time.Since(reqTime).Milliseconds(), metric.WithAttributes(labels...))
		if r.ContentLength > 0 {
			requestBodyLenHist.Record(ctx, r.ContentLength/1024, metric.WithAttributes(labels...))
		}
		responseBodyLenHist.Record(ctx, int64(srw.size)/1024, metric.WithAttributes(labels...))

		log.Debug("request served", "status", srw.status, "duration_ms", time.Since(reqTime).Milliseconds())

		if srw.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(srw.status))
			return
		}
		span.SetStatus(codes.Ok, "")
	})
}

// routePattern prefers the chi route pattern so metric labels stay bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// statefulRespWriter keeps sent status and body size after WriteHeader/Write calls
type statefulRespWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func newStatefulRespWriter(w http.ResponseWriter) *statefulRespWriter {
	return &statefulRespWriter{ResponseWriter: w}
}

func (w *statefulRespWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statefulRespWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statefulRespWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statefulRespWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

package logger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/pure-golang/resume-mailer/logger/devslog"
	"github.com/pure-golang/resume-mailer/logger/noop"
	"github.com/pure-golang/resume-mailer/logger/stdjson"
)

type Level string
type Provider string
type contextKeyT string

var contextKey = contextKeyT("github.com/pure-golang/resume-mailer/logger")

const (
	INFO  Level = "info"
	ERROR Level = "error"
	WARN  Level = "warn"
	DEBUG Level = "debug"

	ProviderDevSlog Provider = "dev"      // for dev
	ProviderStdJson Provider = "std_json" // for production
	ProviderNoop    Provider = "noop"     // for unit tests
)

type Config struct {
	Provider Provider `envconfig:"LOG_PROVIDER" default:"std_json"`
	Level    Level    `envconfig:"LOG_LEVEL" default:"info"`
}

// Redacted replaces sensitive values in log output.
const Redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach the output.
var sensitiveKeys = map[string]struct{}{
	"app_password":  {},
	"password":      {},
	"secret":        {},
	"authorization": {},
}

// Secret is a string that logs as Redacted.
type Secret string

func (Secret) LogValue() slog.Value {
	return slog.StringValue(Redacted)
}

// Account masks the local part of an address: "jdoe@gmail.com" -> "j***@gmail.com".
func Account(addr string) slog.Value {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return slog.StringValue("***")
	}
	return slog.StringValue(addr[:1] + "***" + addr[at:])
}

// NewDefault creates a new instance of slog.Logger by default using Config.
func NewDefault(c Config) *slog.Logger {
	level := convertLevel(c.Level)
	switch c.Provider {
	case ProviderDevSlog:
		return devslog.NewDefault(level, RedactAttr)
	case ProviderNoop:
		return noop.NewNoop()
	case ProviderStdJson:
		fallthrough
	default:
		return stdjson.NewDefault(level, RedactAttr)
	}
}

// InitDefault creates a new instance of slog.Logger and set it by default.
func InitDefault(c Config) {
	slog.SetDefault(NewDefault(c))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		slog.Default().Error(err.Error())
	}))
}

// RedactAttr is a slog ReplaceAttr hook hiding values of sensitive keys.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// FromContext extract logger from context if exists or return default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}

// NewContext pack logger into context.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey, l)
}

// WithErr return default logger with error.
func WithErr(err error) *slog.Logger {
	return appendErr(slog.Default(), err)
}

// FromContextWithErr extract logger from context and attach error field.
func FromContextWithErr(ctx context.Context, err error) *slog.Logger {
	return appendErr(FromContext(ctx), err)
}

// FromContextWithErrIf extract logger from context (default if not exists).
// Append error and stack trace.
// Returns no-op if err == nil.
func FromContextWithErrIf(ctx context.Context, err error) *slog.Logger {
	if err == nil {
		return noop.NewNoop()
	}

	return FromContextWithErr(ctx, err)
}

func appendErr(l *slog.Logger, err error) *slog.Logger {
	var stackTracer interface {
		StackTrace() errors.StackTrace
	}

	if errors.As(err, &stackTracer) {
		l = l.With("stack", stackTracer.StackTrace())
	}

	return l.With("error", err.Error())
}

func convertLevel(level Level) slog.Level {
	switch level {
	case INFO:
		return slog.LevelInfo
	case ERROR:
		return slog.LevelError
	case WARN:
		return slog.LevelWarn
	case DEBUG:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

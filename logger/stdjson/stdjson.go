package stdjson

import (
	"io"
	"log/slog"
	"os"
)

// New writes JSON records to w. replace may be nil.
func New(w io.Writer, level slog.Level, replace func(groups []string, a slog.Attr) slog.Attr) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replace,
	}))
}

func NewDefault(level slog.Level, replace func(groups []string, a slog.Attr) slog.Attr) *slog.Logger {
	return New(os.Stdout, level, replace)
}

package devslog

import (
	"io"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

// New writes colored, human-readable records to w.
func New(w io.Writer, level slog.Level, replace func(groups []string, a slog.Attr) slog.Attr) *slog.Logger {
	opts := &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: replace,
		},
		NewLineAfterLog:    true,
		MaxErrorStackTrace: 40,
		MaxSlicePrintSize:  40,
		SortKeys:           true,
		TimeFormat:         "[15:04:05]",
		DebugColor:         devslog.Magenta,
		StringerFormatter:  true,
	}

	return slog.New(devslog.NewHandler(w, opts))
}

func NewDefault(level slog.Level, replace func(groups []string, a slog.Attr) slog.Attr) *slog.Logger {
	return New(os.Stdout, level, replace)
}

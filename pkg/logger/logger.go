package logger

import (
	"io"
	"log"
	"log/slog"
)

// New returns a stdlib logger whose lines are forwarded to base at the given
// level, tagged with the component. Libraries that only accept Printf-style
// loggers (cron, for one) write through it.
func New(base *slog.Logger, component string, level slog.Level) *log.Logger {
	if base == nil {
		base = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), level)
}

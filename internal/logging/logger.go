package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// New builds the process logger. Output is human-readable text when stdout is
// a terminal and JSON otherwise.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, term.IsTerminal(int(os.Stdout.Fd())))
}

// NewWithWriter builds a logger writing to w, choosing the text handler when
// interactive is set.
func NewWithWriter(w io.Writer, level string, interactive bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: !interactive,
		Level:     ParseLevel(level),
	}
	var handler slog.Handler
	if interactive {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a configured level name onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

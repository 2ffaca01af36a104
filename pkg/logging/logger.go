package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger so services can share one handler configuration.
type Logger struct {
	*slog.Logger
}

// Options controls how a Logger renders records.
type Options struct {
	Level  string
	Format string // "json" (default) or "text"
	Output io.Writer
}

// New creates a JSON logger on stdout at the given level.
func New(level string) *Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions builds a logger from explicit options.
func NewWithOptions(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a level name to a slog level, falling back to info.
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

// WithSession returns a child logger tagged with the session ID.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{Logger: l.With("session_id", sessionID)}
}

// Default returns a logger with default settings
func Default() *Logger {
	return New("info")
}

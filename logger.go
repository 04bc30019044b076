package repool

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with repool-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithOrigin adds the acquire call-site field to the logger.
func (l *Logger) WithOrigin(origin string) *Logger {
	return &Logger{
		Logger: l.Logger.With("origin", origin),
	}
}

// LogServe logs the outcome of serving a queued acquire.
func (l *Logger) LogServe(ctx context.Context, req RequestInfo, waited time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "acquire failed",
			"origin", req.Origin,
			"waited", waited,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "acquire served",
			"origin", req.Origin,
			"waited", waited,
		)
	}
}

// LogCreate logs the outcome of a factory creation.
func (l *Logger) LogCreate(ctx context.Context, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "create completed",
			"duration", duration,
		)
	}
}

// LogDestroy logs a factory destruction.
func (l *Logger) LogDestroy(ctx context.Context, duration time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "destroy callback failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "destroy completed",
			"duration", duration,
		)
	}
}

// LogReap logs one reaper sweep.
func (l *Logger) LogReap(ctx context.Context, reason string, count int) {
	if count > 0 {
		l.DebugContext(ctx, "reaped resources",
			"reason", reason,
			"count", count,
		)
	}
}

// LogDrain logs drain completion.
func (l *Logger) LogDrain(ctx context.Context, cancelled int, duration time.Duration) {
	l.InfoContext(ctx, "pool drained",
		"cancelled_requests", cancelled,
		"duration", duration,
	)
}

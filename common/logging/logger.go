package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/netsentry-io/netsentry/common/middleware"
)

// Logger wraps slog.Logger with context-aware structured logging.
// Request IDs stored in the context are attached to every record automatically.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stdout with the given level and format.
// format is "json" or "text"; anything else falls back to json.
func New(level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		// Source location only when the floor is error or above
		AddSource: level <= slog.LevelError,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Default returns a Logger backed by slog.Default.
func Default() *Logger {
	return &Logger{Logger: slog.Default()}
}

// WithContext returns an slog.Logger carrying the request ID from ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		return l.Logger.With(slog.String("request_id", reqID))
	}
	return l.Logger
}

// InfoContext logs at Info level with context-aware fields.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).InfoContext(ctx, msg, args...)
}

// WarnContext logs at Warn level with context-aware fields.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).WarnContext(ctx, msg, args...)
}

// ErrorContext logs at Error level with context-aware fields.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).ErrorContext(ctx, msg, args...)
}

// DebugContext logs at Debug level with context-aware fields.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).DebugContext(ctx, msg, args...)
}

// With returns a new Logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ParseLevel converts a string level ("debug", "info", "warn", "error") to
// slog.Level. Unknown values map to Info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault installs l as the process-wide default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

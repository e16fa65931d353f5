package framekit

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// sessionIDKey is the context key for session ID
type sessionIDKey struct{}

// sessionIDCounter is used to generate unique session IDs
var sessionIDCounter atomic.Uint64

// Logger wraps slog.Logger with session ID support
type Logger struct {
	*slog.Logger
	traceEnabled bool
}

// NewLogger creates a new logger writing to stdout
func NewLogger(cfg LoggingConfig) *Logger {
	return NewLoggerTo(os.Stdout, cfg)
}

// NewLoggerTo creates a new logger writing to w
func NewLoggerTo(w io.Writer, cfg LoggingConfig) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger:       slog.New(handler),
		traceEnabled: cfg.TraceEnabled,
	}
}

// NopLogger discards everything
func NopLogger() *Logger {
	return NewLoggerTo(io.Discard, LoggingConfig{Level: "error"})
}

// WithSessionID adds a fresh session ID to the context
func WithSessionID(ctx context.Context) context.Context {
	id := sessionIDCounter.Add(1)
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// GetSessionID retrieves the session ID from the context
func GetSessionID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(uint64)
	return id, ok
}

func (l *Logger) withSession(ctx context.Context, args []any) []any {
	if l.traceEnabled {
		if id, ok := GetSessionID(ctx); ok {
			args = append([]any{"session_id", id}, args...)
		}
	}
	return args
}

// InfoContext logs an info message with session ID if enabled
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, l.withSession(ctx, args)...)
}

// ErrorContext logs an error message with session ID if enabled
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, l.withSession(ctx, args)...)
}

// DebugContext logs a debug message with session ID if enabled
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Logger.DebugContext(ctx, msg, l.withSession(ctx, args)...)
}

// WarnContext logs a warning message with session ID if enabled
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, l.withSession(ctx, args)...)
}

// WithProfile returns a logger with the wire profile attached
func (l *Logger) WithProfile(name string) *Logger {
	return &Logger{
		Logger:       l.Logger.With("profile", name),
		traceEnabled: l.traceEnabled,
	}
}

// WithRemote returns a logger with the peer address attached
func (l *Logger) WithRemote(addr string) *Logger {
	return &Logger{
		Logger:       l.Logger.With("remote", addr),
		traceEnabled: l.traceEnabled,
	}
}

func parseLogLevel(level string) slog.Level {
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

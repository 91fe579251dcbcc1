package logging

import (
	"context"
	"log/slog"
)

// ContextKey is the type of the logging context keys.
type ContextKey string

const (
	// RequestIDKey carries the HTTP request id.
	RequestIDKey ContextKey = "log_request_id"
	// CommandKey carries the CLI command being run.
	CommandKey ContextKey = "log_command"
)

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID returns the request id from the context, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCommand returns a context carrying the CLI command name.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// GetCommand returns the CLI command name from the context, or "".
func GetCommand(ctx context.Context) string {
	if v, ok := ctx.Value(CommandKey).(string); ok {
		return v
	}
	return ""
}

// FromContext returns logger annotated with the ids found in ctx.
// The logger is returned unchanged when ctx carries none.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if ctx == nil {
		return logger
	}
	var attrs []any
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if cmd := GetCommand(ctx); cmd != "" {
		attrs = append(attrs, "command", cmd)
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}

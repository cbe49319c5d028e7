package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// TraceIDKey is the context key for the trace id.
	TraceIDKey ContextKey = "trace_id"
	// ProjectIDKey is the context key for the project scope of an operation.
	ProjectIDKey ContextKey = "project_id"
	// SessionIDKey is the context key for the session scope of an operation.
	SessionIDKey ContextKey = "session_id"
)

// NewTraceID generates a new trace id.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace id to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithProjectID adds a project id to the context.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, ProjectIDKey, projectID)
}

// WithSessionID adds a session id to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetProjectID retrieves the project id from the context.
func GetProjectID(ctx context.Context) string {
	if projectID, ok := ctx.Value(ProjectIDKey).(string); ok {
		return projectID
	}
	return ""
}

// GetSessionID retrieves the session id from the context.
func GetSessionID(ctx context.Context) string {
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

// LoggerFromContext returns base enriched with whatever scope ids the
// context carries.
func LoggerFromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return base
	}
	lc := base.With()
	if id := GetTraceID(ctx); id != "" {
		lc = lc.Str("trace_id", id)
	}
	if id := GetProjectID(ctx); id != "" {
		lc = lc.Str("project_id", id)
	}
	if id := GetSessionID(ctx); id != "" {
		lc = lc.Str("session_id", id)
	}
	return lc.Logger()
}

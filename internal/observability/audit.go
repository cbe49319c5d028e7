package observability

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AuditEvent is one structured entry in the append-only audit log. Every
// store mutation records one.
type AuditEvent struct {
	Type      string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	MemoryID  string            `json:"memory_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	Action    string            `json:"action"` // e.g. "memory_stored", "corpus_optimized"
	Status    string            `json:"status"` // "success", "failure"
	Metadata  map[string]string `json:"metadata,omitempty"`
	TraceID   string            `json:"trace_id,omitempty"`
}

// AuditLogger records and persists audit events.
type AuditLogger struct {
	logger zerolog.Logger
	mu     sync.Mutex
	file   *os.File
}

var (
	auditOnce sync.Once
	auditMu   sync.RWMutex
	auditInst *AuditLogger
)

// GetAuditLogger returns the global audit logger, defaulting to stderr when
// InitAuditLogger was never called.
func GetAuditLogger() *AuditLogger {
	auditOnce.Do(func() {
		auditMu.Lock()
		defer auditMu.Unlock()
		if auditInst == nil {
			auditInst = &AuditLogger{
				logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
			}
		}
	})
	auditMu.RLock()
	defer auditMu.RUnlock()
	return auditInst
}

// InitAuditLogger points the global audit logger at a file.
func InitAuditLogger(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	auditInst = &AuditLogger{
		logger: zerolog.New(file).With().Timestamp().Logger(),
		file:   file,
	}
	return nil
}

// Record emits an audit event, attaching the active trace id when present.
func (a *AuditLogger) Record(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.IsValid() {
		event.TraceID = sc.TraceID().String()
		span.AddEvent("audit", trace.WithAttributes(
			attribute.String("action", event.Action),
			attribute.String("status", event.Status),
		))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	ev := a.logger.Info().
		Str("event_type", event.Type).
		Str("action", event.Action).
		Str("status", event.Status).
		Time("timestamp", event.Timestamp)
	if event.MemoryID != "" {
		ev = ev.Str("memory_id", event.MemoryID)
	}
	if event.ProjectID != "" {
		ev = ev.Str("project_id", event.ProjectID)
	}
	if event.TraceID != "" {
		ev = ev.Str("trace_id", event.TraceID)
	}
	if len(event.Metadata) > 0 {
		for k, v := range event.Metadata {
			ev = ev.Str(k, v)
		}
	}
	ev.Msg("audit")
}

// Close releases the underlying file, if any.
func (a *AuditLogger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

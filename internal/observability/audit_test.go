package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	require.NoError(t, InitAuditLogger(path))

	a := GetAuditLogger()
	a.Record(context.Background(), AuditEvent{
		Type:      "memory_stored",
		MemoryID:  "mem-1",
		ProjectID: "proj-1",
		Action:    "store",
		Status:    "ok",
		Metadata:  map[string]string{"size": "128"},
	})
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"event_type":"memory_stored"`)
	assert.Contains(t, s, `"memory_id":"mem-1"`)
	assert.Contains(t, s, `"size":"128"`)
}

func TestAuditLoggerDefaultDoesNotPanic(t *testing.T) {
	a := GetAuditLogger()
	require.NotNil(t, a)
	a.Record(context.Background(), AuditEvent{Action: "noop", Status: "ok"})
}

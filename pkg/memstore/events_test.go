package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToolRun(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := s.RecordToolRun(ctx, ToolRun{
		Tool:      "go_vet",
		Args:      "./...",
		Result:    "no issues found",
		Success:   true,
		Duration:  1200 * time.Millisecond,
		ProjectID: "p",
	})
	require.NoError(t, err)

	mem, err := s.RetrieveMemory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, EventToolRun, mem.Metadata.EventType)
	assert.Contains(t, mem.Content, "### Tool Execution: go_vet")
	assert.Contains(t, mem.Content, "Status: ok")
	assert.Contains(t, mem.Content, "no issues found")
	assert.Contains(t, mem.Metadata.Tags, "tool:go_vet")
}

func TestRecordToolRun_Failure(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := s.RecordToolRun(ctx, ToolRun{
		Tool:      "linter",
		Result:    "2 errors",
		Success:   false,
		ProjectID: "p",
	})
	require.NoError(t, err)

	mem, err := s.RetrieveMemory(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, mem.Content, "Status: failed")
	assert.Contains(t, mem.Metadata.Tags, "status:failed")
}

func TestRecordFileChange(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := s.RecordFileChange(ctx, FileChange{
		Path:      "pkg/parser/parser.go",
		Action:    "modified",
		Diff:      "-old line\n+new line",
		Summary:   "rename token field",
		ProjectID: "p",
	})
	require.NoError(t, err)

	mem, err := s.RetrieveMemory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, EventFileDiff, mem.Metadata.EventType)
	assert.Equal(t, "pkg/parser/parser.go", mem.Metadata.Path)
	assert.Contains(t, mem.Content, "### File Modified: pkg/parser/parser.go")
	assert.Contains(t, mem.Content, "+new line")
}

func TestRecordFileChange_NoPath(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	_, err := s.RecordFileChange(context.Background(), FileChange{})
	assert.Error(t, err)
}

func TestRecordTestResult(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := s.RecordTestResult(ctx, TestResult{
		Suite:     "pkg/codec",
		Passed:    40,
		Failed:    1,
		Output:    "FAIL: TestRoundTrip",
		ProjectID: "p",
	})
	require.NoError(t, err)

	mem, err := s.RetrieveMemory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, EventTestResult, mem.Metadata.EventType)
	assert.Contains(t, mem.Content, "Passed: 40, Failed: 1")
	assert.Contains(t, mem.Metadata.Tags, "status:failed")
}

func TestListEvents(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := s.RecordToolRun(ctx, ToolRun{Tool: "fmt", Success: true, Result: "formatted", ProjectID: "p"})
	require.NoError(t, err)
	_, err = s.RecordTestResult(ctx, TestResult{Suite: "all", Passed: 10, ProjectID: "p"})
	require.NoError(t, err)
	_, _, err = s.StoreMemory(ctx, StoreInput{Content: "plain note", ProjectID: "p"})
	require.NoError(t, err)

	toolRuns, err := s.ListEvents(ctx, "p", []EventType{EventToolRun}, 10)
	require.NoError(t, err)
	require.Len(t, toolRuns, 1)
	assert.Contains(t, toolRuns[0].Summary, "fmt")

	all, err := s.ListEvents(ctx, "p", nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

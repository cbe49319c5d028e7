package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLatestCheckpoint(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := s.CreateCheckpoint(ctx, CheckpointInput{
		ProjectID:   "p",
		Description: "first checkpoint",
		CurrentTask: "wire the scheduler",
	})
	require.NoError(t, err)

	id2, err := s.CreateCheckpoint(ctx, CheckpointInput{
		ProjectID:   "p",
		Description: "second checkpoint",
		NextSteps:   []string{"add retries", "write docs"},
		OpenFiles:   []string{"pkg/memstore/store.go"},
	})
	require.NoError(t, err)

	cp, err := s.LatestCheckpoint(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, id2, cp.Metadata.ID)
	assert.Contains(t, cp.Content, "second checkpoint")
	assert.Contains(t, cp.Content, "- add retries")
	assert.Contains(t, cp.Content, "- pkg/memstore/store.go")
}

func TestCreateCheckpoint_NoProject(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	_, err := s.CreateCheckpoint(context.Background(), CheckpointInput{})
	assert.Error(t, err)
}

func TestLatestCheckpoint_None(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	_, err := s.LatestCheckpoint(context.Background(), "empty-project")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreWorkingSet(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := s.CreateCheckpoint(ctx, CheckpointInput{
		ProjectID:   "p",
		Description: "mid refactor",
	})
	require.NoError(t, err)

	_, err = s.RecordToolRun(ctx, ToolRun{Tool: "build", Success: true, Result: "ok", ProjectID: "p"})
	require.NoError(t, err)
	_, err = s.RecordFileChange(ctx, FileChange{Path: "main.go", Diff: "+x", ProjectID: "p"})
	require.NoError(t, err)
	_, err = s.RecordTestResult(ctx, TestResult{Suite: "unit", Passed: 3, ProjectID: "p"})
	require.NoError(t, err)

	ws, err := s.RestoreWorkingSet(ctx, "p", 10)
	require.NoError(t, err)
	require.NotNil(t, ws.Checkpoint)
	assert.Contains(t, ws.Checkpoint.Content, "mid refactor")

	// Checkpoints are excluded from the grouped events.
	assert.NotContains(t, ws.RecentEvents, EventCheckpoint)
	assert.Len(t, ws.RecentEvents[EventToolRun], 1)
	assert.Len(t, ws.RecentEvents[EventFileDiff], 1)
	assert.Len(t, ws.RecentEvents[EventTestResult], 1)
	assert.Equal(t, 3, ws.RecentCount)
}

func TestRestoreWorkingSet_NoCheckpoint(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := s.RecordToolRun(ctx, ToolRun{Tool: "lint", Success: true, Result: "clean", ProjectID: "p"})
	require.NoError(t, err)

	ws, err := s.RestoreWorkingSet(ctx, "p", 5)
	require.NoError(t, err)
	assert.Nil(t, ws.Checkpoint)
	assert.Equal(t, 1, ws.RecentCount)
}

package memstore

import (
	"context"
	"fmt"
	"strings"
)

// CheckpointInput captures a project's working state at a point in time.
type CheckpointInput struct {
	ProjectID   string
	SessionID   string
	Description string
	CurrentTask string
	NextSteps   []string
	OpenFiles   []string
}

// CreateCheckpoint stores a checkpoint event for the project. Checkpoints
// are regular memories with a structured body, so they compress, dedupe and
// list like everything else.
func (s *Store) CreateCheckpoint(ctx context.Context, in CheckpointInput) (string, error) {
	if in.ProjectID == "" {
		return "", fmt.Errorf("checkpoint requires a project id")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### Checkpoint: %s\n", in.ProjectID)
	if in.Description != "" {
		fmt.Fprintf(&b, "%s\n", in.Description)
	}
	if in.CurrentTask != "" {
		fmt.Fprintf(&b, "\nCurrent task:\n%s\n", in.CurrentTask)
	}
	if len(in.NextSteps) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, step := range in.NextSteps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if len(in.OpenFiles) > 0 {
		b.WriteString("\nOpen files:\n")
		for _, f := range in.OpenFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	id, _, err := s.StoreMemory(ctx, StoreInput{
		Content:   b.String(),
		EventType: EventCheckpoint,
		Kind:      "checkpoint",
		SessionID: in.SessionID,
		ProjectID: in.ProjectID,
		Summary:   in.Description,
	})
	return id, err
}

// LatestCheckpoint returns the most recent checkpoint for a project, or
// ErrNotFound when the project has none.
func (s *Store) LatestCheckpoint(ctx context.Context, projectID string) (*Memory, error) {
	entries, err := s.ListRecent(ctx, Filter{
		ProjectID:  projectID,
		EventTypes: []EventType{EventCheckpoint},
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return s.RetrieveMemory(ctx, entries[0].Metadata.ID)
}

// RestoreWorkingSet rebuilds a session-resume view for the project: the
// latest checkpoint plus up to recentLimit recent events grouped by type.
// A project without a checkpoint still gets its recent events.
func (s *Store) RestoreWorkingSet(ctx context.Context, projectID string, recentLimit int) (*WorkingSet, error) {
	if recentLimit <= 0 {
		recentLimit = defaultLimit
	}

	ws := &WorkingSet{
		ProjectID:    projectID,
		RecentEvents: map[EventType][]EventSummary{},
	}

	cp, err := s.LatestCheckpoint(ctx, projectID)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	ws.Checkpoint = cp

	entries, err := s.ListRecent(ctx, Filter{
		ProjectID: projectID,
		Limit:     recentLimit,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Metadata.EventType == EventCheckpoint {
			continue
		}
		ws.RecentEvents[e.Metadata.EventType] = append(ws.RecentEvents[e.Metadata.EventType], EventSummary{
			ID:        e.Metadata.ID,
			Summary:   e.Metadata.Summary,
			CreatedAt: e.Metadata.CreatedAt,
			Preview:   e.Preview,
			Path:      e.Metadata.Path,
			Tags:      e.Metadata.Tags,
		})
		ws.RecentCount++
	}
	return ws, nil
}

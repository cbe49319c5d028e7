package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ToolRun describes one tool execution worth remembering.
type ToolRun struct {
	Tool      string
	Args      string
	Result    string
	Success   bool
	Duration  time.Duration
	SessionID string
	ProjectID string
}

// FileChange describes an edit to a tracked file.
type FileChange struct {
	Path      string
	Action    string // created, modified, deleted
	Diff      string
	Summary   string
	SessionID string
	ProjectID string
}

// TestResult describes the outcome of a test run.
type TestResult struct {
	Suite     string
	Passed    int
	Failed    int
	Output    string
	SessionID string
	ProjectID string
}

// RecordToolRun stores a tool execution as a tool_run event.
func (s *Store) RecordToolRun(ctx context.Context, r ToolRun) (string, error) {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### Tool Execution: %s\n", r.Tool)
	fmt.Fprintf(&b, "Status: %s\n", status)
	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", r.Duration)
	}
	if r.Args != "" {
		fmt.Fprintf(&b, "\nArguments:\n%s\n", r.Args)
	}
	if r.Result != "" {
		fmt.Fprintf(&b, "\nResult:\n%s\n", r.Result)
	}

	id, _, err := s.StoreMemory(ctx, StoreInput{
		Content:   b.String(),
		EventType: EventToolRun,
		Kind:      "event",
		Tags:      []string{"tool:" + r.Tool, "status:" + status},
		SessionID: r.SessionID,
		ProjectID: r.ProjectID,
		Summary:   fmt.Sprintf("%s (%s)", r.Tool, status),
	})
	return id, err
}

// RecordFileChange stores a file edit as a file_diff event.
func (s *Store) RecordFileChange(ctx context.Context, c FileChange) (string, error) {
	if c.Path == "" {
		return "", fmt.Errorf("file change has no path")
	}
	action := c.Action
	if action == "" {
		action = "modified"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### File %s: %s\n", titleCase(action), c.Path)
	if c.Summary != "" {
		fmt.Fprintf(&b, "%s\n", c.Summary)
	}
	if c.Diff != "" {
		fmt.Fprintf(&b, "\n```diff\n%s\n```\n", c.Diff)
	}

	id, _, err := s.StoreMemory(ctx, StoreInput{
		Content:   b.String(),
		EventType: EventFileDiff,
		Kind:      "event",
		Path:      c.Path,
		Tags:      []string{"action:" + action},
		SessionID: c.SessionID,
		ProjectID: c.ProjectID,
		Summary:   fmt.Sprintf("%s %s", action, c.Path),
	})
	return id, err
}

// RecordTestResult stores a test run as a test_result event.
func (s *Store) RecordTestResult(ctx context.Context, r TestResult) (string, error) {
	status := "passed"
	if r.Failed > 0 {
		status = "failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### Test Run: %s\n", r.Suite)
	fmt.Fprintf(&b, "Passed: %d, Failed: %d\n", r.Passed, r.Failed)
	if r.Output != "" {
		fmt.Fprintf(&b, "\nOutput:\n%s\n", r.Output)
	}

	id, _, err := s.StoreMemory(ctx, StoreInput{
		Content:   b.String(),
		EventType: EventTestResult,
		Kind:      "event",
		Tags:      []string{"suite:" + r.Suite, "status:" + status},
		SessionID: r.SessionID,
		ProjectID: r.ProjectID,
		Summary:   fmt.Sprintf("%s: %d passed, %d failed", r.Suite, r.Passed, r.Failed),
	})
	return id, err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ListEvents returns recent events of the given types for a project, most
// recent first. Empty types means all event types.
func (s *Store) ListEvents(ctx context.Context, projectID string, types []EventType, limit int) ([]EventSummary, error) {
	entries, err := s.ListRecent(ctx, Filter{
		ProjectID:  projectID,
		EventTypes: types,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	events := make([]EventSummary, 0, len(entries))
	for _, e := range entries {
		events = append(events, EventSummary{
			ID:        e.Metadata.ID,
			Summary:   e.Metadata.Summary,
			CreatedAt: e.Metadata.CreatedAt,
			Preview:   e.Preview,
			Path:      e.Metadata.Path,
			Tags:      e.Metadata.Tags,
		})
	}
	return events, nil
}

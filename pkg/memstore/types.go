package memstore

import "time"

// EventType classifies what a memory records.
type EventType string

const (
	EventNote       EventType = "note"
	EventToolRun    EventType = "tool_run"
	EventFileDiff   EventType = "file_diff"
	EventTestResult EventType = "test_result"
	EventCheckpoint EventType = "checkpoint"
	EventPlanUpdate EventType = "plan_update"
	EventDecision   EventType = "decision"
)

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventNote, EventToolRun, EventFileDiff, EventTestResult,
		EventCheckpoint, EventPlanUpdate, EventDecision:
		return true
	}
	return false
}

// Metadata scopes and describes a stored memory.
type Metadata struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	SessionID string            `json:"session_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	Kind      string            `json:"kind"`
	EventType EventType         `json:"event_type"`
	Tags      []string          `json:"tags,omitempty"`
	Source    string            `json:"source,omitempty"`
	Path      string            `json:"path,omitempty"`
	Summary   string            `json:"summary,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// StoreInput is everything a caller can attach when storing content.
type StoreInput struct {
	Content   string
	Tags      []string
	SessionID string
	ProjectID string
	Kind      string
	EventType EventType
	Source    string
	Path      string
	Summary   string
	Extra     map[string]string
}

// Memory is a fully retrieved record: reconstructed content plus metadata
// and the compression stats captured at encode time.
type Memory struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	Ratio    float64  `json:"compression_ratio"`
}

// Entry is an index row without the decoded content; listing operations
// return these.
type Entry struct {
	Metadata    Metadata `json:"metadata"`
	Preview     string   `json:"preview"`
	Fingerprint string   `json:"fingerprint"`
	SymbolCount int      `json:"symbol_count"`
	Ratio       float64  `json:"compression_ratio"`
}

// Filter narrows listing operations. All fields are exact matches; Tags
// requires every listed tag to be present. No relevance ranking happens
// here; ordering is always most recent first.
type Filter struct {
	ProjectID  string
	SessionID  string
	Kinds      []string
	EventTypes []EventType
	Tags       []string
	Path       string
	Limit      int
}

// Stats summarizes the corpus.
type Stats struct {
	TotalMemories      int            `json:"total_memories"`
	TotalSymbolsStored int            `json:"total_symbols_stored"`
	Projects           map[string]int `json:"projects"`
}

// SymbolFrequency is one entry of a corpus-wide symbol census.
type SymbolFrequency struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// OptimizeReport is the outcome of a corpus maintenance pass.
type OptimizeReport struct {
	Imported          int               `json:"imported"`
	Pruned            int               `json:"pruned"`
	TopGlobalPatterns []SymbolFrequency `json:"top_global_patterns"`
}

// EventSummary is a compact view of one recent event.
type EventSummary struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Preview   string    `json:"preview"`
	Path      string    `json:"path,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
}

// WorkingSet is what RestoreWorkingSet hands back: the latest checkpoint for
// a project plus its recent events grouped by type.
type WorkingSet struct {
	ProjectID    string                       `json:"project_id"`
	Checkpoint   *Memory                      `json:"checkpoint,omitempty"`
	RecentEvents map[EventType][]EventSummary `json:"recent_events"`
	RecentCount  int                          `json:"recent_count"`
}

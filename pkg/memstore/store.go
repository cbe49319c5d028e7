package memstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fracktal-labs/fracktal/internal/observability"
	"github.com/fracktal-labs/fracktal/internal/tracing"
	"github.com/fracktal-labs/fracktal/pkg/codec"
)

// ErrNotFound is returned when no memory exists under the requested id.
var ErrNotFound = errors.New("memory not found")

const (
	tracerName     = "fracktal.memstore"
	previewBytes   = 200
	defaultLimit   = 20
	artifactSubdir = "artifacts"
)

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id            TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	session_id    TEXT NOT NULL DEFAULT '',
	project_id    TEXT NOT NULL DEFAULT '',
	kind          TEXT NOT NULL DEFAULT '',
	event_type    TEXT NOT NULL,
	tags          TEXT NOT NULL DEFAULT '[]',
	source        TEXT NOT NULL DEFAULT '',
	path          TEXT NOT NULL DEFAULT '',
	summary       TEXT NOT NULL DEFAULT '',
	extra         TEXT NOT NULL DEFAULT '{}',
	preview       TEXT NOT NULL DEFAULT '',
	content_hash  TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	artifact_file TEXT NOT NULL,
	symbols       TEXT NOT NULL DEFAULT '[]',
	symbol_count  INTEGER NOT NULL DEFAULT 0,
	pattern_count INTEGER NOT NULL DEFAULT 0,
	ratio         REAL NOT NULL DEFAULT 1.0
);
CREATE INDEX IF NOT EXISTS idx_memories_content_hash ON memories(content_hash, project_id);
CREATE INDEX IF NOT EXISTS idx_memories_fingerprint ON memories(fingerprint);
CREATE INDEX IF NOT EXISTS idx_memories_project_created ON memories(project_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_memories_event_type ON memories(event_type);
`

// Options configures a Store.
type Options struct {
	// Dir is the storage root. The index database and the artifact files
	// live under it.
	Dir string
	// Codec encodes and decodes memory content. Nil means default params.
	Codec *codec.Codec
	// Logger receives structured store logs.
	Logger zerolog.Logger
	// Watch enables the filesystem watcher on the artifact directory, so
	// externally dropped or deleted artifact files trigger a reindex on
	// the next read.
	Watch bool
}

// Store persists encoded memories: one JSON artifact file per memory plus a
// SQLite index row. Safe for concurrent use.
type Store struct {
	db    *sql.DB
	dir   string
	codec *codec.Codec
	log   zerolog.Logger

	watcher *Watcher

	mu    sync.Mutex
	dirty bool
}

// New opens (or creates) a store rooted at opts.Dir.
func New(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(filepath.Join(opts.Dir, artifactSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	cdc := opts.Codec
	if cdc == nil {
		cdc = codec.NewDefault()
	}

	dbPath := filepath.Join(opts.Dir, "index.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{
		db:    db,
		dir:   opts.Dir,
		codec: cdc,
		log:   opts.Logger.With().Str("component", "memstore").Logger(),
	}

	if opts.Watch {
		w, err := NewWatcher(filepath.Join(opts.Dir, artifactSubdir), s.MarkDirty, s.log)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
		s.watcher = w
	}

	s.log.Info().Str("dir", opts.Dir).Bool("watch", opts.Watch).Msg("store opened")
	return s, nil
}

// Close stops the watcher and closes the index database.
func (s *Store) Close() error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	return s.db.Close()
}

// MarkDirty flags the index as possibly stale. The next read-side operation
// reconciles the index with the artifact directory before answering.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// ensureFresh reindexes if the artifact directory changed behind our back.
func (s *Store) ensureFresh(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	imported, pruned, err := s.Reindex(ctx)
	if err != nil {
		s.MarkDirty()
		return err
	}
	if imported > 0 || pruned > 0 {
		s.log.Info().Int("imported", imported).Int("pruned", pruned).Msg("index refreshed")
	}
	return nil
}

// artifactDocument is the on-disk layout of one memory.
type artifactDocument struct {
	Metadata Metadata        `json:"metadata"`
	Artifact *codec.Artifact `json:"artifact"`
}

func (s *Store) artifactPath(id string) string {
	return filepath.Join(s.dir, artifactSubdir, id+".json")
}

// StoreMemory encodes content and persists it. Identical content within the
// same project is deduplicated: the existing id is returned with deduped set
// to true and nothing is written. The dedup key is a hash of the raw
// content; the codec fingerprint cannot serve here because colliding symbol
// streams share a fingerprint while their contents differ.
func (s *Store) StoreMemory(ctx context.Context, in StoreInput) (id string, deduped bool, err error) {
	start := time.Now()
	defer func() { observability.RecordStoreOp("store", time.Since(start), err == nil) }()

	ctx, span := tracing.StartSpan(ctx, tracerName, "memstore.StoreMemory",
		attribute.String("project_id", in.ProjectID),
		attribute.String("event_type", string(in.EventType)))
	defer span.End()

	if in.Content == "" {
		return "", false, fmt.Errorf("content is empty")
	}
	if in.EventType == "" {
		in.EventType = EventNote
	}
	if !ValidEventType(in.EventType) {
		return "", false, fmt.Errorf("unknown event type %q", in.EventType)
	}

	encodeStart := time.Now()
	artifact := s.codec.Encode([]byte(in.Content))
	observability.RecordEncode(time.Since(encodeStart))

	var existing string
	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM memories WHERE content_hash = ? AND project_id = ? LIMIT 1`,
		contentHashOf(in.Content), in.ProjectID)
	switch err := row.Scan(&existing); {
	case err == nil:
		observability.RecordDedupHit()
		s.log.Debug().Str("id", existing).
			Msg("duplicate content, reusing existing memory")
		return existing, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", false, fmt.Errorf("failed to check for duplicates: %w", err)
	}

	id = uuid.NewString()
	meta := Metadata{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		SessionID: in.SessionID,
		ProjectID: in.ProjectID,
		Kind:      in.Kind,
		EventType: in.EventType,
		Tags:      in.Tags,
		Source:    in.Source,
		Path:      in.Path,
		Summary:   in.Summary,
		Extra:     in.Extra,
	}

	if err := s.writeArtifact(id, artifactDocument{Metadata: meta, Artifact: artifact}); err != nil {
		return "", false, err
	}

	if err := s.insertRow(ctx, meta, in.Content, artifact); err != nil {
		os.Remove(s.artifactPath(id))
		return "", false, err
	}

	s.refreshTotalGauge(ctx)
	observability.GetAuditLogger().Record(ctx, observability.AuditEvent{
		Type:      "memory_stored",
		MemoryID:  id,
		ProjectID: in.ProjectID,
		Action:    "store",
		Status:    "ok",
	})
	s.log.Info().Str("id", id).Str("event_type", string(in.EventType)).
		Float64("ratio", artifact.Stats.Ratio).Msg("memory stored")
	return id, false, nil
}

// writeArtifact persists the artifact document atomically: write to a temp
// file in the same directory, then rename over the final path.
func (s *Store) writeArtifact(id string, doc artifactDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	final := s.artifactPath(id)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize artifact file: %w", err)
	}
	return nil
}

func (s *Store) insertRow(ctx context.Context, meta Metadata, content string, artifact *codec.Artifact) error {
	tagsJSON, err := json.Marshal(meta.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	extraJSON, err := json.Marshal(meta.Extra)
	if err != nil {
		return fmt.Errorf("failed to marshal extra: %w", err)
	}
	symbolsJSON, err := json.Marshal(symbolSet(artifact.Symbols))
	if err != nil {
		return fmt.Errorf("failed to marshal symbols: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (
			id, created_at, session_id, project_id, kind, event_type,
			tags, source, path, summary, extra, preview,
			content_hash, fingerprint, artifact_file,
			symbols, symbol_count, pattern_count, ratio
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.CreatedAt.UnixNano(), meta.SessionID, meta.ProjectID,
		meta.Kind, string(meta.EventType),
		string(tagsJSON), meta.Source, meta.Path, meta.Summary, string(extraJSON),
		preview(content),
		contentHashOf(content), artifact.Fingerprint, meta.ID+".json",
		string(symbolsJSON),
		artifact.Stats.SymbolCount, artifact.Stats.PatternCount, artifact.Stats.Ratio,
	)
	if err != nil {
		return fmt.Errorf("failed to index memory: %w", err)
	}
	return nil
}

// RetrieveMemory loads, validates and decodes the memory stored under id.
// Codec errors are returned unwrapped, so callers can distinguish corrupt
// artifacts (*codec.DecodeError) from tampered content (*codec.IntegrityError).
func (s *Store) RetrieveMemory(ctx context.Context, id string) (mem *Memory, err error) {
	start := time.Now()
	defer func() { observability.RecordStoreOp("retrieve", time.Since(start), err == nil) }()

	ctx, span := tracing.StartSpan(ctx, tracerName, "memstore.RetrieveMemory",
		attribute.String("memory_id", id))
	defer span.End()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	var exists int
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM memories WHERE id = ?`, id)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up memory: %w", err)
	}

	doc, err := s.readArtifact(id)
	if err != nil {
		return nil, err
	}

	decodeStart := time.Now()
	content, err := s.codec.Decode(doc.Artifact)
	observability.RecordDecode(time.Since(decodeStart))
	if err != nil {
		var ie *codec.IntegrityError
		if errors.As(err, &ie) {
			observability.RecordIntegrityError()
			observability.GetAuditLogger().Record(ctx, observability.AuditEvent{
				Type:     "integrity_failure",
				MemoryID: id,
				Action:   "retrieve",
				Status:   "failed",
			})
		}
		return nil, err
	}

	return &Memory{
		Content:  string(content),
		Metadata: doc.Metadata,
		Ratio:    doc.Artifact.Stats.Ratio,
	}, nil
}

func (s *Store) readArtifact(id string) (*artifactDocument, error) {
	data, err := os.ReadFile(s.artifactPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact file: %w", err)
	}
	if err := ValidateArtifactDocument(data); err != nil {
		return nil, err
	}
	var doc artifactDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	if doc.Artifact == nil {
		return nil, fmt.Errorf("artifact file %s has no artifact payload", id)
	}
	return &doc, nil
}

// ListRecent returns index entries matching the filter, most recent first.
// Tag filtering requires every filter tag to be present on the entry.
func (s *Store) ListRecent(ctx context.Context, f Filter) (entries []Entry, err error) {
	start := time.Now()
	defer func() { observability.RecordStoreOp("list", time.Since(start), err == nil) }()

	ctx, span := tracing.StartSpan(ctx, tracerName, "memstore.ListRecent")
	defer span.End()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	query, args := buildListQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	entries = []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if !hasAllTags(e.Metadata.Tags, f.Tags) {
			continue
		}
		entries = append(entries, e)
		if len(entries) >= limit {
			break
		}
	}
	return entries, rows.Err()
}

func buildListQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Path != "" {
		where = append(where, "path = ?")
		args = append(args, f.Path)
	}
	if len(f.Kinds) > 0 {
		where = append(where, "kind IN (?"+strings.Repeat(",?", len(f.Kinds)-1)+")")
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}
	if len(f.EventTypes) > 0 {
		where = append(where, "event_type IN (?"+strings.Repeat(",?", len(f.EventTypes)-1)+")")
		for _, t := range f.EventTypes {
			args = append(args, string(t))
		}
	}

	query := `SELECT id, created_at, session_id, project_id, kind, event_type,
		tags, source, path, summary, extra, preview,
		fingerprint, symbol_count, ratio FROM memories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// Tag filtering happens in Go after the scan, so no LIMIT here beyond a
	// generous ceiling to bound the scan.
	query += " ORDER BY created_at DESC LIMIT 1000"
	return query, args
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e         Entry
		createdAt int64
		eventType string
		tagsJSON  string
		extraJSON string
	)
	err := rows.Scan(
		&e.Metadata.ID, &createdAt, &e.Metadata.SessionID, &e.Metadata.ProjectID,
		&e.Metadata.Kind, &eventType,
		&tagsJSON, &e.Metadata.Source, &e.Metadata.Path, &e.Metadata.Summary,
		&extraJSON, &e.Preview,
		&e.Fingerprint, &e.SymbolCount, &e.Ratio,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to scan memory row: %w", err)
	}
	e.Metadata.CreatedAt = time.Unix(0, createdAt).UTC()
	e.Metadata.EventType = EventType(eventType)
	if err := json.Unmarshal([]byte(tagsJSON), &e.Metadata.Tags); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(extraJSON), &e.Metadata.Extra); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal extra: %w", err)
	}
	return e, nil
}

func hasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// Stats summarizes the corpus.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	st := &Stats{Projects: map[string]int{}}
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(symbol_count), 0) FROM memories`)
	if err := row.Scan(&st.TotalMemories, &st.TotalSymbolsStored); err != nil {
		return nil, fmt.Errorf("failed to count memories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, COUNT(*) FROM memories GROUP BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			project string
			n       int
		)
		if err := rows.Scan(&project, &n); err != nil {
			return nil, fmt.Errorf("failed to scan project count: %w", err)
		}
		st.Projects[project] = n
	}
	return st, rows.Err()
}

// Reindex reconciles the index with the artifact directory: artifact files
// missing from the index are imported, rows whose files are gone are pruned.
func (s *Store) Reindex(ctx context.Context) (imported, pruned int, err error) {
	defer func() { observability.RecordReindex(err == nil) }()

	ctx, span := tracing.StartSpan(ctx, tracerName, "memstore.Reindex")
	defer span.End()

	indexed := map[string]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM memories`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read index: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan index row: %w", err)
		}
		indexed[id] = false
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	files, err := os.ReadDir(filepath.Join(s.dir, artifactSubdir))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read artifact directory: %w", err)
	}
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if _, ok := indexed[id]; ok {
			indexed[id] = true
			continue
		}
		doc, err := s.readArtifact(id)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable artifact")
			continue
		}
		// Re-derive preview from the decoded content so imported rows are
		// indistinguishable from natively stored ones.
		content, err := s.codec.Decode(doc.Artifact)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping undecodable artifact")
			continue
		}
		// The row is keyed by the filename; an embedded id pointing at a
		// different file would index a memory that can never be read back.
		if doc.Metadata.ID != "" && doc.Metadata.ID != id {
			s.log.Warn().Str("file", name).Str("embedded_id", doc.Metadata.ID).
				Msg("skipping artifact whose id does not match its filename")
			continue
		}
		doc.Metadata.ID = id
		if err := s.insertRow(ctx, doc.Metadata, string(content), doc.Artifact); err != nil {
			return imported, pruned, err
		}
		imported++
	}

	for id, present := range indexed {
		if present {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
			return imported, pruned, fmt.Errorf("failed to prune memory %s: %w", id, err)
		}
		pruned++
	}

	s.refreshTotalGauge(ctx)
	return imported, pruned, nil
}

// OptimizeCorpus reconciles the index and computes a corpus-wide symbol
// census, reporting the ten most frequent symbols across all memories.
func (s *Store) OptimizeCorpus(ctx context.Context) (*OptimizeReport, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "memstore.OptimizeCorpus")
	defer span.End()

	imported, pruned, err := s.Reindex(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT symbols FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol sets: %w", err)
	}
	defer rows.Close()

	census := map[string]int{}
	for rows.Next() {
		var symbolsJSON string
		if err := rows.Scan(&symbolsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan symbol set: %w", err)
		}
		var symbols []string
		if err := json.Unmarshal([]byte(symbolsJSON), &symbols); err != nil {
			return nil, fmt.Errorf("failed to unmarshal symbol set: %w", err)
		}
		for _, sym := range symbols {
			census[sym]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top := make([]SymbolFrequency, 0, len(census))
	for sym, n := range census {
		top = append(top, SymbolFrequency{Symbol: sym, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Symbol < top[j].Symbol
	})
	if len(top) > 10 {
		top = top[:10]
	}

	return &OptimizeReport{
		Imported:          imported,
		Pruned:            pruned,
		TopGlobalPatterns: top,
	}, nil
}

func (s *Store) refreshTotalGauge(ctx context.Context) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n); err == nil {
		observability.SetMemoriesTotal(n)
	}
}

// preview returns the first previewBytes bytes of content, cut at a rune
// boundary.
func preview(content string) string {
	if len(content) <= previewBytes {
		return content
	}
	cut := previewBytes
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// contentHashOf is the dedup key: SHA-256 over the raw content bytes. Two
// contents are treated as duplicates only when the bytes are identical.
func contentHashOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// symbolSet returns the sorted set of distinct symbol names in the stream.
func symbolSet(symbols []codec.Symbol) []string {
	seen := make(map[codec.Symbol]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym.String())
	}
	sort.Strings(out)
	return out
}

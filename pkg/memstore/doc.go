// Package memstore is the persistence and indexing layer around the codec.
// Each stored memory is one JSON artifact file in a storage directory plus a
// metadata row in a SQLite index. The index carries a hash of the raw
// content, so storing identical content within a project reuses the
// existing memory instead of writing a new artifact. On top of
// plain store/retrieve it keeps a typed event log (tool runs, file diffs,
// test results, notes, decisions), project checkpoints, and a working-set
// restore that replays the latest checkpoint plus recent events.
//
// The store owns retries, scheduling and I/O. The codec stays pure: its
// errors (corrupt artifacts, fingerprint mismatches) are surfaced to callers
// as-is and never retried or repaired here.
package memstore

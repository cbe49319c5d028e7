package codec

import "fmt"

// DecodeError reports an artifact whose rewritten stream or tables are
// internally inconsistent. The artifact must be treated as corrupted; no
// partial output is produced.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s", e.Reason)
}

func decodeErrorf(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// IntegrityError reports a fingerprint mismatch between the stored value and
// the one recomputed from the decoded symbol stream: silent corruption. It
// must never be auto-repaired; retry policy belongs to the caller.
type IntegrityError struct {
	Stored     string
	Recomputed string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: fingerprint mismatch: stored %s, recomputed %s",
		e.Stored, e.Recomputed)
}

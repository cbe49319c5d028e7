package codec

import "fmt"

// Symbol is a bounded-range identifier derived by hashing a chunk. Distinct
// chunks may collide to the same symbol; nothing downstream may assume
// uniqueness.
type Symbol uint32

// String renders the symbol's textual form. This form, not the integer, is
// what the fingerprint hashes.
func (s Symbol) String() string {
	return fmt.Sprintf("S_%04d", uint32(s))
}

// PatternID names a dictionary entry.
type PatternID uint32

func (p PatternID) String() string {
	return fmt.Sprintf("P_%03d", uint32(p))
}

// Token is one element of the rewritten stream: either a literal symbol or a
// reference to a dictionary pattern.
type Token struct {
	Symbol  Symbol    `json:"s"`
	Pattern PatternID `json:"p,omitempty"`
	Ref     bool      `json:"ref,omitempty"`
}

func literal(s Symbol) Token      { return Token{Symbol: s} }
func reference(p PatternID) Token { return Token{Pattern: p, Ref: true} }

// Pattern is a literal symbol sub-sequence registered in the dictionary.
type Pattern struct {
	ID          PatternID `json:"id"`
	Symbols     []Symbol  `json:"symbols"`
	Occurrences int       `json:"occurrences"`
	Saved       int       `json:"saved"`
}

// Dictionary maps reference tokens to the sub-sequences they stand for.
// Entries are ordered by id so serialization stays deterministic.
type Dictionary struct {
	Patterns []Pattern `json:"patterns,omitempty"`
}

// Lookup returns the sub-sequence registered under id.
func (d Dictionary) Lookup(id PatternID) ([]Symbol, bool) {
	if int(id) < len(d.Patterns) && d.Patterns[id].ID == id {
		return d.Patterns[id].Symbols, true
	}
	for _, p := range d.Patterns {
		if p.ID == id {
			return p.Symbols, true
		}
	}
	return nil, false
}

// Len returns the number of registered patterns.
func (d Dictionary) Len() int { return len(d.Patterns) }

// Stats summarizes what the compressor achieved.
type Stats struct {
	SymbolCount  int     `json:"symbol_count"`
	TokenCount   int     `json:"token_count"`
	PatternCount int     `json:"pattern_count"`
	SymbolsSaved int     `json:"symbols_saved"`
	Ratio        float64 `json:"compression_ratio"`
}

// Artifact is the complete, immutable output of Encode: sufficient to
// reconstruct the input bit-exactly and to recompute its fingerprint. It is
// created once and never mutated; Decode and Fingerprint consume it whole.
type Artifact struct {
	// Chunks is the reconstruction-authoritative table of overlapping
	// two-byte windows, one per input position except the last.
	Chunks [][]byte `json:"chunks"`

	// Symbols is the pre-compression symbol stream; Symbols[i] derives from
	// Chunks[i].
	Symbols []Symbol `json:"symbols"`

	// Tokens is the rewritten stream: Symbols with repeated sub-sequences
	// replaced by dictionary references.
	Tokens []Token `json:"tokens"`

	Dictionary  Dictionary `json:"dictionary"`
	Fingerprint string     `json:"fingerprint"`
	Stats       Stats      `json:"stats"`

	// Remainder carries inputs shorter than the chunk window, which yield
	// empty chunk and symbol streams but must still round-trip.
	Remainder []byte `json:"remainder,omitempty"`
}

// Empty reports whether the artifact encodes a sub-window-length input.
func (a *Artifact) Empty() bool {
	return len(a.Chunks) == 0
}

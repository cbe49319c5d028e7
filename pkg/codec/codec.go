package codec

import "bytes"

// Codec is the facade over extraction, pattern compression and
// fingerprinting. It holds only configuration: every operation is pure,
// does no I/O, and owns its working set, so a single Codec may be shared
// freely across goroutines.
type Codec struct {
	params Params
}

// New builds a codec from params.
func New(params Params) (*Codec, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Codec{params: params}, nil
}

// NewDefault builds a codec with the stock parameters.
func NewDefault() *Codec {
	return &Codec{params: DefaultParams()}
}

// Params returns the codec's configuration.
func (c *Codec) Params() Params { return c.params }

// Encode converts input into an immutable artifact: chunk table, symbol
// stream, pattern-compressed token stream, dictionary, fingerprint and
// stats. Inputs shorter than the chunk window produce a degenerate artifact
// whose Remainder carries the raw bytes; that is valid, not an error.
func (c *Codec) Encode(input []byte) *Artifact {
	chunks, symbols := Extract(input, c.params.SymbolRange)
	tokens, dict, stats := Compress(symbols, c.params)

	a := &Artifact{
		Chunks:      chunks,
		Symbols:     symbols,
		Tokens:      tokens,
		Dictionary:  dict,
		Fingerprint: FingerprintOf(symbols, c.params.HashDepth),
		Stats:       stats,
	}
	if len(chunks) == 0 && len(input) > 0 {
		a.Remainder = append([]byte(nil), input...)
	}
	return a
}

// Decode reconstructs the original input from an artifact. It expands the
// token stream against the dictionary, verifies it against the chunk table,
// recomputes the fingerprint, and stitches the overlapping chunks back
// together. A missing dictionary entry or an inconsistent table aborts with
// a *DecodeError; a fingerprint mismatch aborts with an *IntegrityError.
// No partial output is ever returned.
func (c *Codec) Decode(a *Artifact) ([]byte, error) {
	if len(a.Symbols) != len(a.Chunks) {
		return nil, decodeErrorf("symbol stream length %d does not match chunk table length %d",
			len(a.Symbols), len(a.Chunks))
	}

	expanded, err := expand(a.Tokens, a.Dictionary)
	if err != nil {
		return nil, err
	}
	if len(expanded) != len(a.Chunks) {
		return nil, decodeErrorf("expanded stream has %d symbols, chunk table has %d",
			len(expanded), len(a.Chunks))
	}

	recomputed := FingerprintOf(expanded, c.params.HashDepth)
	if recomputed != a.Fingerprint {
		return nil, &IntegrityError{Stored: a.Fingerprint, Recomputed: recomputed}
	}

	return stitch(a)
}

// Fingerprint recomputes the artifact's content fingerprint from its symbol
// stream. It is independent of Decode and carries no reconstruction
// information.
func (c *Codec) Fingerprint(a *Artifact) string {
	return FingerprintOf(a.Symbols, c.params.HashDepth)
}

// expand replaces every reference token with its dictionary sub-sequence,
// reproducing the pre-compression symbol stream.
func expand(tokens []Token, dict Dictionary) ([]Symbol, error) {
	out := make([]Symbol, 0, len(tokens))
	for _, t := range tokens {
		if !t.Ref {
			out = append(out, t.Symbol)
			continue
		}
		seq, ok := dict.Lookup(t.Pattern)
		if !ok {
			return nil, decodeErrorf("reference token %s has no dictionary entry", t.Pattern)
		}
		out = append(out, seq...)
	}
	return out, nil
}

// stitch reconstructs the input from the overlapping chunk table: the first
// chunk whole, then the last byte of each subsequent chunk. Symbol identity
// plays no part here, which is why colliding symbols still decode exactly.
func stitch(a *Artifact) ([]byte, error) {
	if len(a.Chunks) == 0 {
		return append([]byte(nil), a.Remainder...), nil
	}
	var buf bytes.Buffer
	buf.Grow(len(a.Chunks) + ChunkWidth - 1)
	for i, chunk := range a.Chunks {
		if len(chunk) != ChunkWidth {
			return nil, decodeErrorf("chunk %d has width %d, want %d", i, len(chunk), ChunkWidth)
		}
		if i == 0 {
			buf.Write(chunk)
			continue
		}
		buf.WriteByte(chunk[ChunkWidth-1])
	}
	return buf.Bytes(), nil
}

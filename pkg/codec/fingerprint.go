package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Collapse applies SHA-256 to the symbol's textual form, iterated exactly
// depth times. A bounded loop, not recursion: constant stack, trivially
// parallelizable across symbols.
func Collapse(s Symbol, depth int) string {
	h := s.String()
	for i := 0; i < depth; i++ {
		sum := sha256.Sum256([]byte(h))
		h = hex.EncodeToString(sum[:])
	}
	return h
}

// FingerprintOf computes the content fingerprint of a symbol stream:
// SHA-256 over the concatenated symbol ids followed by the concatenated
// collapsed hashes, both in stream order. It is a pure, order-sensitive
// function of (symbols, depth), stable across processes, and carries no
// reconstruction information.
func FingerprintOf(symbols []Symbol, depth int) string {
	// Equal symbols collapse to equal hashes; memoize per distinct id.
	collapsed := make(map[Symbol]string)
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(s.String())
	}
	for _, s := range symbols {
		h, ok := collapsed[s]
		if !ok {
			h = Collapse(s, depth)
			collapsed[s] = h
		}
		b.WriteString(h)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

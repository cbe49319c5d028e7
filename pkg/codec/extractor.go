package codec

import (
	"crypto/sha256"
	"encoding/binary"
)

// Extract slides a ChunkWidth window across input and derives one symbol per
// window. Chunk i covers input[i : i+ChunkWidth] and overlaps its successor
// by all but one byte. Inputs shorter than the window yield empty slices;
// that is a degenerate input, not an error.
func Extract(input []byte, symbolRange int) ([][]byte, []Symbol) {
	if len(input) < ChunkWidth {
		return nil, nil
	}
	n := len(input) - ChunkWidth + 1
	chunks := make([][]byte, n)
	symbols := make([]Symbol, n)
	for i := 0; i < n; i++ {
		chunk := make([]byte, ChunkWidth)
		copy(chunk, input[i:i+ChunkWidth])
		chunks[i] = chunk
		symbols[i] = symbolOf(chunk, symbolRange)
	}
	return chunks, symbols
}

// symbolOf maps a chunk into [0, symbolRange). SHA-256 rather than a runtime
// hash so the mapping is stable across processes and platforms; the
// fingerprint depends on that stability.
func symbolOf(chunk []byte, symbolRange int) Symbol {
	sum := sha256.Sum256(chunk)
	v := binary.BigEndian.Uint64(sum[:8])
	return Symbol(v % uint64(symbolRange))
}

package codec

import "fmt"

// ChunkWidth is the width of the overlapping extraction window. The
// overlap-stitching reconstruction in Decode assumes this exact width.
const ChunkWidth = 2

// Params holds the pure configuration values of the codec. Two codecs built
// from equal Params produce byte-identical artifacts for equal inputs.
type Params struct {
	// SymbolRange bounds symbol ids to [0, SymbolRange). Collisions between
	// distinct chunks are expected and tolerated.
	SymbolRange int

	// HashDepth is the number of hash iterations applied per symbol when
	// collapsing it for the fingerprint.
	HashDepth int

	// MinPatternLength is the shortest symbol sub-sequence the compressor
	// will register in the dictionary.
	MinPatternLength int

	// MinOccurrences is the minimum number of occurrence start positions
	// (overlapping included) a candidate needs to be considered.
	MinOccurrences int

	// MinSavings is the minimum estimated net savings, in symbols, for a
	// candidate to be accepted.
	MinSavings int

	// MaxPatternLength caps the candidate lengths evaluated.
	MaxPatternLength int

	// ScanBudget caps the number of window positions examined per candidate
	// length, bounding worst-case scanning on highly repetitive inputs.
	ScanBudget int
}

// DefaultParams returns the stock configuration.
func DefaultParams() Params {
	return Params{
		SymbolRange:      10000,
		HashDepth:        4,
		MinPatternLength: 4,
		MinOccurrences:   3,
		MinSavings:       5,
		MaxPatternLength: 20,
		ScanBudget:       1 << 20,
	}
}

// Validate checks that the parameters are internally consistent.
func (p Params) Validate() error {
	if p.SymbolRange < 1 {
		return fmt.Errorf("symbol range must be positive, got %d", p.SymbolRange)
	}
	if p.HashDepth < 1 {
		return fmt.Errorf("hash depth must be positive, got %d", p.HashDepth)
	}
	if p.MinPatternLength < 2 {
		return fmt.Errorf("min pattern length must be at least 2, got %d", p.MinPatternLength)
	}
	if p.MinOccurrences < 2 {
		return fmt.Errorf("min occurrences must be at least 2, got %d", p.MinOccurrences)
	}
	if p.MaxPatternLength < p.MinPatternLength {
		return fmt.Errorf("max pattern length %d is below min pattern length %d",
			p.MaxPatternLength, p.MinPatternLength)
	}
	if p.ScanBudget < 1 {
		return fmt.Errorf("scan budget must be positive, got %d", p.ScanBudget)
	}
	return nil
}

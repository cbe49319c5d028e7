package codec

import (
	"encoding/binary"
	"sort"
	"sync"
)

// candidate is a repeated sub-sequence found during the scan phase.
type candidate struct {
	length   int
	firstPos int
	seq      []Symbol
	// positions holds every occurrence start, overlapping included.
	positions []int
	savings   int
}

type substitution struct {
	id     PatternID
	length int
}

// Compress rewrites repeated sub-sequences of the symbol stream as
// dictionary references. Candidate discovery per length is read-only and
// runs in parallel; acceptance is a single sequential pass in a fixed order
// (longest first, then higher savings, then earliest first occurrence), so
// identical streams always yield identical dictionaries and token streams.
// The rewritten stream is never longer than the input stream.
func Compress(symbols []Symbol, p Params) ([]Token, Dictionary, Stats) {
	n := len(symbols)
	stats := Stats{SymbolCount: n, Ratio: 1.0}

	maxLen := p.MaxPatternLength
	// An overlapping occurrence pair of length L needs at least L+minOcc-1
	// symbols.
	if limit := n - p.MinOccurrences + 1; limit < maxLen {
		maxLen = limit
	}
	if n < p.MinPatternLength*2 || maxLen < p.MinPatternLength {
		return passthrough(symbols, stats)
	}

	// Scan phase: one goroutine per candidate length, each read-only over
	// the stream, results slotted by length so ordering stays deterministic.
	perLength := make([][]candidate, maxLen-p.MinPatternLength+1)
	var wg sync.WaitGroup
	for length := p.MinPatternLength; length <= maxLen; length++ {
		wg.Add(1)
		go func(length int) {
			defer wg.Done()
			perLength[length-p.MinPatternLength] = scanLength(symbols, length, p)
		}(length)
	}
	wg.Wait()

	var candidates []candidate
	for _, cs := range perLength {
		candidates = append(candidates, cs...)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.length != b.length {
			return a.length > b.length
		}
		if a.savings != b.savings {
			return a.savings > b.savings
		}
		return a.firstPos < b.firstPos
	})

	// Acceptance phase: sequential, earlier acceptances consume index ranges
	// and gate everything after them.
	consumed := make([]bool, n)
	subs := make(map[int]substitution)
	var dict Dictionary
	for _, cand := range candidates {
		valid := unconsumed(cand.positions, cand.length, consumed)
		savings := estimateSavings(len(valid), cand.length)
		if len(valid) < p.MinOccurrences || savings <= 0 || savings < p.MinSavings {
			continue
		}
		chosen := nonOverlapping(valid, cand.length)
		if len(chosen) == 0 {
			continue
		}
		id := PatternID(len(dict.Patterns))
		// Acceptance thresholds use the overlap-inclusive count; the
		// recorded Occurrences and Saved reflect what substitution
		// actually realizes after overlap pruning.
		dict.Patterns = append(dict.Patterns, Pattern{
			ID:          id,
			Symbols:     cand.seq,
			Occurrences: len(chosen),
			Saved:       estimateSavings(len(chosen), cand.length),
		})
		for _, pos := range chosen {
			subs[pos] = substitution{id: id, length: cand.length}
			for j := pos; j < pos+cand.length; j++ {
				consumed[j] = true
			}
		}
	}

	if len(dict.Patterns) == 0 {
		return passthrough(symbols, stats)
	}

	tokens := make([]Token, 0, n)
	for i := 0; i < n; {
		if sub, ok := subs[i]; ok {
			tokens = append(tokens, reference(sub.id))
			i += sub.length
			continue
		}
		tokens = append(tokens, literal(symbols[i]))
		i++
	}

	stats.TokenCount = len(tokens)
	stats.PatternCount = len(dict.Patterns)
	stats.SymbolsSaved = n - len(tokens)
	stats.Ratio = float64(n) / float64(len(tokens))
	return tokens, dict, stats
}

// scanLength finds every sub-sequence of the given length that recurs often
// enough and saves enough space to be worth a dictionary entry. Occurrence
// starts are collected for all positions, overlap included; substitution
// sorts out overlaps later.
func scanLength(symbols []Symbol, length int, p Params) []candidate {
	windows := len(symbols) - length + 1
	if windows > p.ScanBudget {
		windows = p.ScanBudget
	}
	positions := make(map[string][]int, windows)
	for i := 0; i < windows; i++ {
		positions[seqKey(symbols[i:i+length])] = append(positions[seqKey(symbols[i:i+length])], i)
	}

	var found []candidate
	for _, occ := range positions {
		if len(occ) < p.MinOccurrences {
			continue
		}
		savings := estimateSavings(len(occ), length)
		if savings <= 0 || savings < p.MinSavings {
			continue
		}
		first := occ[0]
		seq := make([]Symbol, length)
		copy(seq, symbols[first:first+length])
		found = append(found, candidate{
			length:    length,
			firstPos:  first,
			seq:       seq,
			positions: occ,
			savings:   savings,
		})
	}
	// Map iteration order is random; first positions are unique per distinct
	// sub-sequence of one length, so this restores a total order.
	sort.Slice(found, func(i, j int) bool { return found[i].firstPos < found[j].firstPos })
	return found
}

// estimateSavings is occurrences*length minus the dictionary entry cost
// (length) and one reference token per occurrence.
func estimateSavings(occurrences, length int) int {
	return occurrences*length - length - occurrences
}

// unconsumed filters occurrence starts whose span overlaps an already
// consumed index range.
func unconsumed(positions []int, length int, consumed []bool) []int {
	var out []int
outer:
	for _, pos := range positions {
		for j := pos; j < pos+length; j++ {
			if consumed[j] {
				continue outer
			}
		}
		out = append(out, pos)
	}
	return out
}

// nonOverlapping greedily picks occurrence starts left to right so no two
// substituted spans overlap.
func nonOverlapping(positions []int, length int) []int {
	var out []int
	next := 0
	for _, pos := range positions {
		if pos >= next {
			out = append(out, pos)
			next = pos + length
		}
	}
	return out
}

func seqKey(seq []Symbol) string {
	buf := make([]byte, 4*len(seq))
	for i, s := range seq {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(s))
	}
	return string(buf)
}

func passthrough(symbols []Symbol, stats Stats) ([]Token, Dictionary, Stats) {
	tokens := make([]Token, len(symbols))
	for i, s := range symbols {
		tokens[i] = literal(s)
	}
	stats.TokenCount = len(tokens)
	return tokens, Dictionary{}, stats
}

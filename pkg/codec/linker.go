package codec

// SymbolLink pairs a symbol with the index of its predecessor position.
// The head of the stream has no predecessor.
type SymbolLink struct {
	Symbol      Symbol `json:"symbol"`
	Predecessor int    `json:"predecessor"` // -1 at index 0
}

// Adjacency is read-only structural metadata over a symbol stream: a flat
// predecessor array plus occurrence lists grouped by symbol id. It exists so
// two artifacts can be compared structurally; Decode never consults it.
type Adjacency struct {
	Links       []SymbolLink
	Occurrences map[Symbol][]int
}

// Link builds the adjacency metadata for a symbol stream. Because symbol ids
// may repeat, several positions can share an id; Occurrences records every
// position per distinct id, in stream order.
func Link(symbols []Symbol) Adjacency {
	links := make([]SymbolLink, len(symbols))
	occ := make(map[Symbol][]int)
	for i, s := range symbols {
		pred := i - 1
		if i == 0 {
			pred = -1
		}
		links[i] = SymbolLink{Symbol: s, Predecessor: pred}
		occ[s] = append(occ[s], i)
	}
	return Adjacency{Links: links, Occurrences: occ}
}

// SharedSymbols counts the distinct symbol ids present in both adjacencies,
// independent of position. Collisions make this a structural hint, never an
// identity check; use fingerprints for identity.
func (a Adjacency) SharedSymbols(b Adjacency) int {
	shared := 0
	for s := range a.Occurrences {
		if _, ok := b.Occurrences[s]; ok {
			shared++
		}
	}
	return shared
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_Predecessors(t *testing.T) {
	adj := Link([]Symbol{7, 3, 7, 9})
	require.Len(t, adj.Links, 4)

	assert.Equal(t, -1, adj.Links[0].Predecessor)
	assert.Equal(t, 0, adj.Links[1].Predecessor)
	assert.Equal(t, 1, adj.Links[2].Predecessor)
	assert.Equal(t, 2, adj.Links[3].Predecessor)
	assert.Equal(t, Symbol(7), adj.Links[2].Symbol)
}

func TestLink_GroupsOccurrencesByID(t *testing.T) {
	adj := Link([]Symbol{7, 3, 7, 9, 7})

	assert.Equal(t, []int{0, 2, 4}, adj.Occurrences[7])
	assert.Equal(t, []int{1}, adj.Occurrences[3])
	assert.Equal(t, []int{3}, adj.Occurrences[9])
}

func TestLink_Empty(t *testing.T) {
	adj := Link(nil)
	assert.Empty(t, adj.Links)
	assert.Empty(t, adj.Occurrences)
}

func TestSharedSymbols(t *testing.T) {
	a := Link([]Symbol{1, 2, 3, 2})
	b := Link([]Symbol{2, 3, 3, 4})

	assert.Equal(t, 2, a.SharedSymbols(b))
	assert.Equal(t, 2, b.SharedSymbols(a))
	assert.Equal(t, 0, a.SharedSymbols(Link(nil)))
}

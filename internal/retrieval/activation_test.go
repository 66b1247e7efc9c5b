package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icyhot/recall/internal/types"
)

func TestActivationStateActivatedAndRanking(t *testing.T) {
	s := newActivationState()
	assert.False(t, s.activated("m1"))

	s.activate(&types.Memory{ID: "m1"}, 0.4, 0)
	s.activate(&types.Memory{ID: "m2"}, 0.9, 1)
	s.activate(&types.Memory{ID: "m3"}, 0.9, 2)

	assert.True(t, s.activated("m1"))

	ranked := s.rankedMemories()
	assert.Len(t, ranked, 3)
	// m2 and m3 tie on activation; lower id breaks the tie, both ahead of m1.
	assert.Equal(t, []string{"m2", "m3", "m1"}, []string{ranked[0].Memory.ID, ranked[1].Memory.ID, ranked[2].Memory.ID})
	assert.Equal(t, 1, ranked[0].Hop)
}

// TestActivateOverwritesPriorValue: a later activate() call for an id already
// present overwrites rather than accumulates, matching the documented
// first-hop-wins semantics (activation is driven by the caller only
// calling activate for ids not yet activated via state.activated checks
// in spread/seed; this test pins the underlying overwrite behavior).
func TestActivateOverwritesPriorValue(t *testing.T) {
	s := newActivationState()
	s.activate(&types.Memory{ID: "m1"}, 0.2, 0)
	s.activate(&types.Memory{ID: "m1"}, 0.8, 1)

	ranked := s.rankedMemories()
	assert.Len(t, ranked, 1)
	assert.Equal(t, 0.8, ranked[0].Activation)
	assert.Equal(t, 1, ranked[0].Hop)
}

func TestRecordEdgeAccumulates(t *testing.T) {
	s := newActivationState()
	s.recordEdge("a", "b")
	s.recordEdge("b", "c")
	assert.Equal(t, [][2]string{{"a", "b"}, {"b", "c"}}, s.edges)
}

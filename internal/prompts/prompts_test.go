package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIncludesDateAndContacts(t *testing.T) {
	p := Extract("Had lunch with Sam.", "2026-07-31", []string{"Sam Carter"})
	assert.Contains(t, p, "2026-07-31")
	assert.Contains(t, p, "Sam Carter")
	assert.Contains(t, p, "Had lunch with Sam.")
}

func TestExtractOmitsKnownContactsLineWhenEmpty(t *testing.T) {
	p := Extract("A quiet day.", "2026-07-31", nil)
	assert.NotContains(t, p, "Known contacts:")
}

func TestAbstractIncludesContent(t *testing.T) {
	p := Abstract("Went to the lake with my sister.")
	assert.Contains(t, p, "Went to the lake with my sister.")
}

func TestDiscoverConnectionsVariesFramingByClusterKind(t *testing.T) {
	members := []ClusterMember{{ID: "m1", Content: "first"}, {ID: "m2", Content: "second"}}

	normal := DiscoverConnections(members, nil, false)
	assert.Contains(t, normal, "grouped by semantic similarity")

	anti := DiscoverConnections(members, []string{"Sam"}, true)
	assert.Contains(t, anti, "superficially unrelated")
	assert.Contains(t, anti, "Sam")
	assert.Contains(t, anti, ConnectionTypes)
	assert.Contains(t, anti, "[m1] first")
	assert.Contains(t, anti, "[m2] second")
}

func TestSynthesizeImplicationIncludesConnectionsWhenPresent(t *testing.T) {
	members := []ClusterMember{{ID: "m1", Content: "first"}}
	conns := []Connection{{MemoryAID: "m1", MemoryBID: "m2", ConnectionType: "causal", Reason: "because"}}

	p := SynthesizeImplication(members, conns, nil, false)
	assert.Contains(t, p, "Connections:")
	assert.Contains(t, p, "m1 -- m2: causal (because)")
	assert.Contains(t, p, ImplicationTypes)
}

func TestSynthesizeImplicationOmitsConnectionsSectionWhenEmpty(t *testing.T) {
	members := []ClusterMember{{ID: "m1", Content: "first"}}
	p := SynthesizeImplication(members, nil, nil, true)
	assert.NotContains(t, p, "Connections:")
	assert.Contains(t, p, "surface-unrelated")
}

func TestScoreIncludesContentAndSources(t *testing.T) {
	p := Score("A recurring pattern of avoidance.", []string{"skipped the call", "cancelled plans"})
	assert.Contains(t, p, "A recurring pattern of avoidance.")
	assert.Contains(t, p, "skipped the call")
	assert.Contains(t, p, "cancelled plans")
}

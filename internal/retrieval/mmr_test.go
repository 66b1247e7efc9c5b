package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

func testMMRConfig() *config.RetrievalConfig {
	return &config.RetrievalConfig{
		MMROverrepThreshold: 0.30,
		MMRMaxPerEntity:     3,
		MMRRelevanceWeight:  0.7,
		MMRDiversityWeight:  0.3,
	}
}

func mem(id string, activation float64, contacts ...string) ActivatedMemory {
	return ActivatedMemory{
		Memory:     &types.Memory{ID: id, ContactIDs: contacts},
		Activation: activation,
	}
}

func TestDiversifyMemoriesNoContactsIsStableByActivation(t *testing.T) {
	cfg := testMMRConfig()
	candidates := []ActivatedMemory{
		mem("a", 0.9),
		mem("b", 0.8),
		mem("c", 0.7),
	}
	out := diversifyMemories(candidates, cfg)
	assert.Equal(t, []string{"a", "b", "c"}, idsOf(out))
}

func TestDiversifyMemoriesSingleOrEmptyIsNoop(t *testing.T) {
	cfg := testMMRConfig()
	assert.Empty(t, diversifyMemories(nil, cfg))
	one := []ActivatedMemory{mem("a", 1)}
	assert.Equal(t, one, diversifyMemories(one, cfg))
}

// TestDiversifyMemoriesDemotesOverrepresentedContact: four of the five
// candidates touch contact "alice" (>30% of 5), one doesn't. A same-activation
// alice-free candidate should outrank a later alice candidate once two
// alice memories have already been selected (spec.md §4.9 step 9).
func TestDiversifyMemoriesDemotesOverrepresentedContact(t *testing.T) {
	cfg := testMMRConfig()
	candidates := []ActivatedMemory{
		mem("alice-1", 1.0, "alice"),
		mem("alice-2", 0.95, "alice"),
		mem("alice-3", 0.90, "alice"),
		mem("alice-4", 0.85, "alice"),
		mem("bob-1", 0.80, "bob"),
	}
	out := diversifyMemories(candidates, cfg)

	bobIndex := -1
	alice3Index := -1
	for i, c := range out {
		switch c.Memory.ID {
		case "bob-1":
			bobIndex = i
		case "alice-3":
			alice3Index = i
		}
	}
	assert.Less(t, bobIndex, alice3Index, "bob's sole candidate should surface before a third/fourth alice candidate despite lower raw activation")
}

func TestDiversityBonusNoOverrepresentedContactsIsMax(t *testing.T) {
	cfg := testMMRConfig()
	bonus := diversityBonus([]string{"x"}, map[string]bool{}, map[string]int{}, cfg)
	assert.Equal(t, 1.0, bonus)
}

func TestDiversityBonusEmptyContactsIsMax(t *testing.T) {
	cfg := testMMRConfig()
	bonus := diversityBonus(nil, map[string]bool{"x": true}, map[string]int{"x": 5}, cfg)
	assert.Equal(t, 1.0, bonus)
}

func TestDiversityBonusDecaysWithSelectedCount(t *testing.T) {
	cfg := testMMRConfig()
	over := map[string]bool{"alice": true}

	bonus0 := diversityBonus([]string{"alice"}, over, map[string]int{"alice": 0}, cfg)
	bonus1 := diversityBonus([]string{"alice"}, over, map[string]int{"alice": 1}, cfg)
	bonus3 := diversityBonus([]string{"alice"}, over, map[string]int{"alice": 3}, cfg)

	assert.Equal(t, 1.0, bonus0)
	assert.InDelta(t, 1.0-1.0/3.0, bonus1, 1e-9)
	assert.Equal(t, 0.0, bonus3, "penalty clamps to 0 rather than going negative")
}

func TestDiversifyImplicationsSingleOrEmptyIsNoop(t *testing.T) {
	cfg := testMMRConfig()
	assert.Empty(t, diversifyImplications(nil, nil, cfg))
	one := []RankedImplication{{Implication: &types.Implication{ID: "i1"}, Relevance: 0.5}}
	assert.Equal(t, one, diversifyImplications(one, nil, cfg))
}

// TestDiversifyImplicationsDemotesOverrepresentedContact mirrors
// TestDiversifyMemoriesDemotesOverrepresentedContact, but the entity
// signature comes from each implication's source memories' contact ids
// rather than a field on the implication itself.
func TestDiversifyImplicationsDemotesOverrepresentedContact(t *testing.T) {
	cfg := testMMRConfig()
	sourceMemories := []ActivatedMemory{
		mem("alice-1", 1.0, "alice"),
		mem("alice-2", 1.0, "alice"),
		mem("alice-3", 1.0, "alice"),
		mem("alice-4", 1.0, "alice"),
		mem("bob-1", 1.0, "bob"),
	}
	implications := []RankedImplication{
		{Implication: &types.Implication{ID: "i-alice-1", SourceMemoryIDs: []string{"alice-1"}}, Relevance: 1.0},
		{Implication: &types.Implication{ID: "i-alice-2", SourceMemoryIDs: []string{"alice-2"}}, Relevance: 0.95},
		{Implication: &types.Implication{ID: "i-alice-3", SourceMemoryIDs: []string{"alice-3"}}, Relevance: 0.90},
		{Implication: &types.Implication{ID: "i-alice-4", SourceMemoryIDs: []string{"alice-4"}}, Relevance: 0.85},
		{Implication: &types.Implication{ID: "i-bob-1", SourceMemoryIDs: []string{"bob-1"}}, Relevance: 0.80},
	}

	out := diversifyImplications(implications, sourceMemories, cfg)

	bobIndex, alice3Index := -1, -1
	for i, im := range out {
		switch im.Implication.ID {
		case "i-bob-1":
			bobIndex = i
		case "i-alice-3":
			alice3Index = i
		}
	}
	assert.Less(t, bobIndex, alice3Index, "bob's sole implication should surface before a third/fourth alice implication despite lower raw relevance")
}

// TestDiversifyImplicationsUnknownSourceHasEmptySignature covers a source
// memory id that isn't present in sourceMemories (e.g. it aged out of the
// activated set): its signature is empty, so it's never over-represented.
func TestDiversifyImplicationsUnknownSourceHasEmptySignature(t *testing.T) {
	cfg := testMMRConfig()
	implications := []RankedImplication{
		{Implication: &types.Implication{ID: "i1", SourceMemoryIDs: []string{"missing"}}, Relevance: 0.9},
		{Implication: &types.Implication{ID: "i2", SourceMemoryIDs: []string{"missing"}}, Relevance: 0.8},
	}
	out := diversifyImplications(implications, nil, cfg)
	assert.ElementsMatch(t, []string{"i1", "i2"}, []string{out[0].Implication.ID, out[1].Implication.ID})
}

func idsOf(candidates []ActivatedMemory) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Memory.ID
	}
	return ids
}

package retrieval

import (
	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

// diversifyMemories implements spec.md §4.9 step 9: a static histogram
// over the full candidate set marks contacts appearing in more than
// MMROverrepThreshold of candidates as over-represented; greedy MMR
// selection then trades relevance against a diversity bonus that decays
// as an over-represented contact accumulates selections, so a single
// heavily-journaled contact can't crowd out everything else. It
// reorders rather than drops: every candidate that reached this stage
// is still returned, just resequenced toward the user's actual journal
// mix.
func diversifyMemories(candidates []ActivatedMemory, cfg *config.RetrievalConfig) []ActivatedMemory {
	if len(candidates) <= 1 {
		return candidates
	}
	maxActivation := candidates[0].Activation
	for _, c := range candidates {
		if c.Activation > maxActivation {
			maxActivation = c.Activation
		}
	}
	if maxActivation == 0 {
		maxActivation = 1
	}

	histogram := make(map[string]int)
	for _, c := range candidates {
		for _, cid := range c.Memory.ContactIDs {
			histogram[cid]++
		}
	}
	overrepresented := make(map[string]bool, len(histogram))
	for cid, count := range histogram {
		if float64(count)/float64(len(candidates)) > cfg.MMROverrepThreshold {
			overrepresented[cid] = true
		}
	}

	remaining := append([]ActivatedMemory(nil), candidates...)
	selected := make([]ActivatedMemory, 0, len(candidates))
	selectedCount := make(map[string]int)

	for len(remaining) > 0 {
		bestIdx, bestScore := 0, -1.0
		for i, c := range remaining {
			bonus := diversityBonus(c.Memory.ContactIDs, overrepresented, selectedCount, cfg)
			score := cfg.MMRRelevanceWeight*(c.Activation/maxActivation) + cfg.MMRDiversityWeight*bonus
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
		chosen := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		selected = append(selected, chosen)
		for _, cid := range chosen.Memory.ContactIDs {
			selectedCount[cid]++
		}
	}
	return selected
}

// diversityBonus implements spec.md §4.9's
// `1 - max(entity_count_so_far/3) across over-represented contacts`,
// clamped to [0,1], and is 1.0 for a candidate with no contact_ids or
// none of them over-represented.
func diversityBonus(contactIDs []string, overrepresented map[string]bool, selectedCount map[string]int, cfg *config.RetrievalConfig) float64 {
	if len(contactIDs) == 0 {
		return 1.0
	}
	worst := 0.0
	any := false
	for _, cid := range contactIDs {
		if !overrepresented[cid] {
			continue
		}
		any = true
		penalty := float64(selectedCount[cid]) / float64(cfg.MMRMaxPerEntity)
		if penalty > worst {
			worst = penalty
		}
	}
	if !any {
		return 1.0
	}
	bonus := 1.0 - worst
	if bonus < 0 {
		bonus = 0
	}
	if bonus > 1 {
		bonus = 1
	}
	return bonus
}

// diversifyImplications applies spec.md §4.9 step 9's closing sentence:
// the same MMR procedure as diversifyMemories, but an implication's
// entity signature is the union of its source memories' contact ids,
// resolved against sourceMemories (the memory set already retrieved in
// this call — an implication whose source id isn't among them simply
// contributes nothing to its signature).
func diversifyImplications(implications []RankedImplication, sourceMemories []ActivatedMemory, cfg *config.RetrievalConfig) []RankedImplication {
	if len(implications) <= 1 {
		return implications
	}

	byID := make(map[string]*types.Memory, len(sourceMemories))
	for _, m := range sourceMemories {
		byID[m.Memory.ID] = m.Memory
	}
	signatureOf := func(im *types.Implication) []string {
		seen := make(map[string]bool)
		var ids []string
		for _, mid := range im.SourceMemoryIDs {
			mem := byID[mid]
			if mem == nil {
				continue
			}
			for _, cid := range mem.ContactIDs {
				if !seen[cid] {
					seen[cid] = true
					ids = append(ids, cid)
				}
			}
		}
		return ids
	}

	maxRelevance := implications[0].Relevance
	for _, im := range implications {
		if im.Relevance > maxRelevance {
			maxRelevance = im.Relevance
		}
	}
	if maxRelevance == 0 {
		maxRelevance = 1
	}

	signatures := make(map[string][]string, len(implications))
	histogram := make(map[string]int)
	for _, im := range implications {
		sig := signatureOf(im.Implication)
		signatures[im.Implication.ID] = sig
		for _, cid := range sig {
			histogram[cid]++
		}
	}
	overrepresented := make(map[string]bool, len(histogram))
	for cid, count := range histogram {
		if float64(count)/float64(len(implications)) > cfg.MMROverrepThreshold {
			overrepresented[cid] = true
		}
	}

	remaining := append([]RankedImplication(nil), implications...)
	selected := make([]RankedImplication, 0, len(implications))
	selectedCount := make(map[string]int)

	for len(remaining) > 0 {
		bestIdx, bestScore := 0, -1.0
		for i, im := range remaining {
			bonus := diversityBonus(signatures[im.Implication.ID], overrepresented, selectedCount, cfg)
			score := cfg.MMRRelevanceWeight*(im.Relevance/maxRelevance) + cfg.MMRDiversityWeight*bonus
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
		chosen := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		selected = append(selected, chosen)
		for _, cid := range signatures[chosen.Implication.ID] {
			selectedCount[cid]++
		}
	}
	return selected
}

package retrieval

import (
	"context"

	"github.com/icyhot/recall/internal/config"
)

// bridge implements spec.md §4.9 step 8: implications whose sources
// aren't already fully inside the activated set A can still pull in
// their missing source memories, scaled down as circumstantial
// evidence rather than directly activated recall.
func (e *Engine) bridge(ctx context.Context, userID string, queryVec []float32, aSet map[string]bool, opts Options, cfg *config.RetrievalConfig) ([]ActivatedMemory, []RankedImplication, error) {
	matches, err := e.deps.Store.KNNImplications(ctx, userID, queryVec, cfg.BridgingThreshold)
	if err != nil {
		return nil, nil, err
	}
	minStrength := opts.minStrength(cfg)

	var addedMemories []ActivatedMemory
	var addedImplications []RankedImplication
	for _, match := range matches {
		if len(addedMemories) >= cfg.MaxBridgingImplications {
			break
		}
		var missing []string
		for _, id := range match.Implication.SourceMemoryIDs {
			if !aSet[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			continue
		}
		mems, err := e.deps.Store.Get(ctx, missing)
		if err != nil {
			return nil, nil, err
		}
		bridgedAny := false
		for _, m := range mems {
			if len(addedMemories) >= cfg.MaxBridgingImplications {
				break
			}
			eff, err := e.effectiveStrength(ctx, userID, m, cfg)
			if err != nil {
				return nil, nil, err
			}
			if eff < minStrength {
				continue
			}
			addedMemories = append(addedMemories, ActivatedMemory{
				Memory:         m,
				Activation:     match.Similarity * eff * cfg.BridgingActivationScale,
				Hop:            -1,
				ViaImplication: match.Implication.Content,
			})
			aSet[m.ID] = true
			bridgedAny = true
		}
		if bridgedAny {
			addedImplications = append(addedImplications, RankedImplication{
				Implication: match.Implication,
				Relevance:   match.Similarity,
			})
		}
	}
	return addedMemories, addedImplications, nil
}

// hebbianUpdate implements spec.md §4.9 step 10: strengthen every
// traversed edge between two memories that both survived into the final
// activated set, then bump activation bookkeeping for the whole set.
func (e *Engine) hebbianUpdate(ctx context.Context, userID string, state *activationState, aSet map[string]bool, activatedIDs []string, cfg *config.RetrievalConfig) error {
	seen := make(map[[2]string]bool, len(state.edges))
	for _, edge := range state.edges {
		src, dst := edge[0], edge[1]
		if !aSet[src] || !aSet[dst] {
			continue
		}
		key := edge
		if key[0] > key[1] {
			key = [2]string{dst, src}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := e.deps.Graph.Strengthen(ctx, userID, src, dst, cfg.HebbianDeltaRetrieve); err != nil {
			return err
		}
	}
	return e.deps.Store.BulkBump(ctx, userID, activatedIDs)
}

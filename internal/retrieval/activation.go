package retrieval

import (
	"context"
	"math"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

// activationState tracks, per memory id, the activation and hop recorded
// when it was activated, plus the traversed edges used later for Hebbian
// write-back. activate overwrites any earlier entry; seed and spread only
// call it for ids not yet activated, so the first hop to reach a memory
// wins, mirroring a standard breadth-first spreading pass.
type activationState struct {
	activation map[string]float64
	hop        map[string]int
	memory     map[string]*types.Memory
	edges      [][2]string
}

func newActivationState() *activationState {
	return &activationState{
		activation: make(map[string]float64),
		hop:        make(map[string]int),
		memory:     make(map[string]*types.Memory),
	}
}

func (s *activationState) activated(id string) bool {
	_, ok := s.activation[id]
	return ok
}

func (s *activationState) activate(m *types.Memory, activation float64, hop int) {
	s.activation[m.ID] = activation
	s.hop[m.ID] = hop
	s.memory[m.ID] = m
}

func (s *activationState) recordEdge(a, b string) {
	s.edges = append(s.edges, [2]string{a, b})
}

func (s *activationState) rankedMemories() []ActivatedMemory {
	out := make([]ActivatedMemory, 0, len(s.activation))
	for id, act := range s.activation {
		out = append(out, ActivatedMemory{Memory: s.memory[id], Activation: act, Hop: s.hop[id]})
	}
	sortActivated(out)
	return out
}

func sortActivated(a []ActivatedMemory) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && less(a[j], a[j-1]); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

func less(a, b ActivatedMemory) bool {
	if a.Activation != b.Activation {
		return a.Activation > b.Activation
	}
	return a.Memory.ID < b.Memory.ID
}

// seed implements spec.md §4.9 steps 1-4: knn seed, effective-strength
// gate, initial activation at hop 0.
func (e *Engine) seed(ctx context.Context, state *activationState, userID string, vec []float32, opts Options, cfg *config.RetrievalConfig) error {
	matches, err := e.deps.Store.KNNByEmbedding(ctx, userID, vec, cfg.SeedCount, opts.ContactFilter)
	if err != nil {
		return err
	}
	minStrength := opts.minStrength(cfg)
	for _, match := range matches {
		eff, err := e.effectiveStrength(ctx, userID, match.Memory, cfg)
		if err != nil {
			return err
		}
		if eff < minStrength {
			continue
		}
		state.activate(match.Memory, match.Similarity*eff, 0)
	}
	return nil
}

// spread implements spec.md §4.9 step 5: for each hop, pull the edges
// touching the current frontier, propagate activation along them with
// exponential hop discount, apply the minimum-contribution cutoff and
// the contact/min-strength gates, and activate any memory reached for
// the first time.
func (e *Engine) spread(ctx context.Context, state *activationState, userID string, opts Options, cfg *config.RetrievalConfig) error {
	frontier := make([]string, 0, len(state.activation))
	for id := range state.activation {
		frontier = append(frontier, id)
	}
	minStrength := opts.minStrength(cfg)
	maxHops := opts.maxHops(cfg)

	memCache := make(map[string]*types.Memory)
	for id, m := range state.memory {
		memCache[id] = m
	}

	for h := 1; h <= maxHops && len(frontier) > 0; h++ {
		edges, err := e.deps.Graph.Neighbors(ctx, userID, frontier)
		if err != nil {
			return err
		}
		frontierSet := make(map[string]bool, len(frontier))
		for _, id := range frontier {
			frontierSet[id] = true
		}

		var next []string
		discount := math.Pow(cfg.HopDiscount, float64(h))
		for _, edge := range edges {
			for _, dir := range [2][2]string{{edge.MemoryAID, edge.MemoryBID}, {edge.MemoryBID, edge.MemoryAID}} {
				src, dst := dir[0], dir[1]
				if !frontierSet[src] || state.activated(dst) {
					continue
				}
				propagated := state.activation[src] * edge.Weight * discount
				if propagated < cfg.HopMinContribution {
					continue
				}
				dstMem, err := e.fetchMemory(ctx, memCache, dst)
				if err != nil {
					return err
				}
				if dstMem == nil {
					continue
				}
				if opts.ContactFilter != "" && !dstMem.HasContact(opts.ContactFilter) {
					continue
				}
				eff, err := e.effectiveStrength(ctx, userID, dstMem, cfg)
				if err != nil {
					return err
				}
				if eff < minStrength {
					continue
				}
				state.activate(dstMem, propagated, h)
				state.recordEdge(src, dst)
				next = append(next, dst)
			}
		}
		frontier = next
	}
	return nil
}

func (e *Engine) fetchMemory(ctx context.Context, cache map[string]*types.Memory, id string) (*types.Memory, error) {
	if m, ok := cache[id]; ok {
		return m, nil
	}
	found, err := e.deps.Store.Get(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		cache[id] = nil
		return nil, nil
	}
	cache[id] = found[0]
	return found[0], nil
}

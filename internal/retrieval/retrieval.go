// Package retrieval implements C9: spreading-activation retrieval over a
// user's memory graph, implication bridging, entity-diversity
// diversification, and Hebbian co-activation write-back.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/embedding"
	"github.com/icyhot/recall/internal/graphstore"
	"github.com/icyhot/recall/internal/implication"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectorstore"
)

// Dependencies holds the collaborators the retrieval engine needs.
type Dependencies struct {
	Store        *vectorstore.Store
	Graph        *graphstore.Store
	Implications *implication.Store
	Embedder     embedding.Provider
	Config       *config.RetrievalConfig
	Log          *logger.Logger
}

// Validate ensures all required dependencies are present.
func (d *Dependencies) Validate() error {
	if d.Store == nil {
		return fmt.Errorf("vector store is required")
	}
	if d.Graph == nil {
		return fmt.Errorf("graph store is required")
	}
	if d.Implications == nil {
		return fmt.Errorf("implication store is required")
	}
	if d.Embedder == nil {
		return fmt.Errorf("embedder is required")
	}
	if d.Config == nil {
		return fmt.Errorf("retrieval config is required")
	}
	if d.Log == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Engine is the C9 retrieval engine.
type Engine struct {
	deps *Dependencies
}

// New constructs an Engine.
func New(deps *Dependencies) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &Engine{deps: deps}, nil
}

// Options is spec.md §4.9's complete retrieval options surface. Nil
// pointer fields take the configured default.
type Options struct {
	MaxMemories   *int
	MaxHops       *int
	MinStrength   *float64
	ContactFilter string
	SkipHebbian   bool
	Diversify     *bool
}

func (o Options) maxMemories(cfg *config.RetrievalConfig) int {
	if o.MaxMemories != nil {
		return *o.MaxMemories
	}
	return cfg.DefaultMaxMemories
}

func (o Options) maxHops(cfg *config.RetrievalConfig) int {
	if o.MaxHops != nil {
		return *o.MaxHops
	}
	return cfg.DefaultMaxHops
}

func (o Options) minStrength(cfg *config.RetrievalConfig) float64 {
	if o.MinStrength != nil {
		return *o.MinStrength
	}
	return cfg.DefaultMinStrength
}

func (o Options) diversify() bool {
	if o.ContactFilter != "" {
		return false
	}
	if o.Diversify != nil {
		return *o.Diversify
	}
	return true
}

// ActivatedMemory is a memory surfaced by retrieval, annotated with its
// activation level and provenance.
type ActivatedMemory struct {
	Memory         *types.Memory
	Activation     float64
	Hop            int // 0 = seed, >0 = graph hop, -1 = implication bridge
	ViaImplication string
}

// RankedImplication is an implication surfaced by retrieval, annotated
// with its relevance to the activated memory set.
type RankedImplication struct {
	Implication *types.Implication
	Relevance   float64
}

// Result is the output of Retrieve.
type Result struct {
	Memories     []ActivatedMemory
	Implications []RankedImplication
	Connections  []*types.Connection
}

// Retrieve implements spec.md §4.9's algorithm end to end.
func (e *Engine) Retrieve(ctx context.Context, userID, queryText string, opts Options) (*Result, error) {
	cfg := e.deps.Config
	log := e.deps.Log.WithComponent("retrieval").WithUser(userID)

	vecs, err := e.deps.Embedder.Embed(ctx, []string{queryText})
	if err != nil || len(vecs) == 0 {
		return nil, err
	}
	queryVec := vecs[0]

	state := newActivationState()
	if err := e.seed(ctx, state, userID, queryVec, opts, cfg); err != nil {
		return nil, err
	}
	if err := e.spread(ctx, state, userID, opts, cfg); err != nil {
		return nil, err
	}

	ranked := state.rankedMemories()
	maxMem := opts.maxMemories(cfg)
	if len(ranked) > maxMem {
		ranked = ranked[:maxMem]
	}
	activatedIDs := make([]string, len(ranked))
	aSet := make(map[string]bool, len(ranked))
	for i, a := range ranked {
		activatedIDs[i] = a.Memory.ID
		aSet[a.Memory.ID] = true
	}

	overlaps, err := e.deps.Implications.ListBySourceOverlap(ctx, userID, activatedIDs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(overlaps, func(i, j int) bool {
		si := overlaps[i].Relevance * overlaps[i].Implication.Strength
		sj := overlaps[j].Relevance * overlaps[j].Implication.Strength
		if si != sj {
			return si > sj
		}
		return overlaps[i].Implication.ID < overlaps[j].Implication.ID
	})
	if len(overlaps) > cfg.MaxImplications {
		overlaps = overlaps[:cfg.MaxImplications]
	}
	implications := make([]RankedImplication, len(overlaps))
	for i, o := range overlaps {
		implications[i] = RankedImplication{Implication: o.Implication, Relevance: o.Relevance}
	}

	bridged, bridgedImpls, err := e.bridge(ctx, userID, queryVec, aSet, opts, cfg)
	if err != nil {
		return nil, err
	}
	ranked = append(ranked, bridged...)
	implications = append(implications, bridgedImpls...)

	if opts.diversify() {
		ranked = diversifyMemories(ranked, cfg)
		implications = diversifyImplications(implications, ranked, cfg)
	}

	connections, err := e.connectionsAmong(ctx, userID, ranked)
	if err != nil {
		return nil, err
	}

	if !opts.SkipHebbian && len(activatedIDs) >= 2 {
		if err := e.hebbianUpdate(ctx, userID, state, aSet, activatedIDs, cfg); err != nil {
			log.Warn("hebbian write-back failed", "error", err)
		}
	}

	return &Result{Memories: ranked, Implications: implications, Connections: connections}, nil
}

// effectiveStrength computes eff = strength * exp(-ln2 * daysSince / halfLife)
// per spec.md §4.9 step 3, choosing the half-life based on whether the
// memory has any graph connections.
func (e *Engine) effectiveStrength(ctx context.Context, userID string, m *types.Memory, cfg *config.RetrievalConfig) (float64, error) {
	count, err := e.deps.Graph.ConnectionCount(ctx, userID, m.ID)
	if err != nil {
		return 0, err
	}
	halfLife := cfg.HalfLifeIsolatedDays
	if count > 0 {
		halfLife = cfg.HalfLifeConnectedDays
	}
	daysSince := time.Since(m.LastActivatedAt).Hours() / 24
	if daysSince < 0 {
		daysSince = 0
	}
	return m.Strength * math.Exp(-math.Ln2*daysSince/halfLife), nil
}

func (e *Engine) connectionsAmong(ctx context.Context, userID string, ranked []ActivatedMemory) ([]*types.Connection, error) {
	ids := make([]string, len(ranked))
	present := make(map[string]bool, len(ranked))
	for i, a := range ranked {
		ids[i] = a.Memory.ID
		present[a.Memory.ID] = true
	}
	all, err := e.deps.Graph.Neighbors(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	var out []*types.Connection
	for _, c := range all {
		if present[c.MemoryAID] && present[c.MemoryBID] {
			out = append(out, c)
		}
	}
	return out, nil
}

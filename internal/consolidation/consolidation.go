// Package consolidation implements C8: clustering and anti-clustering
// over a user's memories, followed by a three-stage LLM pipeline per
// cluster (discover connections, synthesize an implication, quality-gate
// it), producing a per-run Digest.
package consolidation

import (
	"context"
	"fmt"
	"time"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/digeststore"
	"github.com/icyhot/recall/internal/graphstore"
	"github.com/icyhot/recall/internal/implication"
	"github.com/icyhot/recall/internal/llmclient"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/prompts"
	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectormath"
	"github.com/icyhot/recall/internal/vectorstore"
)

// Dependencies holds the collaborators the consolidator needs.
type Dependencies struct {
	Store        *vectorstore.Store
	Graph        *graphstore.Store
	Implications *implication.Store
	LLM          *llmclient.Client
	Digests      *digeststore.Store
	Config       *config.ConsolidationConfig
	LLMTimeout   time.Duration
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
	if d.LLM == nil {
		return fmt.Errorf("llm client is required")
	}
	if d.Digests == nil {
		return fmt.Errorf("digest store is required")
	}
	if d.Config == nil {
		return fmt.Errorf("consolidation config is required")
	}
	if d.Log == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Engine is the C8 consolidator.
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

// run accumulates the state built up across one consolidation pass,
// before it is committed to a types.Digest.
type run struct {
	userID    string
	date      string
	startedAt time.Time
	contacts  []string

	clustersFound           int
	antiClustersFound       int
	connectionsCreated      int
	connectionsStrengthened int
	implicationsCreated     int
	implicationsReinforced  int
	implicationsFiltered    int
	snippets                []types.DigestSnippet
}

// Consolidate runs one idempotent-per-day consolidation pass for userID
// and persists its Digest (spec.md §4.8, §4.10). contactNames is the
// user's contact name snapshot, passed through to the LLM prompts for
// phrasing only.
func (e *Engine) Consolidate(ctx context.Context, userID, date string, contactNames []string) (*types.Digest, error) {
	log := e.deps.Log.WithComponent("consolidation").WithUser(userID)
	r := &run{userID: userID, date: date, startedAt: time.Now().UTC(), contacts: contactNames}

	deleted, err := e.deps.Implications.GlobalDedup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		log.Info("global implication dedup removed near-duplicates", "count", deleted)
	}

	clusters, err := e.discoverClusters(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.clustersFound = len(clusters)

	antiClusters, err := e.discoverAntiClusters(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.antiClustersFound = len(antiClusters)

	for _, c := range append(clusters, antiClusters...) {
		if err := e.processCluster(ctx, r, c); err != nil {
			log.Warn("cluster processing failed, skipping", "error", err)
		}
	}

	d := &types.Digest{
		UserID:                  userID,
		Date:                    date,
		StartedAt:               r.startedAt,
		EndedAt:                 time.Now().UTC(),
		ClustersFound:           r.clustersFound,
		AntiClustersFound:       r.antiClustersFound,
		ConnectionsCreated:      r.connectionsCreated,
		ConnectionsStrengthened: r.connectionsStrengthened,
		ImplicationsCreated:     r.implicationsCreated,
		ImplicationsReinforced:  r.implicationsReinforced,
		ImplicationsFiltered:    r.implicationsFiltered,
		Summary: fmt.Sprintf("%d clusters, %d anti-clusters; %d connections created, %d strengthened; %d implications created, %d reinforced, %d filtered",
			r.clustersFound, r.antiClustersFound, r.connectionsCreated, r.connectionsStrengthened,
			r.implicationsCreated, r.implicationsReinforced, r.implicationsFiltered),
		Snippets: r.snippets,
	}
	if err := e.deps.Digests.Upsert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// processCluster runs the three-stage LLM pipeline for a single cluster:
// discover connections, synthesize an implication, quality-gate it.
func (e *Engine) processCluster(ctx context.Context, r *run, c cluster) error {
	ids := make(map[string]bool, len(c.members))
	members := make([]prompts.ClusterMember, len(c.members))
	var sourceContents []string
	for i, m := range c.members {
		ids[m.ID] = true
		members[i] = prompts.ClusterMember{ID: m.ID, Content: m.Content}
		sourceContents = append(sourceContents, m.Content)
	}

	discovered, err := e.deps.LLM.DiscoverConnections(ctx, members, r.contacts, c.isAntiCluster, e.deps.LLMTimeout)
	if err != nil {
		return err
	}

	var validConns []prompts.Connection
	for _, dc := range discovered {
		if !ids[dc.MemoryAID] || !ids[dc.MemoryBID] {
			continue
		}
		if len(dc.Reason) < 10 {
			continue
		}
		existed, err := e.deps.Graph.UpsertConnection(ctx, r.userID, dc.MemoryAID, dc.MemoryBID, types.ConnectionType(dc.ConnectionType), dc.Reason)
		if err != nil {
			return err
		}
		if existed {
			r.connectionsStrengthened++
			if err := e.deps.Store.BulkBump(ctx, r.userID, []string{dc.MemoryAID, dc.MemoryBID}); err != nil {
				return err
			}
		} else {
			r.connectionsCreated++
		}
		r.snippets = append(r.snippets, types.DigestSnippet{
			Kind:    "connection",
			Summary: fmt.Sprintf("%s: %s -- %s (%s)", dc.ConnectionType, dc.MemoryAID, dc.MemoryBID, dc.Reason),
		})
		validConns = append(validConns, prompts.Connection{
			MemoryAID:      dc.MemoryAID,
			MemoryBID:      dc.MemoryBID,
			ConnectionType: dc.ConnectionType,
			Reason:         dc.Reason,
		})
	}

	synthesized, err := e.deps.LLM.SynthesizeImplication(ctx, members, validConns, r.contacts, c.isAntiCluster, e.deps.LLMTimeout)
	if err != nil {
		return err
	}
	if len(synthesized) == 0 {
		return nil
	}
	candidate := synthesized[0]

	// An implication may only cite memories that actually exist in this
	// cluster; a partially-hallucinated id list is trimmed down to the
	// ids the LLM's own cluster prompt was given.
	validSourceIDs := make([]string, 0, len(candidate.SourceMemoryIDs))
	for _, id := range candidate.SourceMemoryIDs {
		if ids[id] {
			validSourceIDs = append(validSourceIDs, id)
		}
	}
	if len(candidate.Content) < 20 || len(validSourceIDs) == 0 {
		r.implicationsFiltered++
		return nil
	}

	score, err := e.deps.LLM.Score(ctx, candidate.Content, sourceContents, e.deps.LLMTimeout)
	if err != nil {
		return err
	}
	if score == 0 {
		if !e.deps.Config.QualityFailOpen {
			r.implicationsFiltered++
			return nil
		}
	} else if score < e.deps.Config.QualityThreshold {
		r.implicationsFiltered++
		return nil
	}

	embedded, err := e.abstractOrRawEmbedding(c)
	if err != nil {
		return err
	}

	im, reinforced, err := e.deps.Implications.InsertOrReinforce(ctx, implication.Candidate{
		UserID:           r.userID,
		Content:          candidate.Content,
		Embedding:        embedded,
		ImplicationType:  types.ImplicationType(candidate.ImplicationType),
		ImplicationOrder: candidate.Order,
		SourceMemoryIDs:  validSourceIDs,
	})
	if err != nil {
		return err
	}
	if reinforced {
		r.implicationsReinforced++
	} else {
		r.implicationsCreated++
	}
	r.snippets = append(r.snippets, types.DigestSnippet{
		Kind:    "implication",
		Summary: fmt.Sprintf("%s: %s", im.ImplicationType, im.Content),
	})
	return nil
}

// abstractOrRawEmbedding centroids the cluster's embeddings to give the
// new implication a representative vector; implications are not embedded
// by the LLM (spec.md §4.7 only requires an embedding be supplied, not
// how it is produced), so this engine derives one from its sources
// instead of an extra C1 round trip.
func (e *Engine) abstractOrRawEmbedding(c cluster) ([]float32, error) {
	if len(c.members) == 0 || len(c.members[0].Embedding) == 0 {
		return nil, fmt.Errorf("cluster has no embedded members")
	}
	dim := len(c.members[0].Embedding)
	sum := make([]float32, dim)
	for _, m := range c.members {
		for i, v := range m.Embedding {
			if i < dim {
				sum[i] += v
			}
		}
	}
	for i := range sum {
		sum[i] /= float32(len(c.members))
	}
	return vectormath.Normalize(sum), nil
}

// Package implication implements C7: higher-order insight storage with
// dedup-on-insert, source-overlap retrieval, and whole-user dedup sweeps
// used by the consolidator.
package implication

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectorstore"
)

// Store is the C7 implication engine, layered over the C3 vector store.
type Store struct {
	vs        *vectorstore.Store
	threshold float64 // SIM_IMPL_DEDUP
}

// New constructs a Store. threshold is SIM_IMPL_DEDUP (spec.md §4.7,
// default 0.75).
func New(vs *vectorstore.Store, threshold float64) (*Store, error) {
	if vs == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("implication dedup threshold must be in (0,1)")
	}
	return &Store{vs: vs, threshold: threshold}, nil
}

// Candidate is a not-yet-persisted implication, as produced by the
// consolidator's synthesis stage.
type Candidate struct {
	UserID           string
	Content          string
	Embedding        []float32
	ImplicationType  types.ImplicationType
	ImplicationOrder int
	SourceMemoryIDs  []string
}

// InsertOrReinforce implements spec.md §4.7's insert_or_reinforce: if an
// implication within threshold already exists for this user, bump its
// strength by 0.1 and return it with reinforced=true; otherwise insert a
// new row at strength 1.0 and return it with reinforced=false.
func (s *Store) InsertOrReinforce(ctx context.Context, c Candidate) (*types.Implication, bool, error) {
	matches, err := s.vs.KNNImplications(ctx, c.UserID, c.Embedding, s.threshold)
	if err != nil {
		return nil, false, err
	}
	if len(matches) > 0 {
		top := matches[0].Implication
		if err := s.vs.ReinforceImplication(ctx, top.ID, 0.1); err != nil {
			return nil, false, err
		}
		top.Strength += 0.1
		top.LastReinforcedAt = time.Now().UTC()
		return top, true, nil
	}

	now := time.Now().UTC()
	im := &types.Implication{
		ID:               shortuuid.New(),
		UserID:           c.UserID,
		Content:          c.Content,
		Embedding:        c.Embedding,
		ImplicationType:  c.ImplicationType,
		ImplicationOrder: c.ImplicationOrder,
		SourceMemoryIDs:  c.SourceMemoryIDs,
		Strength:         1.0,
		CreatedAt:        now,
		LastReinforcedAt: now,
	}
	if err := s.vs.InsertImplication(ctx, im); err != nil {
		return nil, false, err
	}
	return im, false, nil
}

// ListBySourceOverlap returns every implication whose source_memory_ids
// intersects activatedIDs, annotated with relevance =
// |intersection| / |source_memory_ids| (spec.md §4.7), ordered by
// relevance descending then id ascending.
type Overlap struct {
	Implication *types.Implication
	Relevance   float64
}

func (s *Store) ListBySourceOverlap(ctx context.Context, userID string, activatedIDs []string) ([]Overlap, error) {
	all, err := s.allForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	activated := make(map[string]bool, len(activatedIDs))
	for _, id := range activatedIDs {
		activated[id] = true
	}

	var out []Overlap
	for _, im := range all {
		n := im.SourceOverlap(activated)
		if n == 0 || len(im.SourceMemoryIDs) == 0 {
			continue
		}
		out = append(out, Overlap{Implication: im, Relevance: float64(n) / float64(len(im.SourceMemoryIDs))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].Implication.ID < out[j].Implication.ID
	})
	return out, nil
}

// GlobalDedup implements spec.md §4.7's global_dedup: iterate implications
// by strength descending; for each not-yet-absorbed row, find every row
// with cosine similarity above threshold and delete them, keeping the
// strongest. Returns the count of deleted rows. Run once per consolidation
// cycle, before cluster processing.
func (s *Store) GlobalDedup(ctx context.Context, userID string) (int, error) {
	all, err := s.allForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Strength != all[j].Strength {
			return all[i].Strength > all[j].Strength
		}
		return all[i].ID < all[j].ID
	})

	absorbed := make(map[string]bool, len(all))
	var toDelete []string
	for _, im := range all {
		if absorbed[im.ID] {
			continue
		}
		for _, other := range all {
			if other.ID == im.ID || absorbed[other.ID] {
				continue
			}
			if vectorstore.CosineOf(im.Embedding, other.Embedding) > s.threshold {
				absorbed[other.ID] = true
				toDelete = append(toDelete, other.ID)
			}
		}
	}
	if len(toDelete) == 0 {
		return 0, nil
	}
	if err := s.vs.DeleteImplications(ctx, toDelete); err != nil {
		return 0, err
	}
	return len(toDelete), nil
}

// allForUser fetches every implication owned by userID.
func (s *Store) allForUser(ctx context.Context, userID string) ([]*types.Implication, error) {
	return s.vs.ScrollImplications(ctx, userID)
}

// Package vectorstore persists memories and implications in Qdrant (C3):
// their content, embeddings, and payload fields, with approximate nearest
// neighbor cosine search and atomic reinforcement operations.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectormath"
)

// MemoryMatch is a memory row annotated with its cosine similarity to a
// query vector, as returned by the KNN operations.
type MemoryMatch struct {
	Memory     *types.Memory
	Similarity float64
}

// ImplicationMatch is an implication row annotated with its cosine
// similarity to a query vector.
type ImplicationMatch struct {
	Implication *types.Implication
	Similarity  float64
}

// Store is the Qdrant-backed implementation of C3.
type Store struct {
	client *qdrant.Client
	cfg    *config.VectorStoreConfig
}

// New constructs a Store from configuration.
func New(cfg *config.VectorStoreConfig) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   extractHost(cfg.URL),
		Port:                   extractPort(cfg.URL),
		APIKey:                 cfg.APIKey,
		UseTLS:                 !cfg.Insecure,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Initialize ensures the memories and implications collections exist.
func (s *Store) Initialize(ctx context.Context) error {
	for _, name := range []string{s.cfg.MemoriesCollection, s.cfg.ImplicationsCollection} {
		exists, err := s.collectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check collection %s: %w", name, err)
		}
		if !exists {
			if err := s.createCollection(ctx, name); err != nil {
				return fmt.Errorf("failed to create collection %s: %w", name, err)
			}
		}
	}
	return nil
}

func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) createCollection(ctx context.Context, name string) error {
	onDisk := s.cfg.OnDiskPayload
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.cfg.VectorDimension),
					Distance: qdrant.Distance_Cosine,
					OnDisk:   &onDisk,
				},
			},
		},
	})
}

// HealthCheck reports whether the Qdrant server is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	return err
}

// --- Memories ---

// InsertMemory requires the memory already carry an embedding and a
// generated id; it persists the row and returns any store error.
func (s *Store) InsertMemory(ctx context.Context, m *types.Memory) error {
	if err := types.Assert(len(m.Embedding) > 0, "insert_memory requires an embedding"); err != nil {
		return err
	}
	point := memoryToPoint(m)
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.MemoriesCollection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// Reinforce applies Δstrength/Δactivation to a memory and sets
// last_activated_at = now, retrying once on a transient store error
// (spec.md §7: idempotent increments retry once at the store layer).
func (s *Store) Reinforce(ctx context.Context, userID, id string, deltaStrength float64, deltaActivation int) error {
	op := func() error { return s.reinforceOnce(ctx, userID, id, deltaStrength, deltaActivation) }
	if err := op(); err != nil {
		if err2 := op(); err2 != nil {
			return &types.ErrStoreConflict{Cause: err2}
		}
	}
	return nil
}

func (s *Store) reinforceOnce(ctx context.Context, userID, id string, deltaStrength float64, deltaActivation int) error {
	m, err := s.getOneMemory(ctx, s.cfg.MemoriesCollection, id)
	if err != nil {
		return err
	}
	m.Strength += deltaStrength
	m.ActivationCount += deltaActivation
	m.LastActivatedAt = time.Now().UTC()
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.MemoriesCollection,
		Points:         []*qdrant.PointStruct{memoryToPoint(m)},
	})
	return err
}

// SetAbstractEmbedding writes the async abstract-embedding backfill
// (spec.md §4.5) for an existing memory, retrying once on a transient
// store error.
func (s *Store) SetAbstractEmbedding(ctx context.Context, userID, id string, vec []float32) error {
	op := func() error { return s.setAbstractEmbeddingOnce(ctx, id, vec) }
	if err := op(); err != nil {
		if err2 := op(); err2 != nil {
			return &types.ErrStoreConflict{Cause: err2}
		}
	}
	return nil
}

func (s *Store) setAbstractEmbeddingOnce(ctx context.Context, id string, vec []float32) error {
	m, err := s.getOneMemory(ctx, s.cfg.MemoriesCollection, id)
	if err != nil {
		return err
	}
	m.AbstractEmbedding = vec
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.MemoriesCollection,
		Points:         []*qdrant.PointStruct{memoryToPoint(m)},
	})
	return err
}

// BulkBump atomically increments activation_count by 1 and sets
// last_activated_at = now for every id in ids.
func (s *Store) BulkBump(ctx context.Context, userID string, ids []string) error {
	for _, id := range ids {
		if err := s.Reinforce(ctx, userID, id, 0, 1); err != nil {
			return err
		}
	}
	return nil
}

// KNNByEmbedding returns up to k memories owned by userID ranked by
// cosine similarity to vec descending, tie-broken by id. If contactID is
// non-empty only memories whose ContactIDs contains it are returned.
func (s *Store) KNNByEmbedding(ctx context.Context, userID string, vec []float32, k int, contactID string) ([]MemoryMatch, error) {
	return s.knnMemories(ctx, userID, vec, k, contactID)
}

// KNNByAbstract is analogous to KNNByEmbedding over the abstract_embedding
// column, used by the anti-clustering pass. The abstract column only ever
// holds up to a few thousand rows per user between consolidation runs, so
// a brute-force scroll-and-rank (spec.md §4.3's sanctioned fallback) keeps
// this independent of Qdrant's single configured vector per collection.
func (s *Store) KNNByAbstract(ctx context.Context, userID string, vec []float32, k int) ([]MemoryMatch, error) {
	all, err := s.scrollUserMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MemoryMatch, 0, len(all))
	for _, m := range all {
		if len(m.AbstractEmbedding) == 0 {
			continue
		}
		out = append(out, MemoryMatch{Memory: m, Similarity: vectormath.Cosine(vec, m.AbstractEmbedding)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Memory.ID < out[j].Memory.ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// scrollUserMemories pages through every memory owned by userID.
func (s *Store) scrollUserMemories(ctx context.Context, userID string) ([]*types.Memory, error) {
	var out []*types.Memory
	var offset *qdrant.PointId
	for {
		limit := uint32(256)
		resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.cfg.MemoriesCollection,
			Filter:         userFilter(userID),
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, &types.ErrStoreConflict{Cause: err}
		}
		for _, p := range resp {
			m, err := pointPayloadToMemory(p.Id.GetUuid(), p.Payload)
			if err != nil {
				continue
			}
			if vectors := p.Vectors; vectors != nil {
				if vector := vectors.GetVector(); vector != nil {
					m.Embedding = vector.Data
				}
			}
			out = append(out, m)
		}
		if len(resp) < int(limit) {
			break
		}
		offset = resp[len(resp)-1].Id
	}
	return out, nil
}

// ListMemories returns every memory owned by userID, used by C8's
// clustering pass which needs the full per-user set sorted by its own
// scoring function rather than a similarity-ranked subset.
func (s *Store) ListMemories(ctx context.Context, userID string) ([]*types.Memory, error) {
	return s.scrollUserMemories(ctx, userID)
}

func (s *Store) knnMemories(ctx context.Context, userID string, vec []float32, k int, contactID string) ([]MemoryMatch, error) {
	limit := uint64(k)
	if contactID != "" {
		// Over-fetch since the contact filter is applied client-side via set
		// containment (spec.md §9 Open Question #1).
		limit = uint64(k * 20)
		if limit < 200 {
			limit = 200
		}
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.MemoriesCollection,
		Query:          qdrant.NewQuery(vec...),
		Filter:         userFilter(userID),
		Limit:          &limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}

	out := make([]MemoryMatch, 0, len(resp))
	for _, sp := range resp {
		m, err := pointPayloadToMemory(sp.Id.GetUuid(), sp.Payload)
		if err != nil {
			continue
		}
		if contactID != "" && !m.HasContact(contactID) {
			continue
		}
		if vectors := sp.Vectors; vectors != nil {
			if vector := vectors.GetVector(); vector != nil {
				m.Embedding = vector.Data
			}
		}
		out = append(out, MemoryMatch{Memory: m, Similarity: float64(sp.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Memory.ID < out[j].Memory.ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Get retrieves memories by id, filtering out ids that no longer exist
// rather than erroring (dangling provenance, spec.md §7).
func (s *Store) Get(ctx context.Context, ids []string) ([]*types.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
	}
	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.cfg.MemoriesCollection,
		Ids:            pointIDs,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	out := make([]*types.Memory, 0, len(resp))
	for _, rp := range resp {
		m, err := pointPayloadToMemory(rp.Id.GetUuid(), rp.Payload)
		if err != nil {
			continue
		}
		if vectors := rp.Vectors; vectors != nil {
			if vector := vectors.GetVector(); vector != nil {
				m.Embedding = vector.Data
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) getOneMemory(ctx context.Context, collection, id string) (*types.Memory, error) {
	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, &types.ErrNotFound{Kind: "memory", ID: id}
	}
	m, err := pointPayloadToMemory(resp[0].Id.GetUuid(), resp[0].Payload)
	if err != nil {
		return nil, err
	}
	if vectors := resp[0].Vectors; vectors != nil {
		if vector := vectors.GetVector(); vector != nil {
			m.Embedding = vector.Data
		}
	}
	return m, nil
}

// --- Implications ---

// InsertImplication persists a new implication row.
func (s *Store) InsertImplication(ctx context.Context, im *types.Implication) error {
	point := implicationToPoint(im)
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// ReinforceImplication bumps strength and last_reinforced_at for an
// existing implication.
func (s *Store) ReinforceImplication(ctx context.Context, id string, deltaStrength float64) error {
	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Ids:            []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil || len(resp) == 0 {
		return &types.ErrNotFound{Kind: "implication", ID: id}
	}
	im, err := retrievedPointToImplication(resp[0])
	if err != nil {
		return err
	}
	im.Strength += deltaStrength
	im.LastReinforcedAt = time.Now().UTC()
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Points:         []*qdrant.PointStruct{implicationToPoint(im)},
	})
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// KNNImplications returns implications owned by userID whose cosine
// similarity to vec strictly exceeds threshold, ordered by similarity
// descending.
func (s *Store) KNNImplications(ctx context.Context, userID string, vec []float32, threshold float64) ([]ImplicationMatch, error) {
	limit := uint64(200)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Query:          qdrant.NewQuery(vec...),
		Filter:         userFilter(userID),
		Limit:          &limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	out := make([]ImplicationMatch, 0, len(resp))
	for _, sp := range resp {
		if float64(sp.Score) <= threshold {
			continue
		}
		im, err := pointPayloadToImplication(sp.Id.GetUuid(), sp.Payload)
		if err != nil {
			continue
		}
		out = append(out, ImplicationMatch{Implication: im, Similarity: float64(sp.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Implication.ID < out[j].Implication.ID
	})
	return out, nil
}

// ScrollImplications pages through every implication owned by userID,
// used by C7's global_dedup and source-overlap sweeps which need the full
// per-user set rather than a similarity-ranked subset.
func (s *Store) ScrollImplications(ctx context.Context, userID string) ([]*types.Implication, error) {
	var out []*types.Implication
	var offset *qdrant.PointId
	for {
		limit := uint32(256)
		resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.cfg.ImplicationsCollection,
			Filter:         userFilter(userID),
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, &types.ErrStoreConflict{Cause: err}
		}
		for _, p := range resp {
			im, err := pointPayloadToImplication(p.Id.GetUuid(), p.Payload)
			if err != nil {
				continue
			}
			if vectors := p.Vectors; vectors != nil {
				if vector := vectors.GetVector(); vector != nil {
					im.Embedding = vector.Data
				}
			}
			out = append(out, im)
		}
		if len(resp) < int(limit) {
			break
		}
		offset = resp[len(resp)-1].Id
	}
	return out, nil
}

// GetImplications retrieves implications by id.
func (s *Store) GetImplications(ctx context.Context, ids []string) ([]*types.Implication, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
	}
	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Ids:            pointIDs,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	out := make([]*types.Implication, 0, len(resp))
	for _, rp := range resp {
		im, err := retrievedPointToImplication(rp)
		if err != nil {
			continue
		}
		out = append(out, im)
	}
	return out, nil
}

// DeleteImplications removes implication rows by id, used by global_dedup
// (C7) to drop near-duplicates once the strongest survivor is chosen.
func (s *Store) DeleteImplications(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.cfg.ImplicationsCollection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// --- payload conversion ---

func userFilter(userID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID),
		},
	}
}

func memoryToPoint(m *types.Memory) *qdrant.PointStruct {
	payload := map[string]*qdrant.Value{
		"user_id":             qdrant.NewValueString(m.UserID),
		"content":             qdrant.NewValueString(m.Content),
		"source":              qdrant.NewValueString(m.Source),
		"source_date":         qdrant.NewValueString(m.SourceDate),
		"contact_ids_json":    qdrant.NewValueString(marshalStrings(m.ContactIDs)),
		"significance_weight": qdrant.NewValueDouble(float64(m.SignificanceWeight)),
		"strength":            qdrant.NewValueDouble(m.Strength),
		"activation_count":    qdrant.NewValueInt(int64(m.ActivationCount)),
		"last_activated_at":   qdrant.NewValueString(m.LastActivatedAt.Format(time.RFC3339Nano)),
		"created_at":          qdrant.NewValueString(m.CreatedAt.Format(time.RFC3339Nano)),
	}
	if len(m.AbstractEmbedding) > 0 {
		payload["abstract_embedding_json"] = qdrant.NewValueString(marshalFloats(m.AbstractEmbedding))
	}

	return &qdrant.PointStruct{
		Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: m.ID}},
		Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{
			Vector: &qdrant.Vector{Data: m.Embedding},
		}},
		Payload: payload,
	}
}

func pointPayloadToMemory(id string, payload map[string]*qdrant.Value) (*types.Memory, error) {
	m := &types.Memory{ID: id}
	if v := payload["user_id"]; v != nil {
		m.UserID = v.GetStringValue()
	}
	if v := payload["content"]; v != nil {
		m.Content = v.GetStringValue()
	}
	if v := payload["source"]; v != nil {
		m.Source = v.GetStringValue()
	}
	if v := payload["source_date"]; v != nil {
		m.SourceDate = v.GetStringValue()
	}
	if v := payload["contact_ids_json"]; v != nil {
		m.ContactIDs = unmarshalStrings(v.GetStringValue())
	}
	if v := payload["significance_weight"]; v != nil {
		m.SignificanceWeight = types.SignificanceWeight(v.GetDoubleValue())
	}
	if v := payload["strength"]; v != nil {
		m.Strength = v.GetDoubleValue()
	}
	if v := payload["activation_count"]; v != nil {
		m.ActivationCount = int(v.GetIntegerValue())
	}
	if v := payload["last_activated_at"]; v != nil {
		if t, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			m.LastActivatedAt = t
		}
	}
	if v := payload["created_at"]; v != nil {
		if t, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			m.CreatedAt = t
		}
	}
	if v := payload["abstract_embedding_json"]; v != nil {
		m.AbstractEmbedding = unmarshalFloats(v.GetStringValue())
	}
	return m, nil
}

func implicationToPoint(im *types.Implication) *qdrant.PointStruct {
	payload := map[string]*qdrant.Value{
		"user_id":            qdrant.NewValueString(im.UserID),
		"content":            qdrant.NewValueString(im.Content),
		"implication_type":   qdrant.NewValueString(string(im.ImplicationType)),
		"implication_order":  qdrant.NewValueInt(int64(im.ImplicationOrder)),
		"source_memory_ids":  qdrant.NewValueString(marshalStrings(im.SourceMemoryIDs)),
		"strength":           qdrant.NewValueDouble(im.Strength),
		"created_at":         qdrant.NewValueString(im.CreatedAt.Format(time.RFC3339Nano)),
		"last_reinforced_at": qdrant.NewValueString(im.LastReinforcedAt.Format(time.RFC3339Nano)),
	}
	return &qdrant.PointStruct{
		Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: im.ID}},
		Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{
			Vector: &qdrant.Vector{Data: im.Embedding},
		}},
		Payload: payload,
	}
}

func pointPayloadToImplication(id string, payload map[string]*qdrant.Value) (*types.Implication, error) {
	im := &types.Implication{ID: id}
	if v := payload["user_id"]; v != nil {
		im.UserID = v.GetStringValue()
	}
	if v := payload["content"]; v != nil {
		im.Content = v.GetStringValue()
	}
	if v := payload["implication_type"]; v != nil {
		im.ImplicationType = types.ImplicationType(v.GetStringValue())
	}
	if v := payload["implication_order"]; v != nil {
		im.ImplicationOrder = int(v.GetIntegerValue())
	}
	if v := payload["source_memory_ids"]; v != nil {
		im.SourceMemoryIDs = unmarshalStrings(v.GetStringValue())
	}
	if v := payload["strength"]; v != nil {
		im.Strength = v.GetDoubleValue()
	}
	if v := payload["created_at"]; v != nil {
		if t, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			im.CreatedAt = t
		}
	}
	if v := payload["last_reinforced_at"]; v != nil {
		if t, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			im.LastReinforcedAt = t
		}
	}
	return im, nil
}

func retrievedPointToImplication(rp *qdrant.RetrievedPoint) (*types.Implication, error) {
	im, err := pointPayloadToImplication(rp.Id.GetUuid(), rp.Payload)
	if err != nil {
		return nil, err
	}
	if vectors := rp.Vectors; vectors != nil {
		if vector := vectors.GetVector(); vector != nil {
			im.Embedding = vector.Data
		}
	}
	return im, nil
}

func marshalStrings(vs []string) string {
	b, _ := json.Marshal(vs)
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func marshalFloats(vs []float32) string {
	b, _ := json.Marshal(vs)
	return string(b)
}

func unmarshalFloats(s string) []float32 {
	if s == "" {
		return nil
	}
	var out []float32
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// CosineOf is a convenience used by callers that already hold both
// vectors in memory (e.g. the consolidator comparing abstract embeddings
// across a locally cached page of memories) rather than issuing another
// ANN query.
func CosineOf(a, b []float32) float64 {
	return vectormath.Cosine(a, b)
}

func extractHost(url string) string {
	url = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if idx := strings.LastIndex(url, ":"); idx != -1 {
		return url[:idx]
	}
	return url
}

func extractPort(url string) int {
	url = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if idx := strings.LastIndex(url, ":"); idx != -1 {
		if port := url[idx+1:]; port != "" {
			if p, err := strconv.Atoi(port); err == nil {
				return p
			}
		}
	}
	return 6334
}

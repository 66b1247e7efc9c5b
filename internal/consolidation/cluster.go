package consolidation

import (
	"context"
	"math/rand"
	"sort"

	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectorstore"
)

// cluster is a set of memories discovered either by raw-embedding
// proximity (normal) or by the raw/abstract divergence test
// (anti-cluster).
type cluster struct {
	members       []*types.Memory
	isAntiCluster bool
}

// discoverClusters runs spec.md §4.8's clustering pass: sort by
// strength*activation_count descending, seed from the top N, grow each
// seed's cluster via KNN above SimCluster, and mark members used so later
// seeds never overlap an already-formed cluster.
func (e *Engine) discoverClusters(ctx context.Context, userID string) ([]cluster, error) {
	all, err := e.deps.Store.ListMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		si := all[i].Strength * float64(all[i].ActivationCount)
		sj := all[j].Strength * float64(all[j].ActivationCount)
		if si != sj {
			return si > sj
		}
		return all[i].ID < all[j].ID
	})

	seedCount := e.deps.Config.ClusterSeedCount
	if seedCount > len(all) {
		seedCount = len(all)
	}
	seeds := all[:seedCount]

	clustered := make(map[string]bool)
	var clusters []cluster
	for _, seed := range seeds {
		if clustered[seed.ID] {
			continue
		}
		matches, err := e.deps.Store.KNNByEmbedding(ctx, userID, seed.Embedding, e.deps.Config.MaxClusterSize, "")
		if err != nil {
			return nil, err
		}

		neighborLimit := e.deps.Config.MaxClusterSize - 1
		var members []*types.Memory
		for _, m := range matches {
			if len(members) >= neighborLimit {
				break
			}
			if m.Memory.ID == seed.ID || clustered[m.Memory.ID] {
				continue
			}
			if m.Similarity <= e.deps.Config.SimCluster {
				continue
			}
			members = append(members, m.Memory)
		}

		if len(members)+1 < e.deps.Config.MinClusterSize {
			continue
		}

		group := append([]*types.Memory{seed}, members...)
		for _, m := range group {
			clustered[m.ID] = true
		}
		clusters = append(clusters, cluster{members: group})
	}
	return clusters, nil
}

// discoverAntiClusters runs spec.md §4.8's anti-clustering pass.
func (e *Engine) discoverAntiClusters(ctx context.Context, userID string) ([]cluster, error) {
	all, err := e.deps.Store.ListMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	var pool []*types.Memory
	for _, m := range all {
		if len(m.AbstractEmbedding) > 0 {
			pool = append(pool, m)
		}
	}
	if len(pool) < e.deps.Config.AntiClusterMinPoolSize {
		return nil, nil
	}

	perm := rand.Perm(len(pool))
	seedCount := e.deps.Config.AntiClusterSeedCount
	if seedCount > len(pool) {
		seedCount = len(pool)
	}

	used := make(map[string]bool)
	var clusters []cluster
	for i := 0; i < seedCount; i++ {
		seed := pool[perm[i]]
		if used[seed.ID] {
			continue
		}
		matches, err := e.deps.Store.KNNByAbstract(ctx, userID, seed.AbstractEmbedding, len(pool))
		if err != nil {
			return nil, err
		}

		var members []*types.Memory
		for _, m := range matches {
			if len(members) >= e.deps.Config.AntiClusterMaxMembers {
				break
			}
			if m.Memory.ID == seed.ID || used[m.Memory.ID] {
				continue
			}
			if m.Similarity <= e.deps.Config.AntiAbstractMin {
				continue
			}
			raw := vectorstore.CosineOf(seed.Embedding, m.Memory.Embedding)
			if raw >= e.deps.Config.AntiSurfaceMax {
				continue
			}
			members = append(members, m.Memory)
		}

		if len(members)+1 < e.deps.Config.MinClusterSize {
			continue
		}

		group := append([]*types.Memory{seed}, members...)
		for _, m := range group {
			used[m.ID] = true
		}
		clusters = append(clusters, cluster{members: group, isAntiCluster: true})
	}
	return clusters, nil
}

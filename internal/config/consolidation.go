package config

import "fmt"

// ConsolidationConfig holds the tunables for cluster/anti-cluster discovery
// and the three-stage LLM consolidation pipeline (C8), per spec.md §6.
type ConsolidationConfig struct {
	SimCluster                float64 `mapstructure:"sim_cluster"`                 // SIM_CLUSTER
	AntiSurfaceMax            float64 `mapstructure:"anti_surface_max"`            // ANTI_SURFACE_MAX
	AntiAbstractMin           float64 `mapstructure:"anti_abstract_min"`           // ANTI_ABSTRACT_MIN
	MaxClusterSize            int     `mapstructure:"max_cluster_size"`            // MAX_CLUSTER_SIZE
	MinClusterSize            int     `mapstructure:"min_cluster_size"`            // MIN_CLUSTER_SIZE
	ClusterSeedCount          int     `mapstructure:"cluster_seed_count"`          // top-10 seeds by strength*activation_count
	AntiClusterSeedCount      int     `mapstructure:"anti_cluster_seed_count"`     // 5 random seeds
	AntiClusterMinPoolSize    int     `mapstructure:"anti_cluster_min_pool_size"`  // "requires >=10 memories with abstract embeddings"
	AntiClusterMaxMembers     int     `mapstructure:"anti_cluster_max_members"`    // up to 5 members
	HebbianDeltaConsolidate   float64 `mapstructure:"hebbian_delta_consolidate"`   // HEBBIAN_DELTA_CONSOLIDATE
	QualityThreshold          int     `mapstructure:"quality_threshold"`           // QUALITY_THRESHOLD, score 1-5 scale
	QualityFailOpen           bool    `mapstructure:"quality_fail_open"`           // Open Question #3
	ImplicationDedupThreshold float64 `mapstructure:"implication_dedup_threshold"` // SIM_IMPL_DEDUP
}

// ValidateConfig validates the configuration.
func (c *ConsolidationConfig) ValidateConfig() error {
	if c.SimCluster <= 0 || c.SimCluster >= 1 {
		return fmt.Errorf("consolidation sim_cluster must be in (0,1)")
	}
	if c.AntiSurfaceMax <= 0 || c.AntiSurfaceMax >= 1 {
		return fmt.Errorf("consolidation anti_surface_max must be in (0,1)")
	}
	if c.AntiAbstractMin <= 0 || c.AntiAbstractMin >= 1 {
		return fmt.Errorf("consolidation anti_abstract_min must be in (0,1)")
	}
	if c.AntiSurfaceMax >= c.AntiAbstractMin {
		return fmt.Errorf("consolidation anti_surface_max must be less than anti_abstract_min")
	}
	if c.MinClusterSize <= 0 || c.MaxClusterSize < c.MinClusterSize {
		return fmt.Errorf("consolidation cluster size bounds are invalid")
	}
	if c.HebbianDeltaConsolidate <= 0 || c.HebbianDeltaConsolidate >= 1 {
		return fmt.Errorf("consolidation hebbian_delta_consolidate must be in (0,1)")
	}
	if c.QualityThreshold <= 0 {
		return fmt.Errorf("consolidation quality_threshold must be positive")
	}
	if c.ImplicationDedupThreshold <= 0 || c.ImplicationDedupThreshold >= 1 {
		return fmt.Errorf("consolidation implication_dedup_threshold must be in (0,1)")
	}
	return nil
}

// GetDefaults returns default configuration values (spec.md §6).
func (c *ConsolidationConfig) GetDefaults() map[string]any {
	return map[string]any{
		"consolidation.sim_cluster":                 0.65,
		"consolidation.anti_surface_max":            0.35,
		"consolidation.anti_abstract_min":           0.55,
		"consolidation.max_cluster_size":            15,
		"consolidation.min_cluster_size":            3,
		"consolidation.cluster_seed_count":          10,
		"consolidation.anti_cluster_seed_count":     5,
		"consolidation.anti_cluster_min_pool_size":  10,
		"consolidation.anti_cluster_max_members":    5,
		"consolidation.hebbian_delta_consolidate":   0.10,
		"consolidation.quality_threshold":           4,
		"consolidation.quality_fail_open":           true,
		"consolidation.implication_dedup_threshold": 0.75,
	}
}

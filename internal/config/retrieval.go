package config

import "fmt"

// RetrievalConfig holds the tunables for the spreading-activation retrieval
// engine (C9), enumerated in spec.md §6.
type RetrievalConfig struct {
	SeedCount               int     `mapstructure:"seed_count"`                // SEED_COUNT
	DefaultMaxMemories      int     `mapstructure:"default_max_memories"`      // DEFAULT_MAX_MEMORIES
	DefaultMaxHops          int     `mapstructure:"default_max_hops"`          // DEFAULT_MAX_HOPS
	DefaultMinStrength      float64 `mapstructure:"default_min_strength"`      // DEFAULT_MIN_STRENGTH
	HopDiscount             float64 `mapstructure:"hop_discount"`              // HOP_DISCOUNT
	HopMinContribution      float64 `mapstructure:"hop_min_contribution"`      // "skip if < 0.01"
	HalfLifeConnectedDays   float64 `mapstructure:"half_life_connected_days"`  // HALF_LIFE_CONNECTED
	HalfLifeIsolatedDays    float64 `mapstructure:"half_life_isolated_days"`   // HALF_LIFE_ISOLATED
	HebbianDeltaRetrieve    float64 `mapstructure:"hebbian_delta_retrieve"`    // HEBBIAN_DELTA_RETRIEVE
	MaxImplications         int     `mapstructure:"max_implications"`          // "keep top 10"
	BridgingThreshold       float64 `mapstructure:"bridging_threshold"`        // BRIDGING_IMPL_THRESHOLD
	MaxBridgingImplications int     `mapstructure:"max_bridging_implications"` // MAX_BRIDGING_IMPLICATIONS
	BridgingActivationScale float64 `mapstructure:"bridging_activation_scale"` // the "* 0.3" in step 8
	MMROverrepThreshold     float64 `mapstructure:"mmr_overrep_threshold"`     // MMR_OVERREP
	MMRMaxPerEntity         int     `mapstructure:"mmr_max_per_entity"`        // MMR_MAX_PER_ENTITY
	MMRRelevanceWeight      float64 `mapstructure:"mmr_relevance_weight"`      // 0.7
	MMRDiversityWeight      float64 `mapstructure:"mmr_diversity_weight"`      // MMR_DIVERSITY_WEIGHT
}

// ValidateConfig validates the configuration.
func (c *RetrievalConfig) ValidateConfig() error {
	if c.SeedCount <= 0 || c.DefaultMaxMemories <= 0 || c.DefaultMaxHops <= 0 {
		return fmt.Errorf("retrieval seed_count, default_max_memories, and default_max_hops must be positive")
	}
	if c.HopDiscount <= 0 || c.HopDiscount >= 1 {
		return fmt.Errorf("retrieval hop_discount must be in (0,1)")
	}
	if c.HalfLifeConnectedDays <= 0 || c.HalfLifeIsolatedDays <= 0 {
		return fmt.Errorf("retrieval half-life values must be positive")
	}
	if c.HebbianDeltaRetrieve <= 0 || c.HebbianDeltaRetrieve >= 1 {
		return fmt.Errorf("retrieval hebbian_delta_retrieve must be in (0,1)")
	}
	if c.MMROverrepThreshold <= 0 || c.MMROverrepThreshold >= 1 {
		return fmt.Errorf("retrieval mmr_overrep_threshold must be in (0,1)")
	}
	if c.MMRRelevanceWeight+c.MMRDiversityWeight <= 0 {
		return fmt.Errorf("retrieval mmr weights must sum to a positive value")
	}
	return nil
}

// GetDefaults returns default configuration values (spec.md §6).
func (c *RetrievalConfig) GetDefaults() map[string]any {
	return map[string]any{
		"retrieval.seed_count":                10,
		"retrieval.default_max_memories":      20,
		"retrieval.default_max_hops":          2,
		"retrieval.default_min_strength":      0.10,
		"retrieval.hop_discount":              0.5,
		"retrieval.hop_min_contribution":      0.01,
		"retrieval.half_life_connected_days":  60.0,
		"retrieval.half_life_isolated_days":   30.0,
		"retrieval.hebbian_delta_retrieve":    0.05,
		"retrieval.max_implications":          10,
		"retrieval.bridging_threshold":        0.5,
		"retrieval.max_bridging_implications": 5,
		"retrieval.bridging_activation_scale": 0.3,
		"retrieval.mmr_overrep_threshold":     0.30,
		"retrieval.mmr_max_per_entity":        3,
		"retrieval.mmr_relevance_weight":      0.7,
		"retrieval.mmr_diversity_weight":      0.30,
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validLoggingConfig() *LoggingConfig {
	return &LoggingConfig{Level: "info", Format: "json"}
}

func TestLoggingConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validLoggingConfig().ValidateConfig())
	assert.Error(t, (&LoggingConfig{Level: "verbose", Format: "json"}).ValidateConfig())
	assert.Error(t, (&LoggingConfig{Level: "info", Format: "xml"}).ValidateConfig())
}

func validEmbeddingConfig() *EmbeddingConfig {
	return &EmbeddingConfig{
		BaseURL:        "https://api.openai.com/v1",
		Model:          "text-embedding-3-small",
		Dimension:      1536,
		MaxBatchSize:   128,
		RequestTimeout: 20 * time.Second,
		RateLimitRPS:   5.0,
	}
}

func TestEmbeddingConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validEmbeddingConfig().ValidateConfig())

	bad := *validEmbeddingConfig()
	bad.BaseURL = ""
	assert.Error(t, bad.ValidateConfig())

	bad = *validEmbeddingConfig()
	bad.Dimension = 0
	assert.Error(t, bad.ValidateConfig())

	bad = *validEmbeddingConfig()
	bad.RateLimitRPS = 0
	assert.Error(t, bad.ValidateConfig())
}

func validLLMConfig() *LLMConfig {
	return &LLMConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", DefaultTimeout: 40 * time.Second}
}

func TestLLMConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validLLMConfig().ValidateConfig())

	bad := *validLLMConfig()
	bad.Model = ""
	assert.Error(t, bad.ValidateConfig())

	bad = *validLLMConfig()
	bad.DefaultTimeout = 0
	assert.Error(t, bad.ValidateConfig())
}

func validVectorStoreConfig() *VectorStoreConfig {
	return &VectorStoreConfig{
		URL:                    "http://localhost:6334",
		MemoriesCollection:     "memories",
		ImplicationsCollection: "implications",
		VectorDimension:        1536,
	}
}

func TestVectorStoreConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validVectorStoreConfig().ValidateConfig())

	bad := *validVectorStoreConfig()
	bad.MemoriesCollection = ""
	assert.Error(t, bad.ValidateConfig())

	bad = *validVectorStoreConfig()
	bad.VectorDimension = -1
	assert.Error(t, bad.ValidateConfig())
}

func validGraphStoreConfig() *GraphStoreConfig {
	return &GraphStoreConfig{DSN: "postgres://localhost/recall", MaxOpenConns: 10}
}

func TestGraphStoreConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validGraphStoreConfig().ValidateConfig())

	bad := *validGraphStoreConfig()
	bad.DSN = ""
	assert.Error(t, bad.ValidateConfig())

	bad = *validGraphStoreConfig()
	bad.MaxOpenConns = 0
	assert.Error(t, bad.ValidateConfig())
}

func validRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		SeedCount:             10,
		DefaultMaxMemories:    20,
		DefaultMaxHops:        2,
		DefaultMinStrength:    0.10,
		HopDiscount:           0.5,
		HalfLifeConnectedDays: 60.0,
		HalfLifeIsolatedDays:  30.0,
		HebbianDeltaRetrieve:  0.05,
		MMROverrepThreshold:   0.30,
		MMRMaxPerEntity:       3,
		MMRRelevanceWeight:    0.7,
		MMRDiversityWeight:    0.30,
	}
}

func TestRetrievalConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validRetrievalConfig().ValidateConfig())

	bad := *validRetrievalConfig()
	bad.SeedCount = 0
	assert.Error(t, bad.ValidateConfig())

	bad = *validRetrievalConfig()
	bad.HopDiscount = 1
	assert.Error(t, bad.ValidateConfig())

	bad = *validRetrievalConfig()
	bad.MMROverrepThreshold = 0
	assert.Error(t, bad.ValidateConfig())

	bad = *validRetrievalConfig()
	bad.MMRRelevanceWeight, bad.MMRDiversityWeight = 0, 0
	assert.Error(t, bad.ValidateConfig())
}

func validConsolidationConfig() *ConsolidationConfig {
	return &ConsolidationConfig{
		SimCluster:                0.65,
		AntiSurfaceMax:            0.35,
		AntiAbstractMin:           0.55,
		MaxClusterSize:            15,
		MinClusterSize:            3,
		HebbianDeltaConsolidate:   0.10,
		QualityThreshold:          4,
		ImplicationDedupThreshold: 0.75,
	}
}

func TestConsolidationConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validConsolidationConfig().ValidateConfig())

	bad := *validConsolidationConfig()
	bad.AntiSurfaceMax, bad.AntiAbstractMin = 0.6, 0.5
	assert.Error(t, bad.ValidateConfig(), "anti_surface_max must stay below anti_abstract_min")

	bad = *validConsolidationConfig()
	bad.MaxClusterSize = 1
	bad.MinClusterSize = 3
	assert.Error(t, bad.ValidateConfig())

	bad = *validConsolidationConfig()
	bad.QualityThreshold = 0
	assert.Error(t, bad.ValidateConfig())
}

func validSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		SimDedup:            0.92,
		IngestBatchSize:     5,
		IngestDeadline:      120 * time.Second,
		PostExtractMinSlack: 12 * time.Second,
		PerCycleMinSlack:    15 * time.Second,
		MinContentLength:    50,
	}
}

func TestSchedulerConfigValidateConfig(t *testing.T) {
	assert.NoError(t, validSchedulerConfig().ValidateConfig())

	bad := *validSchedulerConfig()
	bad.PostExtractMinSlack = bad.IngestDeadline
	assert.Error(t, bad.ValidateConfig(), "slack must be strictly less than the overall deadline")

	bad = *validSchedulerConfig()
	bad.IngestBatchSize = 0
	assert.Error(t, bad.ValidateConfig())

	bad = *validSchedulerConfig()
	bad.MinContentLength = -1
	assert.Error(t, bad.ValidateConfig())
}

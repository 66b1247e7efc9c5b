// Package config loads engine configuration from environment variables and
// an optional config file, one component at a time, following the teacher
// repository's per-concern Load/Validate/Defaults pattern.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all engine configuration.
type Config struct {
	Logging       LoggingConfig       `mapstructure:"logging"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	VectorStore   VectorStoreConfig   `mapstructure:"vectorstore"`
	GraphStore    GraphStoreConfig    `mapstructure:"graphstore"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Consolidation ConsolidationConfig `mapstructure:"consolidation"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
}

// componentConfig is the two-method shape every sub-config implements.
type componentConfig interface {
	ValidateConfig() error
	GetDefaults() map[string]any
}

// Load reads configuration from (in order of increasing priority) a
// .env file, a config.yaml, and RECALL_-prefixed environment variables.
func Load() (*Config, error) {
	// Best-effort .env load; absence is not an error (enrichment on top of
	// the teacher's bare os.Getenv/viper-only bootstrap).
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RECALL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/recall/")
	_ = v.ReadInConfig()

	components := []componentConfig{
		&LoggingConfig{}, &EmbeddingConfig{}, &LLMConfig{}, &VectorStoreConfig{},
		&GraphStoreConfig{}, &RetrievalConfig{}, &ConsolidationConfig{}, &SchedulerConfig{},
	}
	for _, c := range components {
		for key, val := range c.GetDefaults() {
			v.SetDefault(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validators := []componentConfig{
		&cfg.Logging, &cfg.Embedding, &cfg.LLM, &cfg.VectorStore,
		&cfg.GraphStore, &cfg.Retrieval, &cfg.Consolidation, &cfg.Scheduler,
	}
	for _, c := range validators {
		if err := c.ValidateConfig(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return &cfg, nil
}

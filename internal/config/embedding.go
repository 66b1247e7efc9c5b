package config

import (
	"fmt"
	"time"
)

// EmbeddingConfig holds configuration for the embedding provider client (C1).
type EmbeddingConfig struct {
	Provider       string        `mapstructure:"provider"` // "openai"-compatible
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Dimension      int           `mapstructure:"dimension"`
	MaxBatchSize   int           `mapstructure:"max_batch_size"` // EMBED_MAX_BATCH
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"` // token-bucket pacing
}

// ValidateConfig validates the configuration.
func (c *EmbeddingConfig) ValidateConfig() error {
	if c.BaseURL == "" {
		return fmt.Errorf("embedding base_url cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding model cannot be empty")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("embedding max_batch_size must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("embedding request_timeout must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("embedding rate_limit_rps must be positive")
	}
	return nil
}

// GetDefaults returns default configuration values.
func (c *EmbeddingConfig) GetDefaults() map[string]any {
	return map[string]any{
		"embedding.provider":        "openai",
		"embedding.base_url":        "https://api.openai.com/v1",
		"embedding.model":           "text-embedding-3-small",
		"embedding.dimension":       1536,
		"embedding.max_batch_size":  128, // EMBED_MAX_BATCH
		"embedding.request_timeout": "20s",
		"embedding.rate_limit_rps":  5.0,
	}
}

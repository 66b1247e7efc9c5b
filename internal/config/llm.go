package config

import (
	"fmt"
	"time"
)

// LLMConfig holds configuration for the typed-prompt LLM client (C2).
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"` // per-call default (spec.md §4.2: 40s)
}

// ValidateConfig validates the configuration.
func (c *LLMConfig) ValidateConfig() error {
	if c.BaseURL == "" {
		return fmt.Errorf("llm base_url cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("llm model cannot be empty")
	}
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("llm default_timeout must be positive")
	}
	return nil
}

// GetDefaults returns default configuration values.
func (c *LLMConfig) GetDefaults() map[string]any {
	return map[string]any{
		"llm.provider":        "openai",
		"llm.base_url":        "https://api.openai.com/v1",
		"llm.model":           "gpt-4o-mini",
		"llm.default_timeout": "40s",
	}
}

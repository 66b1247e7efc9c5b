package config

import (
	"fmt"
	"slices"
	"strings"
)

// LoggingConfig holds structured-logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidateConfig validates the configuration.
func (c *LoggingConfig) ValidateConfig() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Level, strings.Join(validLevels, ", "))
	}
	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.Format, strings.Join(validFormats, ", "))
	}
	return nil
}

// GetDefaults returns default configuration values.
func (c *LoggingConfig) GetDefaults() map[string]any {
	return map[string]any{
		"logging.level":  "info",
		"logging.format": "json",
	}
}

package config

import (
	"fmt"
	"time"
)

// SchedulerConfig holds the tunables for ingest admission, deadline
// propagation, and consolidation scheduling (C10), per spec.md §6.
type SchedulerConfig struct {
	SimDedup            float64       `mapstructure:"sim_dedup"`              // SIM_DEDUP
	IngestBatchSize     int           `mapstructure:"ingest_batch_size"`      // INGEST_BATCH_SIZE, bounded concurrency
	IngestDeadline      time.Duration `mapstructure:"ingest_deadline"`        // default 120s
	PostExtractMinSlack time.Duration `mapstructure:"post_extract_min_slack"` // 12s
	PerCycleMinSlack    time.Duration `mapstructure:"per_cycle_min_slack"`    // 15s
	MinContentLength    int           `mapstructure:"min_content_length"`     // journal entries under 50 chars skipped
}

// ValidateConfig validates the configuration.
func (c *SchedulerConfig) ValidateConfig() error {
	if c.SimDedup <= 0 || c.SimDedup >= 1 {
		return fmt.Errorf("scheduler sim_dedup must be in (0,1)")
	}
	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("scheduler ingest_batch_size must be positive")
	}
	if c.IngestDeadline <= 0 {
		return fmt.Errorf("scheduler ingest_deadline must be positive")
	}
	if c.PostExtractMinSlack <= 0 || c.PerCycleMinSlack <= 0 {
		return fmt.Errorf("scheduler slack durations must be positive")
	}
	if c.PostExtractMinSlack >= c.IngestDeadline {
		return fmt.Errorf("scheduler post_extract_min_slack must be less than ingest_deadline")
	}
	if c.MinContentLength < 0 {
		return fmt.Errorf("scheduler min_content_length cannot be negative")
	}
	return nil
}

// GetDefaults returns default configuration values (spec.md §6).
func (c *SchedulerConfig) GetDefaults() map[string]any {
	return map[string]any{
		"scheduler.sim_dedup":              0.92,
		"scheduler.ingest_batch_size":      5,
		"scheduler.ingest_deadline":        "120s",
		"scheduler.post_extract_min_slack": "12s",
		"scheduler.per_cycle_min_slack":    "15s",
		"scheduler.min_content_length":     50,
	}
}

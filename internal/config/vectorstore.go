package config

import "fmt"

// VectorStoreConfig holds configuration for the qdrant-backed vector store
// (C3) which persists both memories and implications.
type VectorStoreConfig struct {
	URL                    string `mapstructure:"url"`
	APIKey                 string `mapstructure:"api_key"`
	MemoriesCollection     string `mapstructure:"memories_collection"`
	ImplicationsCollection string `mapstructure:"implications_collection"`
	VectorDimension        int    `mapstructure:"vector_dimension"`
	OnDiskPayload          bool   `mapstructure:"on_disk_payload"`
	Insecure               bool   `mapstructure:"insecure"`
}

// ValidateConfig validates the configuration.
func (c *VectorStoreConfig) ValidateConfig() error {
	if c.URL == "" {
		return fmt.Errorf("vectorstore url cannot be empty")
	}
	if c.MemoriesCollection == "" || c.ImplicationsCollection == "" {
		return fmt.Errorf("vectorstore collection names cannot be empty")
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vectorstore vector_dimension must be positive")
	}
	return nil
}

// GetDefaults returns default configuration values.
func (c *VectorStoreConfig) GetDefaults() map[string]any {
	return map[string]any{
		"vectorstore.url":                     "http://localhost:6334",
		"vectorstore.memories_collection":     "memories",
		"vectorstore.implications_collection": "implications",
		"vectorstore.vector_dimension":        1536,
		"vectorstore.on_disk_payload":         true,
		"vectorstore.insecure":                true,
	}
}

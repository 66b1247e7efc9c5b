package abstractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/llmclient"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/vectorstore"
)

func TestDependenciesValidateRequiresAll(t *testing.T) {
	log := logger.New(&config.LoggingConfig{Level: "error", Format: "text"})
	store := &vectorstore.Store{}
	llm := &llmclient.Client{}

	assert.Error(t, (&Dependencies{}).Validate())
	assert.Error(t, (&Dependencies{LLM: llm}).Validate())
	assert.Error(t, (&Dependencies{LLM: llm, Embedder: fakeEmbedder{}}).Validate())
	assert.Error(t, (&Dependencies{LLM: llm, Embedder: fakeEmbedder{}, Store: store}).Validate())
	assert.NoError(t, (&Dependencies{LLM: llm, Embedder: fakeEmbedder{}, Store: store, Log: log}).Validate())
}

func TestNewRejectsInvalidDependencies(t *testing.T) {
	_, err := New(&Dependencies{})
	assert.Error(t, err)
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

// Package abstractor fires the asynchronous abstract-paraphrase backfill
// described in spec.md §4.5: an abstract, proper-noun-scrubbed paraphrase
// of a memory's content, embedded and written back to the memory's
// abstract_embedding field. Abstracts are optional — failures are logged
// and swallowed, never surfaced to the caller that triggered them.
package abstractor

import (
	"context"
	"fmt"
	"time"

	"github.com/icyhot/recall/internal/embedding"
	"github.com/icyhot/recall/internal/llmclient"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/vectorstore"
)

// Dependencies holds the collaborators the abstractor needs.
type Dependencies struct {
	LLM      *llmclient.Client
	Embedder embedding.Provider
	Store    *vectorstore.Store
	Timeout  time.Duration
	Log      *logger.Logger
}

// Validate ensures all required dependencies are present.
func (d *Dependencies) Validate() error {
	if d.LLM == nil {
		return fmt.Errorf("llm client is required")
	}
	if d.Embedder == nil {
		return fmt.Errorf("embedder is required")
	}
	if d.Store == nil {
		return fmt.Errorf("vector store is required")
	}
	if d.Log == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Engine is the C5 abstract-embedding backfill.
type Engine struct {
	deps *Dependencies
}

// New constructs an Engine.
func New(deps *Dependencies) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &Engine{deps: deps}, nil
}

// ProcessAsync launches the backfill for (memoryID, content) in its own
// goroutine and returns immediately. This is the fire-and-forget hook
// internal/memory invokes after inserting a new memory.
func (e *Engine) ProcessAsync(memoryID, content string) {
	go e.process(context.Background(), memoryID, content)
}

func (e *Engine) process(ctx context.Context, memoryID, content string) {
	log := e.deps.Log.WithComponent("abstractor")

	abstract, err := e.deps.LLM.Abstract(ctx, content, e.deps.Timeout)
	if err != nil {
		log.Warn("abstract paraphrase failed, skipping backfill", "memory_id", memoryID, "error", err)
		return
	}

	vecs, err := e.deps.Embedder.Embed(ctx, []string{abstract})
	if err != nil || len(vecs) == 0 {
		log.Warn("abstract embedding failed, skipping backfill", "memory_id", memoryID, "error", err)
		return
	}

	if err := e.deps.Store.SetAbstractEmbedding(ctx, "", memoryID, vecs[0]); err != nil {
		log.Warn("abstract embedding write-back failed", "memory_id", memoryID, "error", err)
		return
	}
}

// Package memory implements atomic memory extraction, embedding, semantic
// deduplication, and contact resolution (C4).
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/embedding"
	"github.com/icyhot/recall/internal/llmclient"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/syncstate"
	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectorstore"
)

// Abstractor is the narrow interface the ingest pipeline fires a
// new memory id to, asynchronously, once it has been inserted (C5).
type Abstractor interface {
	ProcessAsync(memoryID, content string)
}

// Dependencies holds the collaborators the ingest engine needs.
type Dependencies struct {
	Embedder   embedding.Provider
	LLM        *llmclient.Client
	Store      *vectorstore.Store
	SyncState  *syncstate.Store
	Abstractor Abstractor // optional; nil disables C5 fan-out
	Scheduler  *config.SchedulerConfig
	LLMTimeout time.Duration
	Log        *logger.Logger
}

// Validate ensures all required dependencies are present.
func (d *Dependencies) Validate() error {
	if d.Embedder == nil {
		return fmt.Errorf("embedder is required")
	}
	if d.LLM == nil {
		return fmt.Errorf("llm client is required")
	}
	if d.Store == nil {
		return fmt.Errorf("vector store is required")
	}
	if d.SyncState == nil {
		return fmt.Errorf("sync state store is required")
	}
	if d.Scheduler == nil {
		return fmt.Errorf("scheduler config is required")
	}
	return nil
}

// Engine is the C4 memory ingest pipeline.
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

// Options carries the caller-supplied context for a single Ingest call.
type Options struct {
	Contacts         []Contact
	ExplicitMentions map[string]string
	Deadline         time.Time
}

// Result summarizes the outcome of one Ingest call.
type Result struct {
	Created           int
	Reinforced        int
	RemainingEstimate int
}

// Ingest runs the pipeline of spec.md §4.4 over one journal entry.
// RemainingEstimate reports how many atomic memories from this entry are
// still outstanding and would need a retry: 0 once the entry has been
// fully and legitimately resolved (already processed, too short, or
// extraction legitimately empty), 1 while the whole entry remains
// unprocessed (it aborted before extraction finished or there was
// insufficient deadline slack to proceed), or the count of individual
// extracted memories that failed to persist once processing ran.
func (e *Engine) Ingest(ctx context.Context, userID, source, sourceID, text, sourceDate string, opts Options) (Result, error) {
	log := e.deps.Log
	if log == nil {
		log = logger.New(&config.LoggingConfig{Level: "info", Format: "text"})
	}
	log = log.WithComponent("memory.ingest").WithUser(userID)

	processed, err := e.deps.SyncState.IsProcessed(ctx, userID, source, sourceID)
	if err != nil {
		return Result{}, err
	}
	if processed {
		return Result{}, nil
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < e.deps.Scheduler.MinContentLength {
		if err := e.deps.SyncState.MarkProcessed(ctx, userID, source, sourceID); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}

	contactNames := make([]string, len(opts.Contacts))
	for i, c := range opts.Contacts {
		contactNames[i] = c.Name
	}
	extracted, err := e.deps.LLM.Extract(ctx, trimmed, sourceDate, contactNames, e.deps.LLMTimeout)
	if err != nil {
		log.Warn("extraction failed, source not marked processed", "source_id", sourceID, "error", err)
		return Result{RemainingEstimate: 1}, err
	}
	if len(extracted) == 0 {
		if err := e.deps.SyncState.MarkProcessed(ctx, userID, source, sourceID); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}

	if !opts.Deadline.IsZero() {
		if time.Until(opts.Deadline) < e.deps.Scheduler.PostExtractMinSlack {
			log.Info("insufficient deadline slack after extraction, deferring to next run", "source_id", sourceID)
			return Result{RemainingEstimate: 1}, nil
		}
	}

	contents := make([]string, len(extracted))
	for i, m := range extracted {
		contents[i] = m.Content
	}
	vecs, err := e.deps.Embedder.Embed(ctx, contents)
	if err != nil {
		log.Warn("batch embedding failed, source not marked processed", "source_id", sourceID, "error", err)
		return Result{RemainingEstimate: len(extracted)}, err
	}

	type outcome struct {
		created    bool
		reinforced bool
		failed     bool
	}
	outcomes := make([]outcome, len(extracted))

	p := pool.New().WithMaxGoroutines(e.deps.Scheduler.IngestBatchSize)
	for i := range extracted {
		i := i
		p.Go(func() {
			out, procErr := e.processOne(ctx, userID, sourceDate, extracted[i], vecs[i], opts)
			if procErr != nil {
				log.Warn("memory processing failed, skipping", "source_id", sourceID, "index", i, "error", procErr)
				outcomes[i] = outcome{failed: true}
				return
			}
			outcomes[i] = outcome{created: out.created, reinforced: out.reinforced}
		})
	}
	p.Wait()

	var result Result
	for _, o := range outcomes {
		if o.created {
			result.Created++
		}
		if o.reinforced {
			result.Reinforced++
		}
		if o.failed {
			result.RemainingEstimate++
		}
	}

	if result.Created+result.Reinforced > 0 {
		if err := e.deps.SyncState.MarkProcessed(ctx, userID, source, sourceID); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (e *Engine) processOne(ctx context.Context, userID, sourceDate string, extracted llmclient.ExtractedMemory, vec []float32, opts Options) (struct {
	created    bool
	reinforced bool
}, error) {
	type outcome = struct {
		created    bool
		reinforced bool
	}

	matches, err := e.deps.Store.KNNByEmbedding(ctx, userID, vec, 1, "")
	if err != nil {
		return outcome{}, err
	}
	if len(matches) > 0 && matches[0].Similarity > e.deps.Scheduler.SimDedup {
		if err := e.deps.Store.Reinforce(ctx, userID, matches[0].Memory.ID, 0.05, 1); err != nil {
			return outcome{}, err
		}
		return outcome{reinforced: true}, nil
	}

	contactIDs := ResolveContacts(extracted.ContactNames, extracted.Content, opts.Contacts, opts.ExplicitMentions)
	now := time.Now().UTC()
	m := &types.Memory{
		ID:                 shortuuid.New(),
		UserID:             userID,
		Content:            extracted.Content,
		Embedding:          vec,
		Source:             "journal",
		SourceDate:         sourceDate,
		ContactIDs:         contactIDs,
		SignificanceWeight: types.ParseSignificance(extracted.Significance),
		ActivationCount:    1,
		LastActivatedAt:    now,
		CreatedAt:          now,
	}
	m.Strength = float64(m.SignificanceWeight)

	if err := e.deps.Store.InsertMemory(ctx, m); err != nil {
		return outcome{}, err
	}

	if e.deps.Abstractor != nil {
		e.deps.Abstractor.ProcessAsync(m.ID, m.Content)
	}

	return outcome{created: true}, nil
}

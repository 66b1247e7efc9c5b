// Package app wires configuration into the concrete stores, clients, and
// engines that make up the memory graph service, and exposes the
// Initialize/Start/Stop/HealthCheck lifecycle the teacher repository's
// internal/app.Application/Runner pair drives (adapted here to a CLI with
// no HTTP/MCP surface: every subcommand in cmd/recall builds an *App,
// drives its lifecycle directly or via Runner, and calls into the
// engine it needs).
package app

import (
	"context"
	"fmt"

	"github.com/icyhot/recall/internal/abstractor"
	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/consolidation"
	"github.com/icyhot/recall/internal/digeststore"
	"github.com/icyhot/recall/internal/embedding"
	"github.com/icyhot/recall/internal/graphstore"
	"github.com/icyhot/recall/internal/implication"
	"github.com/icyhot/recall/internal/llmclient"
	"github.com/icyhot/recall/internal/logger"
	"github.com/icyhot/recall/internal/memory"
	"github.com/icyhot/recall/internal/retrieval"
	"github.com/icyhot/recall/internal/scheduler"
	"github.com/icyhot/recall/internal/syncstate"
	"github.com/icyhot/recall/internal/vectorstore"
)

// App holds every wired store, client, and engine the CLI needs.
type App struct {
	Config *config.Config
	Log    *logger.Logger

	VectorStore  *vectorstore.Store
	Graph        *graphstore.Store
	SyncState    *syncstate.Store
	Digests      *digeststore.Store
	Implications *implication.Store

	Embedder embedding.Provider
	LLM      *llmclient.Client

	Ingest        *memory.Engine
	Abstractor    *abstractor.Engine
	Consolidation *consolidation.Engine
	Retrieval     *retrieval.Engine
	Scheduler     *scheduler.Engine

	initialized bool
}

// New returns an unwired App; call Initialize before use.
func New(cfg *config.Config, log *logger.Logger) *App {
	return &App{Config: cfg, Log: log}
}

// Name identifies this application for the Runner's log lines.
func (a *App) Name() string { return "recall" }

// Initialize constructs every store, client, and engine from a.Config,
// running schema migrations when configured, and wires the engines'
// Dependencies structs together.
func (a *App) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	cfg := a.Config

	vs, err := vectorstore.New(&cfg.VectorStore)
	if err != nil {
		return fmt.Errorf("failed to construct vector store: %w", err)
	}
	if err := vs.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize vector store collections: %w", err)
	}
	a.VectorStore = vs

	graph, err := graphstore.New(&cfg.GraphStore)
	if err != nil {
		return fmt.Errorf("failed to construct graph store: %w", err)
	}
	syncState, err := syncstate.New(&cfg.GraphStore)
	if err != nil {
		return fmt.Errorf("failed to construct sync state store: %w", err)
	}
	digests, err := digeststore.New(&cfg.GraphStore)
	if err != nil {
		return fmt.Errorf("failed to construct digest store: %w", err)
	}
	if cfg.GraphStore.MigrateOnStart {
		for _, m := range []func(context.Context) error{graph.Migrate, syncState.Migrate, digests.Migrate} {
			if err := m(ctx); err != nil {
				return fmt.Errorf("failed to migrate postgres schema: %w", err)
			}
		}
	}
	a.Graph, a.SyncState, a.Digests = graph, syncState, digests

	implications, err := implication.New(vs, cfg.Consolidation.ImplicationDedupThreshold)
	if err != nil {
		return fmt.Errorf("failed to construct implication store: %w", err)
	}
	a.Implications = implications

	a.Embedder = embedding.New(&cfg.Embedding)
	a.LLM = llmclient.New(&cfg.LLM)

	abstractorEngine, err := abstractor.New(&abstractor.Dependencies{
		LLM:      a.LLM,
		Embedder: a.Embedder,
		Store:    vs,
		Timeout:  cfg.LLM.DefaultTimeout,
		Log:      a.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to construct abstractor engine: %w", err)
	}
	a.Abstractor = abstractorEngine

	ingestEngine, err := memory.New(&memory.Dependencies{
		Embedder:   a.Embedder,
		LLM:        a.LLM,
		Store:      vs,
		SyncState:  syncState,
		Abstractor: abstractorEngine,
		Scheduler:  &cfg.Scheduler,
		LLMTimeout: cfg.LLM.DefaultTimeout,
		Log:        a.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to construct ingest engine: %w", err)
	}
	a.Ingest = ingestEngine

	consolidationEngine, err := consolidation.New(&consolidation.Dependencies{
		Store:        vs,
		Graph:        graph,
		Implications: implications,
		LLM:          a.LLM,
		Digests:      digests,
		Config:       &cfg.Consolidation,
		LLMTimeout:   cfg.LLM.DefaultTimeout,
		Log:          a.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to construct consolidation engine: %w", err)
	}
	a.Consolidation = consolidationEngine

	retrievalEngine, err := retrieval.New(&retrieval.Dependencies{
		Store:        vs,
		Graph:        graph,
		Implications: implications,
		Embedder:     a.Embedder,
		Config:       &cfg.Retrieval,
		Log:          a.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to construct retrieval engine: %w", err)
	}
	a.Retrieval = retrievalEngine

	schedulerEngine, err := scheduler.New(&scheduler.Dependencies{Config: &cfg.Scheduler, Log: a.Log})
	if err != nil {
		return fmt.Errorf("failed to construct scheduler: %w", err)
	}
	a.Scheduler = schedulerEngine

	a.initialized = true
	return nil
}

// Start is a no-op beyond Initialize: every engine here is call-scoped
// (invoked per ingest/consolidate/retrieve request) rather than a
// long-running subsystem that needs its own goroutine, unlike the
// teacher's HTTP/MCP servers.
func (a *App) Start(ctx context.Context) error {
	if !a.initialized {
		return fmt.Errorf("app not initialized")
	}
	return nil
}

// Stop is a no-op: the underlying store clients expose no explicit
// Close, matching the teacher's own VectorDBService.Stop/LLMService.Stop
// (connection pools are reclaimed by the OS at process exit).
func (a *App) Stop(ctx context.Context) error {
	return nil
}

// HealthCheck pings the vector store and graphstore's Postgres pool.
// syncstate and digeststore open their own pools against the same DSN;
// those pools are not pinged here.
func (a *App) HealthCheck(ctx context.Context) error {
	if !a.initialized {
		return fmt.Errorf("app not initialized")
	}
	if err := a.VectorStore.HealthCheck(ctx); err != nil {
		return fmt.Errorf("vector store health check failed: %w", err)
	}
	if err := a.Graph.HealthCheck(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

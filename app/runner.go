package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/logger"
)

// shutdownTimeout bounds Stop when the Runner is driven by a shutdown
// signal. There is no HTTP server here to size this against, so this is
// a flat default rather than a config-derived value.
const shutdownTimeout = 30 * time.Second

// Application is the lifecycle contract Runner drives. It differs from
// the teacher's Application interface only in that Initialize takes a
// context: every store this app wires (vectorstore.Initialize, the
// Postgres Migrate calls) already requires one, so threading it through
// here rather than reaching for context.Background() inside App keeps
// cancellation consistent end to end.
type Application interface {
	Initialize(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Name() string
}

// Runner drives the full process lifecycle for a long-running
// Application: initialize, start, an initial health check, block for
// SIGINT/SIGTERM, then a bounded graceful stop. Used by the `serve`
// subcommand; one-shot subcommands (`ingest`, `consolidate`, `retrieve`)
// call Initialize directly and skip the signal wait.
type Runner struct {
	app Application
	log *logger.Logger
}

// NewRunner constructs a Runner for app.
func NewRunner(app Application, log *logger.Logger) *Runner {
	return &Runner{app: app, log: log}
}

// Run executes the full lifecycle, blocking until a shutdown signal
// arrives or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("initializing application", "name", r.app.Name())
	if err := r.app.Initialize(ctx); err != nil {
		r.log.Error("failed to initialize application", "error", err)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.log.Info("starting application", "name", r.app.Name())
	if err := r.app.Start(runCtx); err != nil {
		r.log.Error("failed to start application", "error", err)
		return err
	}
	r.log.Info("application started", "name", r.app.Name())

	if err := r.app.HealthCheck(runCtx); err != nil {
		r.log.Warn("initial health check failed", "error", err)
	} else {
		r.log.Info("all components are healthy")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		r.log.Info("shutdown signal received")
	case <-runCtx.Done():
		r.log.Info("context cancelled, shutting down")
	}

	r.log.Info("shutting down application...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	if err := r.app.Stop(stopCtx); err != nil {
		r.log.Error("error during shutdown", "error", err)
		return err
	}
	r.log.Info("application stopped", "name", r.app.Name())
	return nil
}

// LoadConfigAndLogger mirrors the teacher's helper of the same name:
// load configuration, then stand up the logger from it.
func LoadConfigAndLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Setup(&cfg.Logging), nil
}

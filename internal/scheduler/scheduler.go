// Package scheduler implements C10: single-writer-per-(user,kind)
// admission for background ingest/consolidate runs, wall-clock deadline
// propagation, and a log-and-don't-retry-inline policy for background
// failures (spec.md §4.10, §5).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/logger"
)

// Kind distinguishes the two background run types the scheduler admits.
type Kind string

const (
	KindIngest      Kind = "ingest"
	KindConsolidate Kind = "consolidate"
)

// Dependencies holds the collaborators the scheduler needs.
type Dependencies struct {
	Config *config.SchedulerConfig
	Log    *logger.Logger
}

// Validate ensures all required dependencies are present.
func (d *Dependencies) Validate() error {
	if d.Config == nil {
		return fmt.Errorf("scheduler config is required")
	}
	if d.Log == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Engine is the C10 scheduler. A single Engine should be shared across
// every run for a given deployment so the admission table is global.
type Engine struct {
	deps  *Dependencies
	group singleflight.Group
}

// New constructs an Engine.
func New(deps *Dependencies) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &Engine{deps: deps}, nil
}

// RunIngest admits at most one in-flight ingest per user (spec.md §5: "no
// two concurrent ingests for the same user"), propagates deadline as a
// context deadline, and logs rather than retries a background failure.
// A call that arrives while one is already in flight for the same user
// collapses into it and observes the same result.
//
// Before admitting the run it also checks PerCycleMinSlack: if the
// deadline doesn't leave enough room to plausibly extract and persist
// anything, the cycle is rejected outright rather than burning a
// singleflight slot on a run that would likely defer everything anyway.
func (e *Engine) RunIngest(ctx context.Context, userID string, deadline time.Time, fn func(ctx context.Context) error) error {
	if slack := time.Until(deadline); slack < e.deps.Config.PerCycleMinSlack {
		e.deps.Log.WithComponent("scheduler").WithUser(userID).Warn(
			"rejecting ingest cycle, insufficient deadline slack to start",
			"slack", slack, "min_slack", e.deps.Config.PerCycleMinSlack)
		return fmt.Errorf("scheduler: insufficient slack (%s) to start ingest cycle, need at least %s", slack, e.deps.Config.PerCycleMinSlack)
	}
	return e.run(ctx, userID, KindIngest, deadline, fn)
}

// RunConsolidate admits at most one in-flight consolidation per user.
// Idempotency across repeated runs on the same day is the consolidation
// engine's responsibility (it upserts a Digest keyed by (user, date));
// the scheduler's job here is purely concurrency admission and deadline
// propagation.
func (e *Engine) RunConsolidate(ctx context.Context, userID string, deadline time.Time, fn func(ctx context.Context) error) error {
	return e.run(ctx, userID, KindConsolidate, deadline, fn)
}

func (e *Engine) run(ctx context.Context, userID string, kind Kind, deadline time.Time, fn func(ctx context.Context) error) error {
	log := e.deps.Log.WithComponent("scheduler").WithUser(userID)
	key := string(kind) + ":" + userID

	deadlineCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	_, err, shared := e.group.Do(key, func() (any, error) {
		return nil, fn(deadlineCtx)
	})
	if shared {
		log.Info("run collapsed into an in-flight run for this user+kind", "kind", string(kind))
	}
	if err != nil {
		log.Warn("background run failed, will not retry inline", "kind", string(kind), "error", err)
	}
	return err
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/logger"
)

func testSchedulerConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		SimDedup:            0.92,
		IngestBatchSize:     5,
		IngestDeadline:      120 * time.Second,
		PostExtractMinSlack: 12 * time.Second,
		PerCycleMinSlack:    15 * time.Second,
		MinContentLength:    50,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(&Dependencies{
		Config: testSchedulerConfig(),
		Log:    logger.New(&config.LoggingConfig{Level: "error", Format: "text"}),
	})
	require.NoError(t, err)
	return e
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(&Dependencies{Log: logger.New(&config.LoggingConfig{Level: "error", Format: "text"})})
	assert.Error(t, err)
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(&Dependencies{Config: testSchedulerConfig()})
	assert.Error(t, err)
}

func TestRunIngestPropagatesResult(t *testing.T) {
	e := newTestEngine(t)
	err := e.RunIngest(context.Background(), "user-1", time.Now().Add(time.Minute), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	boom := errors.New("boom")
	err = e.RunIngest(context.Background(), "user-1", time.Now().Add(time.Minute), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

// TestConcurrentRunsForSameUserCollapse asserts spec.md §5's "no two
// concurrent ingests for the same user": overlapping calls for the same
// (kind, user) run the underlying function at most once.
func TestConcurrentRunsForSameUserCollapse(t *testing.T) {
	e := newTestEngine(t)

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_ = e.RunIngest(context.Background(), "shared-user", time.Now().Add(time.Minute), func(ctx context.Context) error {
				if atomic.AddInt32(&calls, 1) == 1 {
					close(started)
					<-release
				}
				return nil
			})
		}()
	}

	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestDifferentUsersDoNotCollapse asserts admission is scoped per user,
// not global.
func TestDifferentUsersDoNotCollapse(t *testing.T) {
	e := newTestEngine(t)

	var calls int32
	var wg sync.WaitGroup
	wg.Add(2)
	for _, user := range []string{"user-a", "user-b"} {
		user := user
		go func() {
			defer wg.Done()
			_ = e.RunIngest(context.Background(), user, time.Now().Add(time.Minute), func(ctx context.Context) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestIngestAndConsolidateDoNotCollapse asserts admission is scoped per
// kind as well as per user: an ingest and a consolidate for the same
// user are independent runs.
func TestIngestAndConsolidateDoNotCollapse(t *testing.T) {
	e := newTestEngine(t)

	var calls int32
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = e.RunIngest(context.Background(), "user-1", time.Now().Add(time.Minute), func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		_ = e.RunConsolidate(context.Background(), "user-1", time.Now().Add(time.Minute), func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}()
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDeadlineIsAppliedToRunContext(t *testing.T) {
	e := newTestEngine(t)

	var sawDeadline bool
	deadline := time.Now().Add(50 * time.Millisecond)
	err := e.RunConsolidate(context.Background(), "user-1", deadline, func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		sawDeadline = ok && !d.After(deadline.Add(time.Millisecond))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawDeadline, "run context should carry the caller-supplied deadline")
}

// TestRunIngestRejectsInsufficientSlack asserts PerCycleMinSlack is
// enforced at admission: a deadline that doesn't leave the configured
// minimum slack is rejected before fn ever runs.
func TestRunIngestRejectsInsufficientSlack(t *testing.T) {
	e := newTestEngine(t)

	var called bool
	deadline := time.Now().Add(5 * time.Second)
	err := e.RunIngest(context.Background(), "user-1", deadline, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called, "fn should not run when slack is below PerCycleMinSlack")
}

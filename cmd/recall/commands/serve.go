package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/icyhot/recall/app"
	"github.com/icyhot/recall/internal/logger"
)

var serveFlags struct {
	interval time.Duration
	deadline time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background consolidation scheduler loop",
	Long: `Every interval, lists every user with at least one processed
ingest entry and runs one consolidation pass for each (idempotent per day via
digeststore), admitted through the C10 scheduler. Blocks until SIGINT or
SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := app.LoadConfigAndLogger()
		if err != nil {
			return err
		}
		a := app.New(cfg, log)
		scheduled := &scheduledApp{App: a, log: log, interval: serveFlags.interval, deadline: serveFlags.deadline}

		runner := app.NewRunner(scheduled, log)
		return runner.Run(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().DurationVar(&serveFlags.interval, "interval", 24*time.Hour, "how often to sweep all users for consolidation")
	serveCmd.Flags().DurationVar(&serveFlags.deadline, "deadline", 10*time.Minute, "wall-clock deadline for each user's consolidation run")
}

// scheduledApp wraps *app.App with a background goroutine that sweeps
// every known user on a ticker, running one consolidation pass each.
// Start/Stop manage that goroutine's lifetime; everything else delegates
// to the embedded App.
type scheduledApp struct {
	*app.App
	log      *logger.Logger
	interval time.Duration
	deadline time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *scheduledApp) Start(ctx context.Context) error {
	if err := s.App.Start(ctx); err != nil {
		return err
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx)
	return nil
}

func (s *scheduledApp) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return s.App.Stop(ctx)
}

func (s *scheduledApp) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *scheduledApp) sweepOnce(ctx context.Context) {
	log := s.log.WithComponent("serve")
	users, err := s.SyncState.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users for scheduled consolidation", "error", err)
		return
	}
	date := time.Now().UTC().Format("2006-01-02")
	for _, user := range users {
		deadline := time.Now().Add(s.deadline)
		if _, err := runConsolidate(ctx, s.App, user, date, nil, deadline); err != nil {
			log.Warn("scheduled consolidation failed, will not retry inline", "user", user, "error", err)
		}
	}
}

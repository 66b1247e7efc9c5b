package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/icyhot/recall/app"
	"github.com/icyhot/recall/internal/types"
)

var consolidateFlags struct {
	user         string
	date         string
	contactsFile string
	deadline     time.Duration
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Run one consolidation pass for a user",
	Long: `Runs C8: clustering and anti-clustering discovery, connection
creation/strengthening, and implication synthesis, idempotently per
(user, date) via digeststore's upsert.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contacts, err := loadContacts(consolidateFlags.contactsFile)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		ctx := context.Background()
		if err := a.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		date := consolidateFlags.date
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}
		deadline := time.Now().Add(consolidateFlags.deadline)

		digest, runErr := runConsolidate(ctx, a, consolidateFlags.user, date, contactNames(contacts), deadline)
		if runErr != nil {
			return fmt.Errorf("consolidation failed: %w", runErr)
		}

		fmt.Println(digest.Summary)
		return nil
	},
}

// runConsolidate admits one consolidation run for (user, date) through
// the C10 scheduler, shared by the one-shot consolidate subcommand and
// the serve subcommand's daily loop.
func runConsolidate(ctx context.Context, a *app.App, user, date string, contacts []string, deadline time.Time) (*types.Digest, error) {
	var digest *types.Digest
	err := a.Scheduler.RunConsolidate(ctx, user, deadline, func(runCtx context.Context) error {
		var err error
		digest, err = a.Consolidation.Consolidate(runCtx, user, date, contacts)
		return err
	})
	return digest, err
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().StringVar(&consolidateFlags.user, "user", "", "user id to consolidate for (required)")
	consolidateCmd.Flags().StringVar(&consolidateFlags.date, "date", "", "consolidation date, YYYY-MM-DD (default today, UTC)")
	consolidateCmd.Flags().StringVar(&consolidateFlags.contactsFile, "contacts", "", "path to a JSON contact snapshot, passed to the consolidation LLM prompts")
	consolidateCmd.Flags().DurationVar(&consolidateFlags.deadline, "deadline", 5*time.Minute, "wall-clock deadline for this run")
	consolidateCmd.MarkFlagRequired("user")
}

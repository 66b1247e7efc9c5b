package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/icyhot/recall/internal/memory"
)

var ingestFlags struct {
	user         string
	source       string
	sourceID     string
	sourceDate   string
	file         string
	contactsFile string
	mentions     map[string]string
	deadline     time.Duration
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one journal entry into the memory graph",
	Long: `Runs the C4 ingest pipeline (extract, embed, semantic dedup, contact
resolution) over a single piece of journal text, firing C5 abstraction
asynchronously for every newly created memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readEntryText(ingestFlags.file)
		if err != nil {
			return err
		}
		contacts, err := loadContacts(ingestFlags.contactsFile)
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

		deadline := time.Now().Add(ingestFlags.deadline)
		opts := memory.Options{Contacts: contacts, ExplicitMentions: ingestFlags.mentions, Deadline: deadline}

		sourceDate := ingestFlags.sourceDate
		if sourceDate == "" {
			sourceDate = time.Now().UTC().Format("2006-01-02")
		}

		var result memory.Result
		runErr := a.Scheduler.RunIngest(ctx, ingestFlags.user, deadline, func(runCtx context.Context) error {
			var err error
			result, err = a.Ingest.Ingest(runCtx, ingestFlags.user, ingestFlags.source, ingestFlags.sourceID, text, sourceDate, opts)
			return err
		})
		if runErr != nil {
			return fmt.Errorf("ingest failed: %w", runErr)
		}

		fmt.Printf("created=%d reinforced=%d remaining_estimate=%d\n", result.Created, result.Reinforced, result.RemainingEstimate)
		return nil
	},
}

func readEntryText(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("failed to read entry text from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read entry text from %s: %w", path, err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFlags.user, "user", "", "user id to ingest for (required)")
	ingestCmd.Flags().StringVar(&ingestFlags.source, "source", "journal", "ingest source name")
	ingestCmd.Flags().StringVar(&ingestFlags.sourceID, "source-id", "", "external id of this entry within source (required)")
	ingestCmd.Flags().StringVar(&ingestFlags.sourceDate, "source-date", "", "entry date, YYYY-MM-DD (default today, UTC)")
	ingestCmd.Flags().StringVar(&ingestFlags.file, "file", "-", "path to journal entry text, or - for stdin")
	ingestCmd.Flags().StringVar(&ingestFlags.contactsFile, "contacts", "", "path to a JSON contact snapshot ([{\"id\":..,\"name\":..}])")
	ingestCmd.Flags().StringToStringVar(&ingestFlags.mentions, "mention", nil, "explicit label=contact_id mention, repeatable")
	ingestCmd.Flags().DurationVar(&ingestFlags.deadline, "deadline", 2*time.Minute, "wall-clock deadline for this run")
	ingestCmd.MarkFlagRequired("user")
	ingestCmd.MarkFlagRequired("source-id")
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/icyhot/recall/internal/retrieval"
)

var retrieveFlags struct {
	user          string
	query         string
	maxMemories   int
	maxHops       int
	minStrength   float64
	contactFilter string
	skipHebbian   bool
	noDiversify   bool
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Run C9 spreading-activation retrieval for a query",
	Long: `Embeds the query, seeds and spreads activation over the memory
graph, bridges in implication-connected memories, diversifies by contact
entity, and (unless --skip-hebbian) strengthens traversed connections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		ctx := context.Background()
		if err := a.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		opts := retrieval.Options{
			ContactFilter: retrieveFlags.contactFilter,
			SkipHebbian:   retrieveFlags.skipHebbian,
		}
		if cmd.Flags().Changed("max-memories") {
			opts.MaxMemories = &retrieveFlags.maxMemories
		}
		if cmd.Flags().Changed("max-hops") {
			opts.MaxHops = &retrieveFlags.maxHops
		}
		if cmd.Flags().Changed("min-strength") {
			opts.MinStrength = &retrieveFlags.minStrength
		}
		if retrieveFlags.noDiversify {
			diversify := false
			opts.Diversify = &diversify
		}

		result, err := a.Retrieval.Retrieve(ctx, retrieveFlags.user, retrieveFlags.query, opts)
		if err != nil {
			return fmt.Errorf("retrieval failed: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().StringVar(&retrieveFlags.user, "user", "", "user id to retrieve for (required)")
	retrieveCmd.Flags().StringVar(&retrieveFlags.query, "query", "", "query text (required)")
	retrieveCmd.Flags().IntVar(&retrieveFlags.maxMemories, "max-memories", 0, "override the default max memories returned")
	retrieveCmd.Flags().IntVar(&retrieveFlags.maxHops, "max-hops", 0, "override the default max spreading-activation hops")
	retrieveCmd.Flags().Float64Var(&retrieveFlags.minStrength, "min-strength", 0, "override the default minimum effective strength gate")
	retrieveCmd.Flags().StringVar(&retrieveFlags.contactFilter, "contact", "", "restrict seeding/spreading to memories touching this contact id")
	retrieveCmd.Flags().BoolVar(&retrieveFlags.skipHebbian, "skip-hebbian", false, "skip Hebbian strengthen/bump write-back")
	retrieveCmd.Flags().BoolVar(&retrieveFlags.noDiversify, "no-diversify", false, "skip entity-diversity MMR reordering")
	retrieveCmd.MarkFlagRequired("user")
	retrieveCmd.MarkFlagRequired("query")
}

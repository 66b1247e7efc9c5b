// Package commands implements the recall CLI's subcommands: ingest,
// consolidate, retrieve, and serve, each wiring internal/config through
// app.App to one of the engine operations.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/icyhot/recall/app"
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "A personal associative memory graph over journal entries",
	Long: `recall ingests journal text into a graph of weighted, typed memory
connections, consolidates it into clusters and higher-order implications,
and answers queries with spreading-activation retrieval.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadApp loads configuration, sets up logging, and constructs (without
// initializing) an *app.App for a subcommand to drive directly.
func loadApp() (*app.App, error) {
	cfg, log, err := app.LoadConfigAndLogger()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log), nil
}

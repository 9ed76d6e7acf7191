package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codepractice/internal/config"
	"codepractice/internal/logging"
)

var (
	portFlag   string
	storeFlag  string
	graderFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "codepractice",
		Short: "Timed coding practice server",
		Long:  "codepractice serves timed test sessions, walks them through a problem catalog and grades submissions.",
		// No subcommand means serve.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "session store: mongo, sqlite, postgres or memory (overrides STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&graderFlag, "grader", "", "grader: heuristic or remote (overrides GRADER)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies CLI flag overrides
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if portFlag != "" {
		cfg.HTTPPort = portFlag
	}
	if storeFlag != "" {
		cfg.StoreDriver = storeFlag
	}
	if graderFlag != "" {
		cfg.Grader = graderFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.New(cfg.LogLevel, cfg.LogJSON)
	return cfg, nil
}

package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "govbrief",
		Short: "Generate personalized AI governance newsletters",
		Long: `GovBrief - Personalized AI Governance Newsletter Tool

Collects recent AI governance and responsible AI news, scores it against
your preferences, and assembles a sectioned newsletter.

Core workflows:
  • Generate: search topics → dedupe and validate → analyze → newsletter
  • Serve: HTTP API for generation, preferences, and history
  • Preview: browse a generated newsletter in the terminal

Examples:
  # Generate a weekly newsletter for a user
  govbrief generate --user alice --format weekly

  # Generate offline with mock search and default scoring
  govbrief generate --user alice --offline

  # Run the HTTP API
  govbrief serve

  # Preview the latest newsletter
  govbrief preview --user alice

  # Export a stored newsletter to markdown
  govbrief export --user alice`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .govbrief.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewPreviewCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewPreferencesCmd())

	cobra.OnInitialize(initConfig)

	return rootCmd
}

// Execute runs the CLI. Called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

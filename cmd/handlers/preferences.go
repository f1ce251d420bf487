package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
	"govbrief/internal/store"
)

// NewPreferencesCmd creates the preferences command group.
func NewPreferencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Show or update a user's newsletter preferences",
	}

	cmd.AddCommand(newPreferencesShowCmd())
	cmd.AddCommand(newPreferencesSetCmd())

	return cmd
}

func newPreferencesShowCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a user's preferences as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			prefs, err := st.GetPreferences(userID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(prefs)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID")
	return cmd
}

func newPreferencesSetCmd() *cobra.Command {
	var (
		userID     string
		keywords   []string
		industries []string
		sources    []string
		excluded   []string
		threshold  float64
		urgency    int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update a user's preferences",
		Long: `Update preference fields for a user. Only flags that are set change
the stored value; everything else is preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			prefs, err := st.GetPreferences(userID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("keywords") {
				prefs.Keywords = keywords
			}
			if cmd.Flags().Changed("industries") {
				prefs.IndustryFocus = industries
			}
			if cmd.Flags().Changed("sources") {
				prefs.PreferredSources = sources
			}
			if cmd.Flags().Changed("exclude") {
				prefs.ExcludedSources = excluded
			}
			if cmd.Flags().Changed("threshold") {
				if threshold < 0 || threshold > 1 {
					return fmt.Errorf("threshold must be between 0.0 and 1.0")
				}
				prefs.RelevanceThreshold = threshold
			}
			if cmd.Flags().Changed("urgency") {
				if urgency < 1 || urgency > 10 {
					return fmt.Errorf("urgency must be between 1 and 10")
				}
				prefs.UrgencyThreshold = urgency
			}

			if err := st.SavePreferences(prefs); err != nil {
				return err
			}

			fmt.Printf("Preferences updated for %s\n", userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "interest keywords")
	cmd.Flags().StringSliceVar(&industries, "industries", nil, "industry focus areas")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "preferred sources")
	cmd.Flags().StringSliceVar(&excluded, "exclude", nil, "excluded sources")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "relevance threshold (0.0-1.0)")
	cmd.Flags().IntVar(&urgency, "urgency", 0, "urgency threshold (1-10)")

	return cmd
}

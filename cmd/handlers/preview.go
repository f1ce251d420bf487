package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
	"govbrief/internal/store"
	"govbrief/internal/tui"
)

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	var (
		userID       string
		newsletterID string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse a generated newsletter in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if newsletterID != "" {
				newsletter, err := st.GetNewsletter(newsletterID)
				if err != nil {
					return err
				}
				if newsletter == nil {
					return fmt.Errorf("newsletter %s not found", newsletterID)
				}
				return tui.Preview(*newsletter)
			}

			newsletters, err := st.ListNewsletters(userID, 1)
			if err != nil {
				return err
			}
			if len(newsletters) == 0 {
				return fmt.Errorf("no newsletters found for user %s, run generate first", userID)
			}
			return tui.Preview(newsletters[0])
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "default", "show the latest newsletter for this user")
	cmd.Flags().StringVar(&newsletterID, "id", "", "show a specific newsletter by ID")

	return cmd
}

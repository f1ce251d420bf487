package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
	"govbrief/internal/render"
	"govbrief/internal/store"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var (
		userID       string
		newsletterID string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a stored newsletter to a markdown file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if outputDir == "" {
				outputDir = cfg.Output.Directory
			}

			if newsletterID != "" {
				newsletter, err := st.GetNewsletter(newsletterID)
				if err != nil {
					return err
				}
				if newsletter == nil {
					return fmt.Errorf("newsletter %s not found", newsletterID)
				}
				path, err := render.WriteNewsletter(*newsletter, outputDir)
				if err != nil {
					return err
				}
				fmt.Printf("Exported to %s\n", path)
				return nil
			}

			newsletters, err := st.ListNewsletters(userID, 1)
			if err != nil {
				return err
			}
			if len(newsletters) == 0 {
				return fmt.Errorf("no newsletters found for user %s, run generate first", userID)
			}
			path, err := render.WriteNewsletter(newsletters[0], outputDir)
			if err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "default", "export the latest newsletter for this user")
	cmd.Flags().StringVar(&newsletterID, "id", "", "export a specific newsletter by ID")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")

	return cmd
}

package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"govbrief/internal/config"
	"govbrief/internal/core"
	"govbrief/internal/render"
	"govbrief/internal/store"
	"govbrief/internal/tui"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		userID      string
		format      string
		template    string
		maxArticles int
		offline     bool
		preview     bool
		export      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a newsletter for a user",
		Long: `Run the full generation workflow: search configured topics, remove
duplicates and low quality articles, analyze what remains against the user's
preferences, and assemble the final newsletter.

The result is stored and optionally exported to a markdown file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			st, err := store.NewStore(cfg.Storage.Directory)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			prefs, err := st.GetPreferences(userID)
			if err != nil {
				return fmt.Errorf("failed to load preferences: %w", err)
			}

			newsConfig := core.DefaultConfig()
			if format != "" {
				newsConfig.Format = core.NewsletterFormat(format)
			}
			if template != "" {
				newsConfig.Template = core.TemplateVariant(template)
			}
			if maxArticles > 0 {
				newsConfig.MaxArticles = maxArticles
			}

			orch, cleanup, err := buildOrchestrator(cmd.Context(), cfg, offline)
			if err != nil {
				return err
			}
			defer cleanup()

			newsletter, err := orch.GenerateNewsletter(cmd.Context(), prefs, newsConfig)
			if err != nil {
				return fmt.Errorf("newsletter generation failed: %w", err)
			}

			if err := st.SaveNewsletter(newsletter); err != nil {
				return fmt.Errorf("failed to save newsletter: %w", err)
			}

			fmt.Printf("Generated %q with %d articles across %d sections\n",
				newsletter.Title, newsletter.TotalArticles, len(newsletter.Sections))

			if export {
				path, err := render.WriteNewsletter(newsletter, cfg.Output.Directory)
				if err != nil {
					return fmt.Errorf("failed to export newsletter: %w", err)
				}
				fmt.Printf("Exported to %s\n", path)
			}

			if preview {
				return tui.Preview(newsletter)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID to generate for")
	cmd.Flags().StringVarP(&format, "format", "f", "", "newsletter format (daily, weekly, monthly)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "template variant (professional, brief, detailed)")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 0, "maximum articles to include")
	cmd.Flags().BoolVar(&offline, "offline", false, "use mock search and default scoring, no API keys needed")
	cmd.Flags().BoolVar(&preview, "preview", false, "open the result in the terminal preview")
	cmd.Flags().BoolVar(&export, "export", true, "write the newsletter to the output directory")

	return cmd
}

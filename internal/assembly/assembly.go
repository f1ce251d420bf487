package assembly

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"govbrief/internal/core"
	"govbrief/internal/logger"
	"govbrief/internal/sections"
	"govbrief/internal/templates"
)

// fallbackArticleCount limits how many articles the synthesized fallback
// section lists.
const fallbackArticleCount = 3

// Generator is the external capability that writes the prose for one section.
// Implementations may fail per call; the assembler substitutes a deterministic
// fallback section.
type Generator interface {
	GenerateSection(ctx context.Context, sectionName string, articles []core.AnalyzedArticle, config core.NewsletterConfig) (string, error)
}

// Assembler distributes analyzed articles into sections, generates each
// section's content, and renders the final newsletter document. Assemble
// always returns a well-formed Newsletter; it never fails.
type Assembler struct {
	generator Generator
	now       func() time.Time
}

// New creates an Assembler backed by the given generation capability.
func New(generator Generator) *Assembler {
	return &Assembler{generator: generator, now: time.Now}
}

// Assemble builds the final newsletter from analyzed articles. An empty input
// produces a placeholder newsletter rather than an error.
func (a *Assembler) Assemble(ctx context.Context, analyzed []core.AnalyzedArticle, prefs core.UserPreferences, config core.NewsletterConfig) core.Newsletter {
	generatedAt := a.now().UTC()
	title := newsletterTitle(config.Format, generatedAt)

	if len(analyzed) == 0 {
		logger.Warn("no analyzed articles, assembling placeholder newsletter", "user", prefs.UserID)
		return core.Newsletter{
			ID:          uuid.NewString(),
			UserID:      prefs.UserID,
			Title:       title,
			Content:     placeholderContent(config.Format, generatedAt),
			Config:      config,
			Sections:    map[string]string{},
			GeneratedAt: generatedAt,
		}
	}

	distributed := sections.Cap(sections.Distribute(analyzed, config.Sections))

	generated := make(map[string]string)
	for _, name := range config.Sections {
		placed := distributed[name]
		if len(placed) == 0 {
			logger.Debug("section has no articles, skipping", "section", name)
			continue
		}
		generated[name] = a.sectionContent(ctx, name, placed, config)
	}

	data := templates.Data{
		Title:         title,
		GeneratedAt:   generatedAt,
		TotalArticles: len(analyzed),
		Sections:      generated,
		SectionOrder:  config.Sections,
		Config:        config,
		Preferences:   prefs,
	}

	return core.Newsletter{
		ID:            uuid.NewString(),
		UserID:        prefs.UserID,
		Title:         title,
		Content:       renderDocument(data),
		Config:        config,
		TotalArticles: len(analyzed),
		Sections:      generated,
		GeneratedAt:   generatedAt,
	}
}

// sectionContent asks the generation capability for section prose, falling
// back to a synthesized article list on failure. This never fails.
func (a *Assembler) sectionContent(ctx context.Context, name string, articles []core.AnalyzedArticle, config core.NewsletterConfig) string {
	content, err := a.generator.GenerateSection(ctx, name, articles, config)
	if err != nil || strings.TrimSpace(content) == "" {
		logger.Warn("section generation failed, using fallback", "section", name, "error", errString(err))
		return FallbackSection(name, articles)
	}
	return content
}

// FallbackSection synthesizes deterministic section content from article
// metadata: a short intro and a numbered list of up to three articles.
func FallbackSection(name string, articles []core.AnalyzedArticle) string {
	var body strings.Builder
	body.WriteString(fmt.Sprintf("**%s**\n\nRecent developments in this area include:\n\n", name))

	count := len(articles)
	if count > fallbackArticleCount {
		count = fallbackArticleCount
	}
	for i := 0; i < count; i++ {
		article := articles[i].Article
		body.WriteString(fmt.Sprintf("%d. **%s** - %s... [Read more](%s)\n\n",
			i+1, article.Title, truncate(article.Summary, 100), article.URL))
	}

	return body.String()
}

// renderDocument renders with the configured template variant. A panicking
// renderer must not lose the document, so it degrades to the minimal
// concatenation renderer.
func renderDocument(data templates.Data) (content string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("template rendering failed, using minimal renderer",
				"error", fmt.Sprintf("%v", r), "template", string(data.Config.Template))
			content = templates.RenderMinimal(data)
		}
	}()
	return templates.ForVariant(data.Config.Template).Render(data)
}

func newsletterTitle(format core.NewsletterFormat, generatedAt time.Time) string {
	return fmt.Sprintf("GovBrief %s Brief - %s", titleCase(string(format)), generatedAt.Format("January 2006"))
}

func placeholderContent(format core.NewsletterFormat, generatedAt time.Time) string {
	return fmt.Sprintf(`# GovBrief %s Brief

**No content available** - no articles matched the configured window and preferences.

Generated: %s
`, titleCase(string(format)), generatedAt.Format("January 2, 2006 at 3:04 PM UTC"))
}

// truncate cuts s to at most max runes, never splitting a multibyte rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func errString(err error) string {
	if err == nil {
		return "empty content"
	}
	return err.Error()
}

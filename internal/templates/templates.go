package templates

import (
	"fmt"
	"strings"
	"time"

	"govbrief/internal/core"
)

// Data carries everything a template needs to render a newsletter document.
// GeneratedAt is injected by the caller so rendering stays deterministic.
type Data struct {
	Title         string
	GeneratedAt   time.Time
	TotalArticles int
	Sections      map[string]string // section name -> generated body
	SectionOrder  []string          // render order, from the config's section list
	Config        core.NewsletterConfig
	Preferences   core.UserPreferences
}

// Renderer turns assembled section content into a final document. The set of
// renderers is closed; ForVariant selects among them.
type Renderer interface {
	Render(data Data) string
	Name() string
}

// ForVariant returns the renderer for a template variant. Unknown variants
// fall back to the professional renderer.
func ForVariant(variant core.TemplateVariant) Renderer {
	switch variant {
	case core.TemplateBrief:
		return BriefRenderer{}
	case core.TemplateDetailed:
		return DetailedRenderer{}
	case core.TemplateProfessional:
		return ProfessionalRenderer{}
	default:
		return ProfessionalRenderer{}
	}
}

// orderedSections yields section names in render order, skipping sections
// that have no generated body.
func orderedSections(data Data) []string {
	names := make([]string, 0, len(data.Sections))
	for _, name := range data.SectionOrder {
		if _, ok := data.Sections[name]; ok {
			names = append(names, name)
		}
	}
	// Sections outside the configured order (should not happen after
	// distribution, but render them rather than losing content)
	for name := range data.Sections {
		found := false
		for _, ordered := range names {
			if ordered == name {
				found = true
				break
			}
		}
		if !found {
			names = append(names, name)
		}
	}
	return names
}

func formatHeader(title string, generatedAt time.Time) string {
	return fmt.Sprintf(`# %s

**GovBrief** - Trusted Insights in AI Governance
*Generated: %s*

---

`, title, generatedAt.UTC().Format("January 2, 2006 at 3:04 PM UTC"))
}

func formatFooter() string {
	return `
---

**Thank you for reading GovBrief**, your source for dependable AI governance intelligence.

*This newsletter was generated automatically from curated and analyzed sources.*
`
}

// ProfessionalRenderer produces the default full-length document with an
// executive summary.
type ProfessionalRenderer struct{}

func (ProfessionalRenderer) Name() string { return "professional" }

func (ProfessionalRenderer) Render(data Data) string {
	var doc strings.Builder

	doc.WriteString(formatHeader(data.Title, data.GeneratedAt))

	doc.WriteString(fmt.Sprintf(`## Executive Summary

Welcome to your %s GovBrief briefing. This edition covers %d carefully curated articles spanning %d key areas of AI development and governance.

`, data.Config.Format, data.TotalArticles, len(data.Sections)))

	for _, name := range orderedSections(data) {
		doc.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", name, data.Sections[name]))
	}

	doc.WriteString(formatFooter())
	return doc.String()
}

// BriefRenderer produces a compact document with no footer.
type BriefRenderer struct{}

func (BriefRenderer) Name() string { return "brief" }

func (BriefRenderer) Render(data Data) string {
	var doc strings.Builder

	doc.WriteString(fmt.Sprintf("# %s\n\n*%d articles • %s*\n\n",
		data.Title, data.TotalArticles, data.GeneratedAt.UTC().Format("Jan 2, 2006")))

	for _, name := range orderedSections(data) {
		doc.WriteString(fmt.Sprintf("**%s**\n%s\n\n", name, data.Sections[name]))
	}

	return doc.String()
}

// DetailedRenderer produces the long-form document with a personalization
// block, table of contents, and trailing statistics.
type DetailedRenderer struct{}

func (DetailedRenderer) Name() string { return "detailed" }

func (DetailedRenderer) Render(data Data) string {
	var doc strings.Builder

	doc.WriteString(formatHeader(data.Title, data.GeneratedAt))

	doc.WriteString("## Personalization Summary\n\nThis newsletter was tailored based on your preferences:\n")
	doc.WriteString(fmt.Sprintf("- **Keywords**: %s\n", joinOrDefault(truncateList(data.Preferences.Keywords, 5), "General AI topics")))
	doc.WriteString(fmt.Sprintf("- **Focus Areas**: %s\n", joinOrDefault(truncateList(data.Preferences.IndustryFocus, 3), "All industries")))
	doc.WriteString(fmt.Sprintf("- **Format**: %s update\n", titleCase(string(data.Config.Format))))
	doc.WriteString(fmt.Sprintf("- **Articles Analyzed**: %d\n\n", data.TotalArticles))

	names := orderedSections(data)

	doc.WriteString("## Table of Contents\n\n")
	for i, name := range names {
		doc.WriteString(fmt.Sprintf("%d. [%s](#%s)\n", i+1, name, anchor(name)))
	}
	doc.WriteString("\n")

	for _, name := range names {
		doc.WriteString(fmt.Sprintf("## %s\n\n%s\n\n---\n\n", name, data.Sections[name]))
	}

	doc.WriteString("## Newsletter Statistics\n\n")
	doc.WriteString(fmt.Sprintf("- **Total Articles Processed**: %d\n", data.TotalArticles))
	doc.WriteString(fmt.Sprintf("- **Sections Generated**: %d\n", len(data.Sections)))
	doc.WriteString(fmt.Sprintf("- **Generation Time**: %s\n", data.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	doc.WriteString(fmt.Sprintf("- **Format**: %s\n", titleCase(string(data.Config.Format))))
	doc.WriteString(fmt.Sprintf("- **Template**: %s\n", titleCase(string(data.Config.Template))))

	doc.WriteString(formatFooter())
	return doc.String()
}

// RenderMinimal is the last-resort renderer used when the selected template
// fails: a basic header followed by plain section concatenation.
func RenderMinimal(data Data) string {
	var doc strings.Builder

	doc.WriteString(fmt.Sprintf("# %s\n\nGenerated: %s\n\nTotal Articles: %d\n\n",
		data.Title, data.GeneratedAt.UTC().Format("January 2, 2006 at 3:04 PM UTC"), data.TotalArticles))

	for _, name := range orderedSections(data) {
		doc.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", name, data.Sections[name]))
	}

	return doc.String()
}

func anchor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func truncateList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func joinOrDefault(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"govbrief/internal/core"
)

type stubGenerator struct {
	err      error
	sections map[string]string
	calls    []string
}

func (s *stubGenerator) GenerateSection(ctx context.Context, name string, articles []core.AnalyzedArticle, config core.NewsletterConfig) (string, error) {
	s.calls = append(s.calls, name)
	if s.err != nil {
		return "", s.err
	}
	if body, ok := s.sections[name]; ok {
		return body, nil
	}
	return fmt.Sprintf("Generated content for %s covering %d articles.", name, len(articles)), nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
}

func newTestAssembler(g Generator) *Assembler {
	a := New(g)
	a.now = fixedNow
	return a
}

func analyzedArticles(section string, n int) []core.AnalyzedArticle {
	out := make([]core.AnalyzedArticle, n)
	for i := range out {
		out[i] = core.AnalyzedArticle{
			Article: core.Article{
				Title:   fmt.Sprintf("Article %d title with substance", i),
				URL:     fmt.Sprintf("https://example.com/%s/%d", section, i),
				Source:  "example.com",
				Summary: strings.Repeat("Summary text. ", 12),
			},
			RelevanceScore:       0.8,
			PersonalizationScore: 0.6,
			ImpactScore:          6,
			AssignedSection:      section,
		}
	}
	return out
}

func testConfig() core.NewsletterConfig {
	return core.NewsletterConfig{
		Format:   core.FormatWeekly,
		Sections: []string{"Executive Highlights", "Forward Intelligence"},
		Template: core.TemplateProfessional,
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	assembler := newTestAssembler(&stubGenerator{})

	newsletter := assembler.Assemble(context.Background(), nil, core.UserPreferences{UserID: "u1"}, testConfig())

	if newsletter.TotalArticles != 0 {
		t.Errorf("expected 0 total articles, got %d", newsletter.TotalArticles)
	}
	if len(newsletter.Sections) != 0 {
		t.Errorf("expected empty sections map, got %d entries", len(newsletter.Sections))
	}
	if strings.TrimSpace(newsletter.Content) == "" {
		t.Error("expected non-empty placeholder content")
	}
	if newsletter.UserID != "u1" {
		t.Errorf("expected user id carried over, got %q", newsletter.UserID)
	}
}

func TestAssembleGeneratesConfiguredSections(t *testing.T) {
	gen := &stubGenerator{}
	assembler := newTestAssembler(gen)

	analyzed := append(
		analyzedArticles("Executive Highlights", 2),
		analyzedArticles("Forward Intelligence", 1)...,
	)

	newsletter := assembler.Assemble(context.Background(), analyzed, core.UserPreferences{UserID: "u1"}, testConfig())

	if newsletter.TotalArticles != 3 {
		t.Errorf("expected 3 total articles, got %d", newsletter.TotalArticles)
	}
	if len(newsletter.Sections) != 2 {
		t.Fatalf("expected 2 generated sections, got %d", len(newsletter.Sections))
	}
	if !strings.Contains(newsletter.Content, "Generated content for Executive Highlights") {
		t.Error("final content missing generated section body")
	}
	if len(gen.calls) != 2 {
		t.Errorf("expected generator called once per non-empty section, got %v", gen.calls)
	}
}

func TestAssembleFallbackSectionOnGeneratorFailure(t *testing.T) {
	assembler := newTestAssembler(&stubGenerator{err: errors.New("model unavailable")})

	analyzed := analyzedArticles("Executive Highlights", 4)
	newsletter := assembler.Assemble(context.Background(), analyzed, core.UserPreferences{UserID: "u1"}, testConfig())

	body := newsletter.Sections["Executive Highlights"]
	if body == "" {
		t.Fatal("expected fallback section content")
	}
	if !strings.Contains(body, "Recent developments in this area include:") {
		t.Errorf("fallback section missing intro, got:\n%s", body)
	}
	// At most 3 numbered entries
	if strings.Contains(body, "4. **") {
		t.Error("fallback section listed more than 3 articles")
	}
	if !strings.Contains(body, "[Read more](https://example.com/Executive Highlights/0)") {
		t.Error("fallback section missing article link")
	}
}

func TestAssembleCapsArticlesPerSection(t *testing.T) {
	gen := &stubGenerator{}
	assembler := newTestAssembler(gen)

	analyzed := analyzedArticles("Executive Highlights", 9)
	newsletter := assembler.Assemble(context.Background(), analyzed, core.UserPreferences{UserID: "u1"}, testConfig())

	// The cap applies to content generation input; the newsletter still
	// reports every analyzed article.
	if newsletter.TotalArticles != 9 {
		t.Errorf("expected total 9 articles, got %d", newsletter.TotalArticles)
	}
	if !strings.Contains(newsletter.Sections["Executive Highlights"], "covering 5 articles") {
		t.Errorf("expected section generation capped at 5 articles, got: %s", newsletter.Sections["Executive Highlights"])
	}
}

func TestAssembleMisassignedArticlesFallToFirstSection(t *testing.T) {
	gen := &stubGenerator{}
	assembler := newTestAssembler(gen)

	analyzed := analyzedArticles("Unmapped Section", 3)
	newsletter := assembler.Assemble(context.Background(), analyzed, core.UserPreferences{UserID: "u1"}, testConfig())

	if _, ok := newsletter.Sections["Executive Highlights"]; !ok {
		t.Error("expected misassigned articles to land in the first configured section")
	}
	if _, ok := newsletter.Sections["Unmapped Section"]; ok {
		t.Error("unexpected section outside the configured list")
	}
}

func TestFallbackSectionDeterministic(t *testing.T) {
	articles := analyzedArticles("X", 3)
	if FallbackSection("X", articles) != FallbackSection("X", articles) {
		t.Error("fallback section should be deterministic for the same input")
	}
}

func TestTruncateRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii untouched", "summary", 100, "summary"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte cut on rune boundary", "законопроект", 5, "закон"},
		{"multibyte within limit", "закон", 5, "закон"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestFallbackSectionKeepsMultibyteSummariesValid(t *testing.T) {
	long := strings.Repeat("ü", 150)
	articles := []core.AnalyzedArticle{{
		Article: core.Article{
			Title:   "EU Draft Rules Explained",
			URL:     "https://europa.eu/draft-rules",
			Summary: long,
		},
	}}

	body := FallbackSection("Compliance & Risk Watch", articles)
	if !utf8.ValidString(body) {
		t.Error("fallback section should be valid UTF-8")
	}
	if !strings.Contains(body, strings.Repeat("ü", 100)+"...") {
		t.Error("summary should be cut to 100 characters before the ellipsis")
	}
}

package handlers

import (
	"context"

	"govbrief/internal/analysis"
	"govbrief/internal/assembly"
	"govbrief/internal/config"
	"govbrief/internal/core"
	"govbrief/internal/fetch"
	"govbrief/internal/llm"
	"govbrief/internal/logger"
	"govbrief/internal/pipeline"
	"govbrief/internal/search"
)

// defaultCapability scores everything with the neutral defaults. Used in
// offline mode where no model is available.
type defaultCapability struct{}

func (defaultCapability) AnalyzeArticle(ctx context.Context, article core.Article, prefs core.UserPreferences, sections []string) (analysis.Result, error) {
	return analysis.DefaultResult(sections), nil
}

// fallbackGenerator renders sections as plain article lists. Used in offline
// mode where no model is available.
type fallbackGenerator struct{}

func (fallbackGenerator) GenerateSection(ctx context.Context, sectionName string, articles []core.AnalyzedArticle, config core.NewsletterConfig) (string, error) {
	return assembly.FallbackSection(sectionName, articles), nil
}

// buildOrchestrator wires the search provider, analysis capability, and
// section generator from configuration. Offline mode swaps all three for
// their no-network counterparts; a missing Perplexity key silently degrades
// search to the mock provider.
func buildOrchestrator(ctx context.Context, cfg *config.Config, offline bool) (*pipeline.Orchestrator, func(), error) {
	if offline {
		orch := pipeline.New(search.NewMockProvider(), defaultCapability{}, fallbackGenerator{})
		return orch, func() {}, nil
	}

	factory := search.NewProviderFactory()
	provider, err := factory.CreateProvider(search.ProviderType(cfg.Search.Provider), map[string]string{
		"api_key": cfg.Search.Perplexity.APIKey,
		"model":   cfg.Search.Perplexity.Model,
	})
	if err != nil {
		logger.Warn("search provider unavailable, using mock articles", "provider", cfg.Search.Provider, "error", err)
		provider = search.NewMockProvider()
	}

	client, err := llm.NewClient(ctx, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, nil, err
	}

	orch := pipeline.New(provider, client, client)
	if cfg.Search.EnrichContent {
		orch.SetEnricher(fetch.NewEnricher(cfg.Search.MaxEnrichArticles))
	}

	cleanup := func() { _ = client.Close() }
	return orch, cleanup, nil
}

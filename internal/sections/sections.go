package sections

import (
	"sort"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

// MaxPerSection caps how many articles a single section feeds into content
// generation. The cap is applied per section, not globally.
const MaxPerSection = 5

// CompositeScore is the ranking key used to order articles for placement:
// 0.4*relevance + 0.4*personalization + 0.2*(impact/10).
func CompositeScore(article core.AnalyzedArticle) float64 {
	return article.RelevanceScore*0.4 +
		article.PersonalizationScore*0.4 +
		float64(article.ImpactScore)/10.0*0.2
}

// Distribute assigns every analyzed article to exactly one target section.
// Articles whose assigned section is not a target fall back to the first
// target section; nothing is ever dropped. Within each section articles keep
// composite-rank order, best first.
func Distribute(articles []core.AnalyzedArticle, targetSections []string) map[string][]core.AnalyzedArticle {
	result := make(map[string][]core.AnalyzedArticle)
	if len(articles) == 0 || len(targetSections) == 0 {
		return result
	}

	targets := make(map[string]struct{}, len(targetSections))
	for _, section := range targetSections {
		targets[section] = struct{}{}
	}

	ranked := make([]core.AnalyzedArticle, len(articles))
	copy(ranked, articles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return CompositeScore(ranked[i]) > CompositeScore(ranked[j])
	})

	fallback := targetSections[0]
	for _, article := range ranked {
		section := article.AssignedSection
		if _, ok := targets[section]; !ok {
			logger.Debug("section not in targets, using fallback",
				"assigned", section, "fallback", fallback, "title", article.Article.Title)
			section = fallback
		}
		result[section] = append(result[section], article)
	}

	return result
}

// Cap truncates each section's article list to MaxPerSection, keeping the
// top-ranked entries.
func Cap(distributed map[string][]core.AnalyzedArticle) map[string][]core.AnalyzedArticle {
	capped := make(map[string][]core.AnalyzedArticle, len(distributed))
	for section, articles := range distributed {
		if len(articles) > MaxPerSection {
			articles = articles[:MaxPerSection]
		}
		capped[section] = articles
	}
	return capped
}

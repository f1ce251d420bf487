package analysis

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

// DefaultBatchSize is how many articles are analyzed per batch. Batches run
// sequentially; articles within a batch are analyzed concurrently.
const DefaultBatchSize = 5

// degradedResultCount is how many top articles are returned when nothing
// passes the relevance threshold.
const degradedResultCount = 3

// Result holds the per-article output of the external analysis capability.
type Result struct {
	RelevanceScore float64 `json:"relevance_score"`
	Sentiment      string  `json:"sentiment"`
	ImpactScore    int     `json:"impact_score"`
	UrgencyScore   int     `json:"urgency_score"`
	BestSection    string  `json:"best_section"`
}

// Capability is the external text-analysis collaborator. Implementations may
// fail per call; the engine substitutes defaults and keeps going.
type Capability interface {
	AnalyzeArticle(ctx context.Context, article core.Article, prefs core.UserPreferences, sections []string) (Result, error)
}

// DefaultResult is the fail-closed substitute used when the capability errors.
func DefaultResult(sections []string) Result {
	section := "General"
	if len(sections) > 0 {
		section = sections[0]
	}
	return Result{
		RelevanceScore: 0.5,
		Sentiment:      core.SentimentNeutral,
		ImpactScore:    5,
		UrgencyScore:   5,
		BestSection:    section,
	}
}

// Engine scores articles for relevance and personalization.
type Engine struct {
	capability Capability
	batchSize  int
	now        func() time.Time
}

// NewEngine creates an analysis engine backed by the given capability.
func NewEngine(capability Capability) *Engine {
	return &Engine{
		capability: capability,
		batchSize:  DefaultBatchSize,
		now:        time.Now,
	}
}

// Analyze scores every article and returns those meeting the user's relevance
// threshold. If nothing passes the threshold but articles were analyzed, the
// top ranked articles are returned anyway so the pipeline never dead-ends on
// an empty result.
func (e *Engine) Analyze(ctx context.Context, articles []core.Article, prefs core.UserPreferences, sections []string) []core.AnalyzedArticle {
	if len(articles) == 0 {
		return nil
	}

	analyzed := make([]core.AnalyzedArticle, 0, len(articles))
	for start := 0; start < len(articles); start += e.batchSize {
		end := start + e.batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := e.analyzeBatch(ctx, articles[start:end], prefs, sections)
		analyzed = append(analyzed, batch...)
	}

	relevant := make([]core.AnalyzedArticle, 0, len(analyzed))
	for _, article := range analyzed {
		if article.RelevanceScore >= prefs.RelevanceThreshold {
			relevant = append(relevant, article)
		}
	}

	if len(relevant) == 0 && len(analyzed) > 0 {
		logger.Warn("no articles passed relevance threshold, degrading to top results",
			"threshold", prefs.RelevanceThreshold, "analyzed", len(analyzed))
		return topByRelevance(analyzed, degradedResultCount)
	}

	logger.Info("analysis complete", "analyzed", len(analyzed), "relevant", len(relevant))
	return relevant
}

// analyzeBatch analyzes one batch with concurrent capability calls. The slots
// slice keeps input order; capability failures fall back to defaults.
func (e *Engine) analyzeBatch(ctx context.Context, batch []core.Article, prefs core.UserPreferences, sections []string) []core.AnalyzedArticle {
	slots := make([]core.AnalyzedArticle, len(batch))

	var wg sync.WaitGroup
	for i, article := range batch {
		wg.Add(1)
		go func(i int, article core.Article) {
			defer wg.Done()

			result, err := e.capability.AnalyzeArticle(ctx, article, prefs, sections)
			if err != nil {
				logger.Warn("article analysis failed, using defaults", "title", article.Title, "error", err.Error())
				result = DefaultResult(sections)
			}

			slots[i] = core.AnalyzedArticle{
				Article:              article,
				RelevanceScore:       result.RelevanceScore,
				Sentiment:            result.Sentiment,
				ImpactScore:          result.ImpactScore,
				UrgencyScore:         result.UrgencyScore,
				AssignedSection:      result.BestSection,
				PersonalizationScore: PersonalizationScore(article, prefs),
				ProcessedAt:          e.now().UTC(),
			}
		}(i, article)
	}
	wg.Wait()

	return slots
}

// PersonalizationScore blends keyword, source, and industry affinity into a
// score clamped to [0,1]: 0.4*keywords + 0.3*source + 0.3*industry.
func PersonalizationScore(article core.Article, prefs core.UserPreferences) float64 {
	haystack := strings.ToLower(article.Title + " " + article.Summary)

	keywordScore := termMatchScore(haystack, prefs.Keywords)

	sourceScore := 0.5
	if contains(prefs.PreferredSources, article.Source) {
		sourceScore = 1.0
	}
	// Exclusion overrides preference
	if contains(prefs.ExcludedSources, article.Source) {
		sourceScore = 0.0
	}

	industryScore := termMatchScore(haystack, prefs.IndustryFocus)

	score := keywordScore*0.4 + sourceScore*0.3 + industryScore*0.3
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// termMatchScore is the fraction of terms found as case-insensitive substrings
// of the text, capped at 1.0. An empty term list scores a neutral 0.5.
func termMatchScore(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0.5
	}
	matches := 0
	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			matches++
		}
	}
	score := float64(matches) / float64(len(terms))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// topByRelevance returns up to n articles ordered by relevance descending,
// preserving input order on ties.
func topByRelevance(articles []core.AnalyzedArticle, n int) []core.AnalyzedArticle {
	sorted := make([]core.AnalyzedArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

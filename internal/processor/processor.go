package processor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

const minQualityScore = 0.5

// reputableDomains get the higher source-reliability weight during validation.
var reputableDomains = []string{
	"techcrunch.com",
	"wired.com",
	"mit.edu",
	"arxiv.org",
	"openai.com",
	"anthropic.com",
	"ftc.gov",
	"europa.eu",
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// Processor deduplicates and validates collected articles. The seen sets
// persist across calls on the same instance, so one Processor must be scoped
// to a single workflow's collection stage and never shared between workflows.
type Processor struct {
	seenURLs   map[string]struct{}
	seenTitles map[string]struct{}
}

// New creates a Processor with empty dedup state.
func New() *Processor {
	return &Processor{
		seenURLs:   make(map[string]struct{}),
		seenTitles: make(map[string]struct{}),
	}
}

// RemoveDuplicates drops any article whose normalized URL or normalized title
// was already seen. First occurrence wins; input order is preserved among
// survivors.
func (p *Processor) RemoveDuplicates(articles []core.Article) []core.Article {
	unique := make([]core.Article, 0, len(articles))

	for _, article := range articles {
		urlKey := normalizeURL(article.URL)
		titleKey := normalizeTitle(article.Title)

		if _, dup := p.seenURLs[urlKey]; dup {
			continue
		}
		if _, dup := p.seenTitles[titleKey]; dup {
			continue
		}

		p.seenURLs[urlKey] = struct{}{}
		p.seenTitles[titleKey] = struct{}{}
		unique = append(unique, article)
	}

	return unique
}

// ValidateArticles filters articles against the user's excluded sources and a
// minimum quality floor, assigning each survivor its quality score.
func (p *Processor) ValidateArticles(articles []core.Article, prefs core.UserPreferences) []core.Article {
	validated := make([]core.Article, 0, len(articles))

	for _, article := range articles {
		if sourceExcluded(article.Source, prefs.ExcludedSources) {
			logger.Debug("article rejected: excluded source", "source", article.Source, "url", article.URL)
			continue
		}
		if utf8.RuneCountInString(article.Title) < 10 || utf8.RuneCountInString(article.Summary) < 20 {
			logger.Debug("article rejected: below content floor", "title", article.Title)
			continue
		}

		article.QualityScore = qualityScore(article)
		if article.QualityScore < minQualityScore {
			logger.Debug("article rejected: low quality", "url", article.URL, "score", article.QualityScore)
			continue
		}

		validated = append(validated, article)
	}

	return validated
}

// Process runs deduplication followed by validation.
func (p *Processor) Process(articles []core.Article, prefs core.UserPreferences) []core.Article {
	return p.ValidateArticles(p.RemoveDuplicates(articles), prefs)
}

// normalizeURL reduces a URL to a lowercase host+path key, dropping the query
// string and fragment.
func normalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(parsed.Host + parsed.Path)
}

// normalizeTitle lowercases the title, strips punctuation, and collapses
// whitespace.
func normalizeTitle(title string) string {
	stripped := nonWordRe.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(stripped), " ")
}

func sourceExcluded(source string, excluded []string) bool {
	for _, ex := range excluded {
		if source == ex {
			return true
		}
	}
	return false
}

// qualityScore computes the basic quality score: title and summary length
// contribute 0.3 each, source reliability 0.4 or a 0.2 baseline.
func qualityScore(article core.Article) float64 {
	score := 0.0

	if utf8.RuneCountInString(article.Title) > 20 {
		score += 0.3
	}
	if utf8.RuneCountInString(article.Summary) > 50 {
		score += 0.3
	}

	source := strings.ToLower(article.Source)
	reputable := false
	for _, domain := range reputableDomains {
		if strings.Contains(source, domain) {
			reputable = true
			break
		}
	}
	if reputable {
		score += 0.4
	} else {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

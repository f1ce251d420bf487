package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

const perplexityBaseURL = "https://api.perplexity.ai/chat/completions"

var urlPattern = regexp.MustCompile(`https?://[^\s)"\]]+`)

// PerplexityProvider implements Provider using the Perplexity chat
// completions API. The model is asked to return a JSON list of articles;
// when the response is not valid JSON the provider falls back to extracting
// bare URLs from the text.
type PerplexityProvider struct {
	apiKey    string
	model     string
	baseURL   string
	client    *http.Client
	rateLimit time.Duration
	now       func() time.Time

	mu       sync.Mutex
	nextCall time.Time
}

// NewPerplexityProvider creates a new Perplexity search provider
func NewPerplexityProvider(apiKey, model string) *PerplexityProvider {
	if model == "" {
		model = "sonar-pro"
	}
	return &PerplexityProvider{
		apiKey:    apiKey,
		model:     model,
		baseURL:   perplexityBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		rateLimit: 200 * time.Millisecond,
		now:       time.Now,
	}
}

// GetName returns the name of this provider
func (p *PerplexityProvider) GetName() string {
	return "Perplexity"
}

// waitForRateLimit reserves the next request slot and blocks until it
// arrives or the context is cancelled. Concurrent callers queue one
// rateLimit window apart.
func (p *PerplexityProvider) waitForRateLimit(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	wait := time.Until(p.nextCall)
	if wait < 0 {
		wait = 0
	}
	p.nextCall = now.Add(wait + p.rateLimit)
	p.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Search asks Perplexity for recent articles on a topic
func (p *PerplexityProvider) Search(ctx context.Context, topic string, config core.NewsletterConfig, prefs core.UserPreferences) ([]core.Article, error) {
	if err := p.waitForRateLimit(ctx); err != nil {
		return nil, err
	}

	prompt := buildSearchPrompt(topic, config, prefs)

	body, err := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a research assistant. Return only valid JSON."},
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode Perplexity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create Perplexity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Perplexity request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("perplexity request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Perplexity response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return nil, ErrNoResults
	}

	articles := p.parseArticles(apiResponse.Choices[0].Message.Content, topic)
	logger.Info("Perplexity search completed", "topic", topic, "articles_found", len(articles))

	return articles, nil
}

// parseArticles decodes the model's JSON list. Malformed entries are skipped
// rather than failing the whole response.
func (p *PerplexityProvider) parseArticles(content string, topic string) []core.Article {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var items []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		Summary     string `json:"summary"`
		PublishedAt string `json:"published_at"`
	}
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return p.extractURLFallback(content, topic)
	}

	fetched := p.now().UTC()
	var articles []core.Article
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		source := item.Source
		if source == "" {
			source = "Unknown"
		}
		article := core.Article{
			Title:     item.Title,
			URL:       item.URL,
			Source:    source,
			Summary:   item.Summary,
			Topic:     topic,
			FetchedAt: fetched,
		}
		if t, err := time.Parse("2006-01-02", item.PublishedAt); err == nil {
			article.PublishedAt = t
		}
		articles = append(articles, article)
	}
	return articles
}

// extractURLFallback pulls bare URLs out of a non-JSON response so a
// partially usable answer still yields candidates.
func (p *PerplexityProvider) extractURLFallback(content string, topic string) []core.Article {
	urls := urlPattern.FindAllString(content, 10)
	fetched := p.now().UTC()
	var articles []core.Article
	for _, u := range urls {
		articles = append(articles, core.Article{
			Title:     fmt.Sprintf("Article about %s", topic),
			URL:       u,
			Source:    "Unknown",
			Summary:   "Summary not available",
			Topic:     topic,
			FetchedAt: fetched,
		})
	}
	return articles
}

// buildSearchPrompt assembles the research prompt with the config's date
// window and the user's preferred sources.
func buildSearchPrompt(topic string, config core.NewsletterConfig, prefs core.UserPreferences) string {
	var b strings.Builder

	dateClause := ""
	if !config.DateRange.IsZero() {
		dateClause = fmt.Sprintf(" published between %s and %s",
			config.DateRange.Start.Format("2006-01-02"), config.DateRange.End.Format("2006-01-02"))
	}

	timeContext := ""
	switch config.Format {
	case core.FormatDaily:
		timeContext = " from today or yesterday"
	case core.FormatWeekly:
		timeContext = " from the past 7 days"
	case core.FormatMonthly:
		timeContext = " from the past 30 days"
	}

	fmt.Fprintf(&b, "Find 10 recent news articles about: %s%s%s\n\n", topic, dateClause, timeContext)
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("- Articles must be from the specified date range\n")
	b.WriteString("- Focus on: AI governance, responsible AI, AI ethics, AI regulations, compliance\n")
	b.WriteString("- Only include articles with publication dates\n")
	if len(prefs.PreferredSources) > 0 {
		sources := prefs.PreferredSources
		if len(sources) > 5 {
			sources = sources[:5]
		}
		fmt.Fprintf(&b, "- Prioritize sources: %s\n", strings.Join(sources, ", "))
	}
	b.WriteString("\nReturn ONLY a JSON list with this exact format:\n")
	b.WriteString(`[{"title": "Article Title", "url": "https://example.com/article", "source": "Source Name", "summary": "Brief summary", "published_at": "YYYY-MM-DD"}]`)
	b.WriteString("\n\nIMPORTANT: Only include articles that are genuinely recent and match the date requirements.")

	return b.String()
}

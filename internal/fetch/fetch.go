package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"govbrief/internal/core"
	"govbrief/internal/logger"
)

const maxBodyBytes = 2 << 20 // 2 MiB cap per page

var blankLineRegex = regexp.MustCompile(`(\n\s*){2,}`)

// Enricher fills Article.Content with the main text of the article page.
// Enrichment is best effort: a page that cannot be fetched or parsed leaves
// the article unchanged.
type Enricher struct {
	client      *http.Client
	maxArticles int
}

// NewEnricher creates an enricher that fetches at most maxArticles pages per
// call.
func NewEnricher(maxArticles int) *Enricher {
	if maxArticles <= 0 {
		maxArticles = 5
	}
	return &Enricher{
		client:      &http.Client{Timeout: 15 * time.Second},
		maxArticles: maxArticles,
	}
}

// EnrichArticles fetches page content for the first articles that lack it.
// Failures are logged and skipped.
func (e *Enricher) EnrichArticles(ctx context.Context, articles []core.Article) []core.Article {
	fetched := 0
	for i := range articles {
		if fetched >= e.maxArticles {
			break
		}
		if articles[i].Content != "" || articles[i].URL == "" {
			continue
		}
		content, err := e.fetchContent(ctx, articles[i].URL)
		if err != nil {
			logger.Warn("Failed to enrich article", "url", articles[i].URL, "error", err)
			continue
		}
		articles[i].Content = content
		fetched++
	}
	return articles
}

func (e *Enricher) fetchContent(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", "govbrief/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status code %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", pageURL, err)
	}

	return ExtractText(string(body))
}

// ExtractText pulls the main textual content out of an HTML page, dropping
// navigation and other boilerplate.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	var textBuilder strings.Builder
	mainContentSelectors := []string{
		"article", "main", ".main-content", ".entry-content", ".post-content", ".post-body", ".article-body",
		"[role='main']",
		".content", "#content",
	}

	for _, selector := range mainContentSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
				textBuilder.WriteString(strings.TrimSpace(item.Text()))
				textBuilder.WriteString("\n\n")
			})
		})
		if textBuilder.Len() > 0 {
			break
		}
	}

	if textBuilder.Len() == 0 {
		doc.Find("body").Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			textBuilder.WriteString(strings.TrimSpace(item.Text()))
			textBuilder.WriteString("\n\n")
		})
	}

	cleaned := blankLineRegex.ReplaceAllString(textBuilder.String(), "\n")
	return strings.TrimSpace(cleaned), nil
}

// ExtractTitle tries common title locations in an HTML page.
func ExtractTitle(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

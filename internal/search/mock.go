package search

import (
	"context"
	"fmt"
	"time"

	"govbrief/internal/core"
)

// MockProvider implements Provider without network access. It fabricates a
// small fixed set of articles dated inside the requested window, so the rest
// of the pipeline can run in tests and in offline mode when no API key is
// configured.
type MockProvider struct {
	name string
	now  func() time.Time
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{name: "Mock", now: time.Now}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns three synthetic articles spread across the config's
// lookback window, newest first.
func (m *MockProvider) Search(ctx context.Context, topic string, config core.NewsletterConfig, prefs core.UserPreferences) ([]core.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := m.now().UTC()
	lookback := config.Format.LookbackDays()
	step := lookback / 3
	if step < 1 {
		step = 1
	}

	short := topic
	if len(short) > 40 {
		short = short[:40]
	}

	articles := make([]core.Article, 0, 3)
	for i := 0; i < 3; i++ {
		published := end.AddDate(0, 0, -i*step)
		articles = append(articles, core.Article{
			Title:        fmt.Sprintf("Latest %s Development - %s", short, published.Format("January 02")),
			URL:          fmt.Sprintf("https://techcrunch.com/mock-article-%s-%d", slugify(topic), i+1),
			Source:       "TechCrunch",
			Summary:      fmt.Sprintf("Breaking news on %s published %s. This article covers recent developments and industry impact.", topic, published.Format("January 02, 2006")),
			Topic:        topic,
			PublishedAt:  published,
			FetchedAt:    end,
			QualityScore: 0.8,
		})
	}

	return articles, nil
}

// slugify keeps mock URLs distinct per topic without worrying about
// characters a URL path cannot carry.
func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}

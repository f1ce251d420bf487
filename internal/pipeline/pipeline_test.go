package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"govbrief/internal/analysis"
	"govbrief/internal/core"
)

// stubProvider returns canned articles for every topic, or an error.
type stubProvider struct {
	mu       sync.Mutex
	articles []core.Article
	err      error
	calls    int
}

func (s *stubProvider) Search(ctx context.Context, topic string, config core.NewsletterConfig, prefs core.UserPreferences) ([]core.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.Article, len(s.articles))
	copy(out, s.articles)
	for i := range out {
		out[i].Topic = topic
	}
	return out, nil
}

func (s *stubProvider) GetName() string { return "stub" }

// stubCapability scores everything identically.
type stubCapability struct {
	result analysis.Result
	err    error
}

func (s *stubCapability) AnalyzeArticle(ctx context.Context, article core.Article, prefs core.UserPreferences, sections []string) (analysis.Result, error) {
	if s.err != nil {
		return analysis.Result{}, s.err
	}
	return s.result, nil
}

// stubGenerator renders a trivial section body.
type stubGenerator struct{}

func (s *stubGenerator) GenerateSection(ctx context.Context, sectionName string, articles []core.AnalyzedArticle, config core.NewsletterConfig) (string, error) {
	return fmt.Sprintf("%s body with %d articles", sectionName, len(articles)), nil
}

func testPrefs() core.UserPreferences {
	prefs := core.DefaultPreferences("user-1")
	prefs.Keywords = []string{"healthcare"}
	return prefs
}

func goodArticle(n int) core.Article {
	return core.Article{
		Title:   fmt.Sprintf("Regulators Publish New AI Framework Volume %d", n),
		URL:     fmt.Sprintf("https://ftc.gov/framework-%d", n),
		Source:  "FTC",
		Summary: "A detailed look at the newly published framework and its requirements for industry.",
	}
}

func TestGenerateTopics(t *testing.T) {
	prefs := core.UserPreferences{
		Keywords:      []string{"healthcare"},
		IndustryFocus: []string{"finance"},
	}
	config := core.DefaultConfig()
	config.Format = core.FormatWeekly

	topics := GenerateTopics(prefs, config)

	wantContains := []string{
		"healthcare AI regulations",
		"healthcare responsible AI",
		"AI applications in finance",
		"finance AI compliance",
		"AI governance regulations",
	}
	joined := strings.Join(topics, "\n")
	for _, want := range wantContains {
		if !strings.Contains(joined, want) {
			t.Errorf("topics missing %q", want)
		}
	}
	for _, topic := range topics {
		if !strings.HasSuffix(topic, "weekly news") && !strings.HasSuffix(topic, "weekly updates") {
			t.Errorf("topic %q missing time context", topic)
		}
	}

	seen := make(map[string]bool)
	for _, topic := range topics {
		if seen[topic] {
			t.Errorf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
}

func TestGenerateTopicsDeterministic(t *testing.T) {
	prefs := testPrefs()
	config := core.DefaultConfig()
	a := GenerateTopics(prefs, config)
	b := GenerateTopics(prefs, config)
	if len(a) != len(b) {
		t.Fatalf("topic counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("topic %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestGenerateNewsletterEndToEnd(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1), goodArticle(2)}}
	capability := &stubCapability{result: analysis.Result{
		RelevanceScore: 0.9,
		Sentiment:      core.SentimentPositive,
		ImpactScore:    7,
		UrgencyScore:   6,
		BestSection:    "Executive Highlights",
	}}

	orch := New(provider, capability, &stubGenerator{})
	newsletter, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateNewsletter() error = %v", err)
	}

	if newsletter.ID == "" {
		t.Error("newsletter should have an ID")
	}
	if newsletter.TotalArticles == 0 {
		t.Error("expected articles in the newsletter")
	}
	if len(newsletter.Sections) == 0 {
		t.Error("expected populated sections")
	}
	if _, ok := newsletter.Sections["Executive Highlights"]; !ok {
		t.Error("articles assigned to Executive Highlights should land there")
	}
	if newsletter.Content == "" {
		t.Error("newsletter content should not be empty")
	}
	if provider.calls == 0 {
		t.Error("provider was never called")
	}
}

// The same URL returned for every topic must appear once in the result.
func TestGenerateNewsletterDeduplicatesAcrossTopics(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1)}}
	capability := &stubCapability{result: analysis.Result{
		RelevanceScore: 0.9,
		Sentiment:      core.SentimentNeutral,
		ImpactScore:    5,
		UrgencyScore:   5,
		BestSection:    "Executive Highlights",
	}}

	orch := New(provider, capability, &stubGenerator{})
	newsletter, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateNewsletter() error = %v", err)
	}

	if newsletter.TotalArticles != 1 {
		t.Errorf("TotalArticles = %d, want 1 after cross-topic dedup", newsletter.TotalArticles)
	}
}

// An empty collection is not a failure: the workflow completes and yields a
// placeholder newsletter.
func TestGenerateNewsletterEmptyCollection(t *testing.T) {
	provider := &stubProvider{}
	capability := &stubCapability{result: analysis.Result{}}

	orch := New(provider, capability, &stubGenerator{})
	newsletter, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("empty collection should not fail the workflow, got %v", err)
	}

	if newsletter.TotalArticles != 0 {
		t.Errorf("TotalArticles = %d, want 0", newsletter.TotalArticles)
	}
	if len(newsletter.Sections) != 0 {
		t.Errorf("sections should be empty, got %d", len(newsletter.Sections))
	}
	if newsletter.Content == "" {
		t.Error("placeholder newsletter should still carry content")
	}

	workflows := orch.ListWorkflows()
	if len(workflows) != 1 {
		t.Fatalf("expected 1 recorded workflow, got %d", len(workflows))
	}
	if workflows[0].Status != core.StatusCompleted {
		t.Errorf("workflow status = %s, want completed", workflows[0].Status)
	}
}

// A failing search call falls back to the deterministic article set, so the
// newsletter is still populated and the workflow completes.
func TestGenerateNewsletterSearchFallback(t *testing.T) {
	provider := &stubProvider{err: errors.New("search backend down")}
	capability := &stubCapability{result: analysis.Result{
		RelevanceScore: 0.9,
		Sentiment:      core.SentimentNeutral,
		ImpactScore:    5,
		UrgencyScore:   5,
		BestSection:    "Executive Highlights",
	}}

	orch := New(provider, capability, &stubGenerator{})
	newsletter, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateNewsletter() error = %v", err)
	}

	if newsletter.TotalArticles == 0 {
		t.Error("fallback articles should populate the newsletter")
	}
	if provider.calls == 0 {
		t.Error("primary provider was never tried")
	}

	workflows := orch.ListWorkflows()
	if len(workflows) != 1 {
		t.Fatalf("expected 1 recorded workflow, got %d", len(workflows))
	}
	if workflows[0].Status != core.StatusCompleted {
		t.Errorf("workflow status = %s, want completed", workflows[0].Status)
	}
}

// Finished workflow snapshots are retained for status queries but capped,
// dropping the oldest once the cap is exceeded.
func TestFinishedWorkflowEviction(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1)}}
	capability := &stubCapability{result: analysis.Result{RelevanceScore: 0.9, BestSection: "Executive Highlights"}}

	orch := New(provider, capability, &stubGenerator{})
	tick := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	orch.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	var firstID string
	for i := 0; i < maxFinishedWorkflows+5; i++ {
		if _, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig()); err != nil {
			t.Fatalf("run %d error = %v", i, err)
		}
		if i == 0 {
			workflows := orch.ListWorkflows()
			if len(workflows) != 1 {
				t.Fatalf("expected 1 workflow after first run, got %d", len(workflows))
			}
			firstID = workflows[0].WorkflowID
		}
	}

	if got := len(orch.ListWorkflows()); got != maxFinishedWorkflows {
		t.Errorf("retained workflows = %d, want %d", got, maxFinishedWorkflows)
	}
	if _, ok := orch.GetWorkflowStatus(firstID); ok {
		t.Error("oldest finished workflow should have been evicted")
	}
}

// Capability failures substitute neutral defaults rather than dropping
// articles, so the newsletter still carries everything collected.
func TestGenerateNewsletterAnalysisDegraded(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1)}}
	capability := &stubCapability{err: errors.New("model unavailable")}

	prefs := testPrefs()
	prefs.RelevanceThreshold = 0.7

	orch := New(provider, capability, &stubGenerator{})
	newsletter, err := orch.GenerateNewsletter(context.Background(), prefs, core.DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateNewsletter() error = %v", err)
	}
	if newsletter.TotalArticles != 1 {
		t.Errorf("TotalArticles = %d, want 1 degraded article", newsletter.TotalArticles)
	}
}

func TestGenerateNewsletterCancelledContext(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1)}}
	capability := &stubCapability{result: analysis.Result{RelevanceScore: 0.9, BestSection: "Executive Highlights"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(provider, capability, &stubGenerator{})
	_, err := orch.GenerateNewsletter(ctx, testPrefs(), core.DefaultConfig())
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}

	workflows := orch.ListWorkflows()
	if len(workflows) != 1 {
		t.Fatalf("expected 1 recorded workflow, got %d", len(workflows))
	}
	if workflows[0].Status != core.StatusFailed {
		t.Errorf("workflow status = %s, want failed", workflows[0].Status)
	}
	if workflows[0].Error == "" {
		t.Error("failed workflow should record its error")
	}
}

func TestGetWorkflowStatus(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1)}}
	capability := &stubCapability{result: analysis.Result{RelevanceScore: 0.9, BestSection: "Executive Highlights"}}

	orch := New(provider, capability, &stubGenerator{})
	if _, err := orch.GenerateNewsletter(context.Background(), testPrefs(), core.DefaultConfig()); err != nil {
		t.Fatalf("GenerateNewsletter() error = %v", err)
	}

	workflows := orch.ListWorkflows()
	if len(workflows) != 1 {
		t.Fatalf("expected 1 workflow, got %d", len(workflows))
	}

	state, ok := orch.GetWorkflowStatus(workflows[0].WorkflowID)
	if !ok {
		t.Fatal("workflow not found by ID")
	}
	if state.Status != core.StatusCompleted {
		t.Errorf("status = %s, want completed", state.Status)
	}
	if state.CollectedCount == 0 || state.AnalyzedCount == 0 {
		t.Errorf("counts not recorded: collected=%d analyzed=%d", state.CollectedCount, state.AnalyzedCount)
	}

	if _, ok := orch.GetWorkflowStatus("missing"); ok {
		t.Error("unknown workflow ID should not be found")
	}
}

func TestConcurrentWorkflows(t *testing.T) {
	provider := &stubProvider{articles: []core.Article{goodArticle(1), goodArticle(2)}}
	capability := &stubCapability{result: analysis.Result{RelevanceScore: 0.9, BestSection: "Executive Highlights"}}

	orch := New(provider, capability, &stubGenerator{})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prefs := core.DefaultPreferences(fmt.Sprintf("user-%d", i))
			_, errs[i] = orch.GenerateNewsletter(context.Background(), prefs, core.DefaultConfig())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("workflow %d failed: %v", i, err)
		}
	}
	if got := len(orch.ListWorkflows()); got != 4 {
		t.Errorf("expected 4 recorded workflows, got %d", got)
	}
}

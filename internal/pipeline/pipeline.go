package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"govbrief/internal/analysis"
	"govbrief/internal/assembly"
	"govbrief/internal/core"
	"govbrief/internal/fetch"
	"govbrief/internal/logger"
	"govbrief/internal/processor"
	"govbrief/internal/search"
)

// Orchestrator runs the full generation workflow: topic search, dedup and
// validation, analysis, and newsletter assembly. It is safe for concurrent
// use; every call to GenerateNewsletter gets its own workflow state and its
// own duplicate-tracking processor.
type Orchestrator struct {
	provider  search.Provider
	fallback  search.Provider
	engine    *analysis.Engine
	assembler *assembly.Assembler
	enricher  *fetch.Enricher

	mu        sync.Mutex
	workflows map[string]*core.WorkflowState

	now func() time.Time
}

// maxFinishedWorkflows caps how many completed or failed workflow snapshots
// the registry retains for status queries. Oldest are evicted first.
const maxFinishedWorkflows = 50

// New creates an orchestrator from the three capabilities a run needs.
func New(provider search.Provider, capability analysis.Capability, generator assembly.Generator) *Orchestrator {
	return &Orchestrator{
		provider:  provider,
		fallback:  search.NewMockProvider(),
		engine:    analysis.NewEngine(capability),
		assembler: assembly.New(generator),
		workflows: make(map[string]*core.WorkflowState),
		now:       time.Now,
	}
}

// SetEnricher enables optional full-text enrichment of collected articles.
func (o *Orchestrator) SetEnricher(e *fetch.Enricher) {
	o.enricher = e
}

// GenerateNewsletter runs one workflow end to end. An empty collection result
// is not a failure; the workflow proceeds and yields a placeholder
// newsletter. A genuine failure marks the workflow failed, records the error,
// and returns it.
func (o *Orchestrator) GenerateNewsletter(ctx context.Context, prefs core.UserPreferences, config core.NewsletterConfig) (core.Newsletter, error) {
	config.ResolveDateRange(o.now().UTC())
	if len(config.Sections) == 0 {
		config.Sections = core.DefaultSections()
	}

	state := &core.WorkflowState{
		WorkflowID:  fmt.Sprintf("workflow_%s_%s", prefs.UserID, uuid.NewString()),
		UserID:      prefs.UserID,
		Preferences: prefs,
		Config:      config,
		Status:      core.StatusInitialized,
		CreatedAt:   o.now().UTC(),
	}
	o.register(state)

	logger.Info("starting newsletter workflow", "workflow_id", state.WorkflowID, "user_id", prefs.UserID)

	o.setStatus(state, core.StatusCollecting)
	articles, err := o.collect(ctx, prefs, config)
	if err != nil {
		return core.Newsletter{}, o.fail(state, fmt.Errorf("content collection failed: %w", err))
	}
	o.recordCollected(state, articles)
	if len(articles) == 0 {
		logger.Warn("no articles collected, continuing with empty newsletter", "workflow_id", state.WorkflowID)
	}

	o.setStatus(state, core.StatusAnalyzing)
	if err := ctx.Err(); err != nil {
		return core.Newsletter{}, o.fail(state, err)
	}
	analyzed := o.engine.Analyze(ctx, articles, prefs, config.Sections)
	o.recordAnalyzed(state, analyzed)

	o.setStatus(state, core.StatusGenerating)
	if err := ctx.Err(); err != nil {
		return core.Newsletter{}, o.fail(state, err)
	}
	newsletter := o.assembler.Assemble(ctx, analyzed, prefs, config)

	o.setStatus(state, core.StatusCompleted)
	logger.Info("newsletter workflow completed", "workflow_id", state.WorkflowID,
		"total_articles", newsletter.TotalArticles, "sections", len(newsletter.Sections))

	return newsletter, nil
}

// collect fans out one search per topic. A failing topic falls back to the
// deterministic mock article set for that topic; only context cancellation
// aborts collection. Results are merged in topic order, then deduplicated,
// validated, optionally enriched, and capped.
func (o *Orchestrator) collect(ctx context.Context, prefs core.UserPreferences, config core.NewsletterConfig) ([]core.Article, error) {
	topics := GenerateTopics(prefs, config)
	logger.Info("generated search topics", "count", len(topics))

	results := make([][]core.Article, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			articles, err := o.provider.Search(ctx, topic, config, prefs)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("topic search failed, using fallback articles", "topic", topic, "error", err)
				articles, err = o.fallback.Search(ctx, topic, config, prefs)
				if err != nil {
					logger.Error("fallback search failed", "topic", topic, "error", err)
					return
				}
			}
			results[i] = articles
		}(i, topic)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []core.Article
	for _, r := range results {
		all = append(all, r...)
	}

	proc := processor.New()
	validated := proc.Process(all, prefs)

	if o.enricher != nil {
		validated = o.enricher.EnrichArticles(ctx, validated)
	}

	if config.MaxArticles > 0 && len(validated) > config.MaxArticles {
		validated = validated[:config.MaxArticles]
	}

	logger.Info("content collection complete", "raw", len(all), "validated", len(validated))
	return validated, nil
}

// GetWorkflowStatus returns a snapshot of a workflow's state by ID.
func (o *Orchestrator) GetWorkflowStatus(workflowID string) (core.WorkflowState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.workflows[workflowID]
	if !ok {
		return core.WorkflowState{}, false
	}
	return *state, true
}

// ListWorkflows returns snapshots of all known workflows.
func (o *Orchestrator) ListWorkflows() []core.WorkflowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]core.WorkflowState, 0, len(o.workflows))
	for _, state := range o.workflows {
		out = append(out, *state)
	}
	return out
}

func (o *Orchestrator) register(state *core.WorkflowState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workflows[state.WorkflowID] = state
}

func (o *Orchestrator) setStatus(state *core.WorkflowState, status core.WorkflowStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state.Status = status
	if status == core.StatusCompleted {
		o.evictFinishedLocked()
	}
}

// evictFinishedLocked drops the oldest finished workflow snapshots once the
// retained count exceeds maxFinishedWorkflows. Caller holds mu.
func (o *Orchestrator) evictFinishedLocked() {
	var finished []*core.WorkflowState
	for _, s := range o.workflows {
		if s.Status == core.StatusCompleted || s.Status == core.StatusFailed {
			finished = append(finished, s)
		}
	}
	if len(finished) <= maxFinishedWorkflows {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].CreatedAt.Before(finished[j].CreatedAt)
	})
	for _, s := range finished[:len(finished)-maxFinishedWorkflows] {
		delete(o.workflows, s.WorkflowID)
	}
}

func (o *Orchestrator) recordCollected(state *core.WorkflowState, articles []core.Article) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state.Collected = articles
	state.CollectedCount = len(articles)
}

func (o *Orchestrator) recordAnalyzed(state *core.WorkflowState, analyzed []core.AnalyzedArticle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state.Analyzed = analyzed
	state.AnalyzedCount = len(analyzed)
}

func (o *Orchestrator) fail(state *core.WorkflowState, err error) error {
	o.mu.Lock()
	state.Status = core.StatusFailed
	state.Error = err.Error()
	o.evictFinishedLocked()
	o.mu.Unlock()
	logger.Error("newsletter workflow failed", "workflow_id", state.WorkflowID, "error", err)
	return err
}

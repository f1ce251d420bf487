package core

import "time"

// NewsletterFormat identifies the cadence of a generated newsletter.
type NewsletterFormat string

const (
	FormatDaily   NewsletterFormat = "daily"
	FormatWeekly  NewsletterFormat = "weekly"
	FormatMonthly NewsletterFormat = "monthly"
	FormatCustom  NewsletterFormat = "custom"
)

// LookbackDays returns how many days back a format reaches when no explicit
// date range is configured.
func (f NewsletterFormat) LookbackDays() int {
	switch f {
	case FormatDaily:
		return 1
	case FormatWeekly:
		return 7
	case FormatMonthly:
		return 30
	default:
		return 7
	}
}

// TemplateVariant selects one of the fixed rendering strategies.
type TemplateVariant string

const (
	TemplateProfessional TemplateVariant = "professional"
	TemplateBrief        TemplateVariant = "brief"
	TemplateDetailed     TemplateVariant = "detailed"
)

// Sentiment labels produced by article analysis.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// WorkflowStatus tracks where a generation workflow is in its lifecycle.
// Transitions are strictly forward: initialized -> collecting -> analyzing ->
// generating -> completed, with failed reachable from any stage.
type WorkflowStatus string

const (
	StatusInitialized WorkflowStatus = "initialized"
	StatusCollecting  WorkflowStatus = "collecting"
	StatusAnalyzing   WorkflowStatus = "analyzing"
	StatusGenerating  WorkflowStatus = "generating"
	StatusCompleted   WorkflowStatus = "completed"
	StatusFailed      WorkflowStatus = "failed"
)

// DateRange bounds the publication window for collected articles.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the range has not been set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// UserPreferences holds per-user personalization inputs. Read-only for the
// pipeline; scoring never mutates it.
type UserPreferences struct {
	UserID             string   `json:"user_id"`
	Keywords           []string `json:"keywords"`
	PreferredSources   []string `json:"preferred_sources"`
	ExcludedSources    []string `json:"excluded_sources"`
	IndustryFocus      []string `json:"industry_focus"`
	ContentTypes       []string `json:"content_types"`
	UrgencyThreshold   int      `json:"urgency_threshold"`   // 1-10
	RelevanceThreshold float64  `json:"relevance_threshold"` // 0.0-1.0
}

// DefaultPreferences returns the preferences used when a user has none stored.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:             userID,
		ContentTypes:       []string{"regulatory", "technical", "market"},
		UrgencyThreshold:   5,
		RelevanceThreshold: 0.7,
	}
}

// NewsletterConfig configures a single newsletter generation run.
type NewsletterConfig struct {
	Format         NewsletterFormat `json:"format"`
	DateRange      DateRange        `json:"date_range"`
	Sections       []string         `json:"sections"`
	MaxArticles    int              `json:"max_articles"`
	Template       TemplateVariant  `json:"template"`
	IncludeLinks   bool             `json:"include_links"`
	IncludeSummary bool             `json:"include_summary"`
}

// DefaultSections lists the standard newsletter sections in render order.
func DefaultSections() []string {
	return []string{
		"Executive Highlights",
		"Technical Breakthroughs",
		"Compliance & Risk Watch",
		"Industry Applications",
		"Forward Intelligence",
	}
}

// DefaultConfig returns the config used when the caller supplies none.
func DefaultConfig() NewsletterConfig {
	return NewsletterConfig{
		Format:         FormatMonthly,
		Sections:       DefaultSections(),
		MaxArticles:    20,
		Template:       TemplateProfessional,
		IncludeLinks:   true,
		IncludeSummary: true,
	}
}

// ResolveDateRange fills in the date range from the format when it was not
// explicitly configured. The end of the window is now.
func (c *NewsletterConfig) ResolveDateRange(now time.Time) {
	if !c.DateRange.IsZero() {
		return
	}
	c.DateRange = DateRange{
		Start: now.AddDate(0, 0, -c.Format.LookbackDays()),
		End:   now,
	}
}

// Article is a single collected news item. Immutable once validated; the
// quality score is assigned exactly once during validation.
type Article struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content,omitempty"`      // optional full text
	PublishedAt  time.Time `json:"published_at,omitempty"` // zero if unknown
	FetchedAt    time.Time `json:"fetched_at"`
	Topic        string    `json:"topic"`         // originating search topic
	QualityScore float64   `json:"quality_score"` // 0.0-1.0, set by validation
}

// AnalyzedArticle wraps an Article with its analysis results. Created once per
// article during analysis and never mutated; re-sectioning happens by building
// a new placement, not by rewriting AssignedSection.
type AnalyzedArticle struct {
	Article              Article   `json:"article"`
	RelevanceScore       float64   `json:"relevance_score"` // 0.0-1.0
	Sentiment            string    `json:"sentiment"`
	ImpactScore          int       `json:"impact_score"`  // 1-10
	UrgencyScore         int       `json:"urgency_score"` // 1-10
	AssignedSection      string    `json:"assigned_section"`
	PersonalizationScore float64   `json:"personalization_score"` // 0.0-1.0
	ProcessedAt          time.Time `json:"processed_at"`
}

// Newsletter is the terminal artifact of a generation workflow.
type Newsletter struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Config        NewsletterConfig  `json:"config"`
	TotalArticles int               `json:"total_articles"`
	Sections      map[string]string `json:"sections"` // section name -> rendered body
	GeneratedAt   time.Time         `json:"generated_at"`
}

// WorkflowState is owned exclusively by the orchestrator for the lifetime of
// one generation request and discarded on completion or failure.
type WorkflowState struct {
	WorkflowID       string            `json:"workflow_id"`
	UserID           string            `json:"user_id"`
	Preferences      UserPreferences   `json:"preferences"`
	Config           NewsletterConfig  `json:"config"`
	Status           WorkflowStatus    `json:"status"`
	CollectedCount   int               `json:"collected_count"`
	AnalyzedCount    int               `json:"analyzed_count"`
	Collected        []Article         `json:"-"`
	Analyzed         []AnalyzedArticle `json:"-"`
	Error            string            `json:"error,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

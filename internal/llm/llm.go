package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"govbrief/internal/analysis"
	"govbrief/internal/core"
)

const (
	// DefaultModel is the default Gemini model for analysis and generation.
	DefaultModel = "gemini-1.5-flash-latest"

	analyzeArticlePromptTemplate = `Analyze this article for relevance to responsible AI, AI ethics, and AI governance:

Title: %s
Summary: %s
Source: %s

Available sections: %s

Return ONLY a JSON object with this exact format:
{
    "relevance_score": 0.8,
    "sentiment": "positive",
    "impact_score": 7,
    "urgency_score": 6,
    "best_section": "Compliance & Risk Watch",
    "explanation": "Brief explanation"
}

- relevance_score: 0.0-1.0 (how relevant to responsible AI/governance)
- sentiment: "positive", "negative", or "neutral"
- impact_score: 1-10 (potential business/industry impact)
- urgency_score: 1-10 (how urgent/time-sensitive)
- best_section: choose the most appropriate section from the list`

	generateSectionPromptTemplate = `Generate content for the "%s" section of an AI governance newsletter.

Articles:
%s

Format: %s
Include links: %t

Create a well-structured section with:
- Brief section introduction
- 2-4 key highlights with proper formatting
- Include clickable links where mentioned
- Keep it professional and concise

Return only the formatted section content (no JSON, just the text).`
)

// Client wraps the Gemini API for article analysis and section writing. It
// satisfies both analysis.Capability and assembly.Generator.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// NewClient creates a new LLM client.
// It supports multiple ways to get the API key (in order of preference):
// 1. Environment variable: GEMINI_API_KEY (or alternatives)
// 2. Viper configuration: ai.gemini.api_key
func NewClient(ctx context.Context, modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	gClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.gClient.Close()
}

// AnalyzeArticle scores a single article against the user's interests and
// picks the best target section. Implements analysis.Capability.
func (c *Client) AnalyzeArticle(ctx context.Context, article core.Article, prefs core.UserPreferences, sections []string) (analysis.Result, error) {
	prompt := fmt.Sprintf(analyzeArticlePromptTemplate,
		article.Title, article.Summary, article.Source, strings.Join(sections, ", "))

	model := c.gClient.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)

	text, err := c.generate(ctx, model, prompt)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("failed to analyze article %q: %w", article.URL, err)
	}

	var parsed struct {
		RelevanceScore float64 `json:"relevance_score"`
		Sentiment      string  `json:"sentiment"`
		ImpactScore    int     `json:"impact_score"`
		UrgencyScore   int     `json:"urgency_score"`
		BestSection    string  `json:"best_section"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return analysis.Result{}, fmt.Errorf("failed to parse analysis for article %q: %w", article.URL, err)
	}

	return analysis.Result{
		RelevanceScore: parsed.RelevanceScore,
		Sentiment:      parsed.Sentiment,
		ImpactScore:    parsed.ImpactScore,
		UrgencyScore:   parsed.UrgencyScore,
		BestSection:    parsed.BestSection,
	}, nil
}

// GenerateSection writes the prose body for one newsletter section from its
// assigned articles. Implements assembly.Generator.
func (c *Client) GenerateSection(ctx context.Context, sectionName string, articles []core.AnalyzedArticle, config core.NewsletterConfig) (string, error) {
	if len(articles) > 5 {
		articles = articles[:5]
	}

	var sb strings.Builder
	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Title: %s\nSource: %s\nURL: %s\nSummary: %s\nRelevance: %.2f\nImpact: %d/10",
			a.Article.Title, a.Article.Source, a.Article.URL, a.Article.Summary,
			a.RelevanceScore, a.ImpactScore)
	}

	prompt := fmt.Sprintf(generateSectionPromptTemplate,
		sectionName, sb.String(), config.Template, config.IncludeLinks)

	model := c.gClient.GenerativeModel(c.modelName)
	model.SetTemperature(0.3)

	text, err := c.generate(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate section %q: %w", sectionName, err)
	}

	return strings.TrimSpace(text), nil
}

// generate runs one prompt and concatenates the text parts of the first
// candidate.
func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return sb.String(), nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

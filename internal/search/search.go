package search

import (
	"context"

	"govbrief/internal/core"
)

// Provider defines the interface for article search providers. A provider
// takes a single topic and returns candidate articles scoped to the
// newsletter's date window.
type Provider interface {
	// Search finds articles for a topic within the config's date range.
	Search(ctx context.Context, topic string, config core.NewsletterConfig, prefs core.UserPreferences) ([]core.Article, error)

	// GetName returns the name of the search provider
	GetName() string
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypePerplexity ProviderType = "perplexity"
	ProviderTypeMock       ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypePerplexity:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		model := config["model"]
		return NewPerplexityProvider(apiKey, model), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypePerplexity,
		ProviderTypeMock,
	}
}

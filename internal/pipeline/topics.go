package pipeline

import (
	"fmt"

	"govbrief/internal/core"
)

// baseTopics are always searched regardless of user preferences.
var baseTopics = []string{
	"AI governance regulations",
	"responsible AI developments",
	"AI compliance updates",
	"AI ethics guidelines",
	"AI policy updates",
}

// GenerateTopics builds the personalized search topic list for one run.
// Keyword and industry topics come first, then the base topics, each suffixed
// with the newsletter's time context. Duplicates are removed preserving first
// occurrence.
func GenerateTopics(prefs core.UserPreferences, config core.NewsletterConfig) []string {
	var topics []string

	for _, keyword := range prefs.Keywords {
		topics = append(topics,
			fmt.Sprintf("%s AI regulations", keyword),
			fmt.Sprintf("%s responsible AI", keyword),
			fmt.Sprintf("%s AI governance", keyword),
		)
	}

	for _, industry := range prefs.IndustryFocus {
		topics = append(topics,
			fmt.Sprintf("AI applications in %s", industry),
			fmt.Sprintf("%s AI compliance", industry),
		)
	}

	topics = append(topics, baseTopics...)

	dateContext := fmt.Sprintf(" recent %s news", config.Format)
	if !config.DateRange.IsZero() {
		dateContext = fmt.Sprintf(" %s updates", config.Format)
	}

	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic += dateContext
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}

	return out
}

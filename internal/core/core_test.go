package core

import (
	"testing"
	"time"
)

func TestFormatLookbackDays(t *testing.T) {
	cases := map[NewsletterFormat]int{
		FormatDaily:   1,
		FormatWeekly:  7,
		FormatMonthly: 30,
		FormatCustom:  7,
	}
	for format, want := range cases {
		if got := format.LookbackDays(); got != want {
			t.Errorf("LookbackDays(%s) = %d, want %d", format, got, want)
		}
	}

	if got := NewsletterFormat("bogus").LookbackDays(); got != 7 {
		t.Errorf("unknown format should default to 7 days, got %d", got)
	}
}

func TestResolveDateRangeFromFormat(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	config := NewsletterConfig{Format: FormatWeekly}
	config.ResolveDateRange(now)

	if !config.DateRange.End.Equal(now) {
		t.Errorf("expected end %v, got %v", now, config.DateRange.End)
	}
	wantStart := now.AddDate(0, 0, -7)
	if !config.DateRange.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, config.DateRange.Start)
	}
}

func TestResolveDateRangePreservesExplicitRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	explicit := DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	config := NewsletterConfig{Format: FormatMonthly, DateRange: explicit}
	config.ResolveDateRange(now)

	if !config.DateRange.Start.Equal(explicit.Start) || !config.DateRange.End.Equal(explicit.End) {
		t.Errorf("explicit date range was overwritten: %+v", config.DateRange)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Format != FormatMonthly {
		t.Errorf("expected monthly format, got %s", config.Format)
	}
	if config.Template != TemplateProfessional {
		t.Errorf("expected professional template, got %s", config.Template)
	}
	if config.MaxArticles != 20 {
		t.Errorf("expected max 20 articles, got %d", config.MaxArticles)
	}
	if len(config.Sections) != 5 {
		t.Errorf("expected 5 default sections, got %d", len(config.Sections))
	}
}

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences("user-1")

	if prefs.UserID != "user-1" {
		t.Errorf("expected user id to carry over, got %s", prefs.UserID)
	}
	if prefs.RelevanceThreshold != 0.7 {
		t.Errorf("expected relevance threshold 0.7, got %f", prefs.RelevanceThreshold)
	}
	if prefs.UrgencyThreshold != 5 {
		t.Errorf("expected urgency threshold 5, got %d", prefs.UrgencyThreshold)
	}
}

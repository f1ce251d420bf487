package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"govbrief/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	prefs := core.DefaultPreferences("user-1")
	prefs.Keywords = []string{"healthcare", "finance"}
	prefs.ExcludedSources = []string{"spamnews.example"}

	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	loaded, err := s.GetPreferences("user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if len(loaded.Keywords) != 2 || loaded.Keywords[0] != "healthcare" {
		t.Errorf("keywords = %v", loaded.Keywords)
	}
	if loaded.RelevanceThreshold != prefs.RelevanceThreshold {
		t.Errorf("threshold = %v, want %v", loaded.RelevanceThreshold, prefs.RelevanceThreshold)
	}

	// Saving again overwrites.
	prefs.Keywords = []string{"robotics"}
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences() update error = %v", err)
	}
	loaded, _ = s.GetPreferences("user-1")
	if len(loaded.Keywords) != 1 || loaded.Keywords[0] != "robotics" {
		t.Errorf("updated keywords = %v", loaded.Keywords)
	}
}

func TestGetPreferencesUnknownUserReturnsDefaults(t *testing.T) {
	s := newTestStore(t)

	prefs, err := s.GetPreferences("never-seen")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	defaults := core.DefaultPreferences("never-seen")
	if prefs.UserID != "never-seen" {
		t.Errorf("user id = %q", prefs.UserID)
	}
	if prefs.RelevanceThreshold != defaults.RelevanceThreshold {
		t.Errorf("threshold = %v, want default %v", prefs.RelevanceThreshold, defaults.RelevanceThreshold)
	}
}

func TestNewsletterRoundTrip(t *testing.T) {
	s := newTestStore(t)

	n := core.Newsletter{
		ID:            uuid.NewString(),
		UserID:        "user-1",
		Title:         "GovBrief Weekly Brief - June 2025",
		Content:       "# GovBrief\n\nbody",
		Config:        core.DefaultConfig(),
		TotalArticles: 4,
		Sections:      map[string]string{"Executive Highlights": "section body"},
		GeneratedAt:   time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	if err := s.SaveNewsletter(n); err != nil {
		t.Fatalf("SaveNewsletter() error = %v", err)
	}

	loaded, err := s.GetNewsletter(n.ID)
	if err != nil {
		t.Fatalf("GetNewsletter() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("newsletter not found")
	}
	if loaded.Title != n.Title || loaded.TotalArticles != 4 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Sections["Executive Highlights"] != "section body" {
		t.Errorf("sections = %v", loaded.Sections)
	}
	if loaded.Config.Format != core.FormatMonthly {
		t.Errorf("config format = %s", loaded.Config.Format)
	}
}

func TestGetNewsletterMissing(t *testing.T) {
	s := newTestStore(t)

	n, err := s.GetNewsletter("nope")
	if err != nil {
		t.Fatalf("GetNewsletter() error = %v", err)
	}
	if n != nil {
		t.Errorf("expected nil for missing newsletter, got %+v", n)
	}
}

func TestListNewslettersOrderAndScope(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		n := core.Newsletter{
			ID:          uuid.NewString(),
			UserID:      "user-1",
			Title:       "brief",
			Config:      core.DefaultConfig(),
			Sections:    map[string]string{},
			GeneratedAt: base.AddDate(0, 0, i),
		}
		if err := s.SaveNewsletter(n); err != nil {
			t.Fatalf("SaveNewsletter() error = %v", err)
		}
	}
	other := core.Newsletter{
		ID: uuid.NewString(), UserID: "user-2",
		Config: core.DefaultConfig(), Sections: map[string]string{},
		GeneratedAt: base,
	}
	if err := s.SaveNewsletter(other); err != nil {
		t.Fatalf("SaveNewsletter() error = %v", err)
	}

	list, err := s.ListNewsletters("user-1", 10)
	if err != nil {
		t.Fatalf("ListNewsletters() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 newsletters, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].GeneratedAt.After(list[i-1].GeneratedAt) {
			t.Error("newsletters not sorted newest first")
		}
	}

	limited, _ := s.ListNewsletters("user-1", 2)
	if len(limited) != 2 {
		t.Errorf("limit not applied, got %d", len(limited))
	}
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"govbrief/internal/core"
)

// Store persists user preferences and generated newsletters in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "govbrief.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	preferencesTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		user_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	newslettersTable := `
	CREATE TABLE IF NOT EXISTS newsletters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT,
		content TEXT,
		config TEXT,
		sections TEXT,
		total_articles INTEGER,
		generated_at DATETIME NOT NULL
	);`

	newslettersIndex := `
	CREATE INDEX IF NOT EXISTS idx_newsletters_user
	ON newsletters (user_id, generated_at DESC);`

	for _, stmt := range []string{preferencesTable, newslettersTable, newslettersIndex} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePreferences upserts a user's preferences.
func (s *Store) SavePreferences(prefs core.UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO preferences (user_id, data, updated_at)
	VALUES (?, ?, ?)`

	_, err = s.db.Exec(query, prefs.UserID, string(data), time.Now().UTC())
	return err
}

// GetPreferences loads a user's preferences. A missing user gets the
// defaults, so a first request never fails on an empty database.
func (s *Store) GetPreferences(userID string) (core.UserPreferences, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM preferences WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return core.DefaultPreferences(userID), nil
	}
	if err != nil {
		return core.UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs core.UserPreferences
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return core.UserPreferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// SaveNewsletter stores a generated newsletter.
func (s *Store) SaveNewsletter(n core.Newsletter) error {
	config, err := json.Marshal(n.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	sections, err := json.Marshal(n.Sections)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO newsletters
	(id, user_id, title, content, config, sections, total_articles, generated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		n.ID, n.UserID, n.Title, n.Content,
		string(config), string(sections), n.TotalArticles, n.GeneratedAt)
	return err
}

// GetNewsletter loads one newsletter by ID. Returns nil when not found.
func (s *Store) GetNewsletter(id string) (*core.Newsletter, error) {
	query := `
	SELECT id, user_id, title, content, config, sections, total_articles, generated_at
	FROM newsletters WHERE id = ?`

	n, err := scanNewsletter(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListNewsletters returns a user's newsletters, newest first.
func (s *Store) ListNewsletters(userID string, limit int) ([]core.Newsletter, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, user_id, title, content, config, sections, total_articles, generated_at
	FROM newsletters WHERE user_id = ?
	ORDER BY generated_at DESC LIMIT ?`

	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list newsletters: %w", err)
	}
	defer rows.Close()

	var out []core.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNewsletter(row rowScanner) (*core.Newsletter, error) {
	var n core.Newsletter
	var config, sections string

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content,
		&config, &sections, &n.TotalArticles, &n.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan newsletter: %w", err)
	}

	if err := json.Unmarshal([]byte(config), &n.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := json.Unmarshal([]byte(sections), &n.Sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections: %w", err)
	}
	return &n, nil
}

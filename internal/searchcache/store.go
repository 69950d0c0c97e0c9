// Package searchcache persists resolved TMDB lookups in a small SQLite
// database so repeated artwork runs over the same library avoid re-querying
// the metadata service for titles that already resolved.
package searchcache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"plextoolkit/internal/config"
)

// Entry records one resolved lookup.
type Entry struct {
	Kind          string
	Title         string
	Year          int
	TMDBID        int64
	MatchedTitle  string
	PosterRef     string
	BackgroundRef string
	CachedAt      time.Time
}

// Store manages cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand cache path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: expanded}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenFromConfig opens the configured cache, or returns nil when caching is
// disabled. A nil *Store is safe to use; every method becomes a no-op.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if !cfg.SearchCache.Enabled {
		return nil, nil
	}
	return Open(cfg.SearchCache.Path)
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS search_entries (
            kind TEXT NOT NULL,
            title TEXT NOT NULL,
            year INTEGER NOT NULL,
            tmdb_id INTEGER NOT NULL,
            matched_title TEXT NOT NULL,
            poster_ref TEXT NOT NULL,
            background_ref TEXT NOT NULL,
            cached_at TEXT NOT NULL,
            PRIMARY KEY (kind, title, year)
        )`)
	if err != nil {
		return fmt.Errorf("apply cache schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the cached resolution for (kind, title, year), or ok=false
// when nothing is cached. Database failures degrade to a miss.
func (s *Store) Lookup(ctx context.Context, kind, title string, year int) (Entry, bool) {
	if s == nil || s.db == nil {
		return Entry{}, false
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT tmdb_id, matched_title, poster_ref, background_ref, cached_at
         FROM search_entries WHERE kind = ? AND title = ? AND year = ?`,
		kind, title, year)

	entry := Entry{Kind: kind, Title: title, Year: year}
	var cachedAt string
	err := row.Scan(&entry.TMDBID, &entry.MatchedTitle, &entry.PosterRef, &entry.BackgroundRef, &cachedAt)
	if err != nil {
		// Misses and damaged caches both degrade to a fresh lookup.
		return Entry{}, false
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, cachedAt); parseErr == nil {
		entry.CachedAt = parsed
	}
	return entry, true
}

// Store upserts a resolved lookup. Failures are returned for logging but are
// not fatal to the caller's run.
func (s *Store) Store(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_entries (kind, title, year, tmdb_id, matched_title, poster_ref, background_ref, cached_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(kind, title, year) DO UPDATE SET
             tmdb_id = excluded.tmdb_id,
             matched_title = excluded.matched_title,
             poster_ref = excluded.poster_ref,
             background_ref = excluded.background_ref,
             cached_at = excluded.cached_at`,
		entry.Kind, entry.Title, entry.Year,
		entry.TMDBID, entry.MatchedTitle, entry.PosterRef, entry.BackgroundRef,
		cachedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Path reports where the cache database lives.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

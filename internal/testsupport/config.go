// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"plextoolkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Plex.URL = "http://127.0.0.1:32400"
	cfgVal.Plex.Token = "test-token"
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.SearchCache.Path = filepath.Join(base, "cache", "searchcache.db")

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithPlexServer points the test config at a test server URL.
func WithPlexServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = url
	}
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithoutTMDB clears the TMDB credentials so fallback paths run.
func WithoutTMDB() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = ""
	}
}

// WithSearchCache enables the resolution cache at the seeded temp path.
func WithSearchCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SearchCache.Enabled = true
	}
}

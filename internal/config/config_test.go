package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "")
	t.Setenv("TMDB_API_KEY", "")
	path := writeConfig(t, `
[plex]
url = "http://plex.local:32400"
token = "abc123"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Plex.Library != "Movies" {
		t.Errorf("library default = %q, want Movies", cfg.Plex.Library)
	}
	if cfg.Matching.Threshold != 0.85 {
		t.Errorf("threshold default = %v, want 0.85", cfg.Matching.Threshold)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("tmdb base url default = %q", cfg.TMDB.BaseURL)
	}
	if cfg.Network.RetryAttempts != 3 {
		t.Errorf("retry attempts default = %d, want 3", cfg.Network.RetryAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "env-plex")
	t.Setenv("TMDB_API_KEY", "env-tmdb")
	path := writeConfig(t, `
[plex]
url = "http://plex.local:32400"
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Plex.Token != "env-plex" {
		t.Errorf("plex token = %q, want env-plex", cfg.Plex.Token)
	}
	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Errorf("tmdb key = %q, want env-tmdb", cfg.TMDB.APIKey)
	}
}

func TestLoadRejectsMissingPlexSettings(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "")
	tests := []struct {
		name     string
		contents string
		wantMsg  string
	}{
		{"missing url", `[plex]
token = "abc"`, "plex.url"},
		{"missing token", `[plex]
url = "http://plex.local:32400"`, "plex.token"},
		{"bad url", `[plex]
url = "not a url"
token = "abc"`, "not a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, `
[plex]
url = "http://plex.local:32400"
token = "abc"

[matching]
threshold = 1.5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected threshold validation error")
	}
}

func TestTrailingSlashTrimmed(t *testing.T) {
	path := writeConfig(t, `
[plex]
url = "http://plex.local:32400/"
token = "abc"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Plex.URL != "http://plex.local:32400" {
		t.Errorf("url = %q, want trailing slash removed", cfg.Plex.URL)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(target); err != nil {
		t.Fatalf("CreateSample() error = %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[plex]") {
		t.Error("sample config missing [plex] section")
	}
}

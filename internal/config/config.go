package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains connection settings for the Plex Media Server.
type Plex struct {
	URL              string `toml:"url"`
	Token            string `toml:"token"`
	Library          string `toml:"library"`
	ClientIdentifier string `toml:"client_identifier"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
}

// Matching contains title-matching tuning knobs.
type Matching struct {
	// Threshold is the minimum similarity (0..1) for a fuzzy match to be
	// accepted when no exact title match exists.
	Threshold float64 `toml:"threshold"`
}

// Scraper contains settings for the web list scraper.
type Scraper struct {
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SearchCache contains configuration for the TMDB resolution cache.
type SearchCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Network contains HTTP timeout and retry settings shared by the clients.
type Network struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	RetryAttempts  int `toml:"retry_attempts"`
	RetryDelayMS   int `toml:"retry_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Paths contains local state directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Config encapsulates all configuration values for the toolkit.
//
// Configuration sections by subsystem:
//   - Plex: server URL, token, and default movie library
//   - TMDB: metadata search credentials and endpoints
//   - Matching: fuzzy title-match acceptance threshold
//   - Scraper: web list fetch settings
//   - SearchCache: persistent TMDB resolution cache
//   - Network: HTTP timeouts and bounded retry policy
//   - Logging: log format and level
//   - Paths: local state (run locks, cache default location)
type Config struct {
	Plex        Plex        `toml:"plex"`
	TMDB        TMDB        `toml:"tmdb"`
	Matching    Matching    `toml:"matching"`
	Scraper     Scraper     `toml:"scraper"`
	SearchCache SearchCache `toml:"search_cache"`
	Network     Network     `toml:"network"`
	Logging     Logging     `toml:"logging"`
	Paths       Paths       `toml:"paths"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/plextoolkit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment overrides applied.
// The second return value is the resolved path; the third reports whether a
// file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("plextoolkit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local state directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// RunLockPath returns the lock file guarding mutating scans.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Paths.StateDir, "run.lock")
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and relative segments in a user-supplied path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

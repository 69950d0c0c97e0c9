package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlex()
	c.normalizeTMDB()
	c.normalizeScraper()
	c.normalizeNetwork()
	c.normalizeLogging()
	if err := c.normalizeSearchCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePlex() {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
	c.Plex.Library = strings.TrimSpace(c.Plex.Library)
	if c.Plex.Library == "" {
		c.Plex.Library = defaultLibraryName
	}
	c.Plex.ClientIdentifier = strings.TrimSpace(c.Plex.ClientIdentifier)
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimSpace(c.TMDB.ImageBaseURL)
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeScraper() {
	c.Scraper.UserAgent = strings.TrimSpace(c.Scraper.UserAgent)
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = defaultScraperUserAgent
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		c.Scraper.TimeoutSeconds = defaultScraperTimeout
	}
}

func (c *Config) normalizeNetwork() {
	if c.Network.TimeoutSeconds <= 0 {
		c.Network.TimeoutSeconds = defaultNetworkTimeout
	}
	if c.Network.RetryAttempts <= 0 {
		c.Network.RetryAttempts = defaultRetryAttempts
	}
	if c.Network.RetryDelayMS <= 0 {
		c.Network.RetryDelayMS = defaultRetryDelayMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeSearchCache() error {
	var err error
	if strings.TrimSpace(c.SearchCache.Path) == "" {
		c.SearchCache.Path = defaultSearchCachePath
	}
	if c.SearchCache.Path, err = expandPath(c.SearchCache.Path); err != nil {
		return fmt.Errorf("search_cache.path: %w", err)
	}
	return nil
}

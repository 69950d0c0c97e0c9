package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. The TMDB key is deliberately
// optional: without it the toolkit degrades to the built-in fallback tables.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/plextoolkit/config.toml"
		}
		return fmt.Errorf("plex.url is required. Edit %s (create with 'plextoolkit config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Plex.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("plex.url %q is not a valid URL", c.Plex.URL)
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token is required. Set PLEX_TOKEN env var or edit the config file")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

package main

import (
	"log/slog"
	"strings"
	"sync"

	"plextoolkit/internal/collections"
	"plextoolkit/internal/config"
	"plextoolkit/internal/logging"
	"plextoolkit/internal/plex"
	"plextoolkit/internal/scrape"
	"plextoolkit/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

func (c *commandContext) libraryClient() (*plex.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return plex.NewFromConfig(cfg)
}

// metadataClient returns nil when no TMDB key is configured; callers fall
// back to bundled data or report the service as unavailable.
func (c *commandContext) metadataClient() (*tmdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
		return nil, nil
	}
	return tmdb.NewFromConfig(cfg)
}

func (c *commandContext) listProvider() (*scrape.Provider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return scrape.NewFromConfig(cfg), nil
}

// sourceResolver assembles the collection source resolver from whatever
// collaborators the configuration enables.
func (c *commandContext) sourceResolver(logger *slog.Logger) (*collections.SourceResolver, error) {
	metadata, err := c.metadataClient()
	if err != nil {
		return nil, err
	}
	lists, err := c.listProvider()
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		// Typed nil must not masquerade as a live interface value.
		return collections.NewSourceResolver(nil, lists, logger), nil
	}
	return collections.NewSourceResolver(metadata, lists, logger), nil
}

// section picks the library section, preferring the flag over the config.
func (c *commandContext) section(flagValue string) string {
	if s := strings.TrimSpace(flagValue); s != "" {
		return s
	}
	if c.config != nil {
		return c.config.Plex.Library
	}
	return ""
}

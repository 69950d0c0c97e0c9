package config

const (
	defaultLibraryName       = "Movies"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL  = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage      = "en-US"
	defaultMatchThreshold    = 0.85
	defaultScraperUserAgent  = "plextoolkit/dev"
	defaultScraperTimeout    = 10
	defaultNetworkTimeout    = 10
	defaultRetryAttempts     = 3
	defaultRetryDelayMS      = 500
	defaultLogFormat         = "text"
	defaultLogLevel          = "info"
	defaultStateDir          = "~/.local/share/plextoolkit"
	defaultSearchCachePath   = "~/.cache/plextoolkit/searchcache.db"
	defaultSearchCacheEnable = false
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			Library: defaultLibraryName,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
		},
		Matching: Matching{
			Threshold: defaultMatchThreshold,
		},
		Scraper: Scraper{
			UserAgent:      defaultScraperUserAgent,
			TimeoutSeconds: defaultScraperTimeout,
		},
		SearchCache: SearchCache{
			Enabled: defaultSearchCacheEnable,
			Path:    defaultSearchCachePath,
		},
		Network: Network{
			TimeoutSeconds: defaultNetworkTimeout,
			RetryAttempts:  defaultRetryAttempts,
			RetryDelayMS:   defaultRetryDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
	}
}

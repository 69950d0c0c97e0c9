// Package config loads and validates the toolkit's TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/plextoolkit/config.toml, then ./plextoolkit.toml. Secrets can be
// supplied via the PLEX_TOKEN and TMDB_API_KEY environment variables instead
// of the file. Load returns a fully normalized config: paths are expanded,
// defaults applied, and the result validated before any command runs.
package config

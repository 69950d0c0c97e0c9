// Package collections assembles Plex collections from title lists. Lists come
// from manual input, known franchise registries on TMDB, studio discovery
// queries, or scraped web indexes; membership updates are union-only and are
// applied in a single server mutation.
package collections

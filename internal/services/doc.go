// Package services provides shared failure classification for the toolkit.
//
// Every external collaborator (the Plex server, TMDB, scraped web lists)
// reports failures through the sentinel errors defined here so callers can
// decide between retrying, degrading to fallback data, or surfacing the
// failure in a run report. Retry implements the bounded-retry policy used for
// transient network failures; client errors (HTTP 4xx) are never retried.
package services

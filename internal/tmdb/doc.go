// Package tmdb wraps the subset of The Movie Database v3 API the toolkit
// uses: title search for movies and TV shows, company/keyword discovery with
// pagination, collection (franchise) membership, and season artwork. Image
// references are absolute URLs built from the configured image base.
//
// Construction requires an API key; NewFromConfig reports
// services.ErrUnavailable when none is configured so callers can fall back
// to the built-in tables instead of attempting calls.
package tmdb

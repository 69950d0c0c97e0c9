// Package match resolves free-text movie titles against a catalog snapshot.
//
// The resolver is generic over anything exposing a title and optional year,
// so the same disambiguation rules serve both the Plex catalog and TMDB
// search results. Matching never mutates the catalog and is deterministic:
// identical inputs always produce identical results.
package match

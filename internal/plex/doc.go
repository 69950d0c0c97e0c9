// Package plex wraps the subset of the Plex Media Server HTTP API the
// toolkit needs: listing library sections and collections, reading artwork
// lock flags, mutating collection membership, and applying poster/background
// images. All calls authenticate with an X-Plex-Token and request JSON.
package plex

// Package scrape downloads published film lists (Wikipedia filmographies,
// the Criterion spine index) and converts them into title queries that the
// collection builder can resolve against a library.
package scrape

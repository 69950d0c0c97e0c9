// Package textutil provides title normalization and similarity scoring.
//
// NormalizeTitle prepares titles for equality comparison (lowercase, no
// diacritics or punctuation, collapsed whitespace, leading article removed).
// Fingerprints are term-frequency vectors over normalized tokens; cosine
// similarity between them drives the fuzzy fallback in title matching.
package textutil

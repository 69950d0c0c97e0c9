package textutil

import (
	"math"
	"strings"
)

// fingerprint represents a term-frequency vector for text similarity
// comparison. Titles are short, so every token counts; nothing is filtered by
// length the way longer-document fingerprints would.
type fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// newFingerprint creates a fingerprint from a normalized title. Returns nil
// if the text produces no tokens.
func newFingerprint(text string) *fingerprint {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// cosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func cosineSimilarity(a, b *fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// TitleSimilarity scores two raw titles on a 0..1 scale after normalization.
func TitleSimilarity(a, b string) float64 {
	return cosineSimilarity(newFingerprint(NormalizeTitle(a)), newFingerprint(NormalizeTitle(b)))
}

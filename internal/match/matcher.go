package match

import (
	"regexp"
	"strconv"
	"strings"

	"plextoolkit/internal/services"
	"plextoolkit/internal/textutil"
)

// Query is a free-text title to resolve, with an optional year (0 = none).
type Query struct {
	Title string
	Year  int
}

// String renders the query the way users wrote it: "Title (Year)".
func (q Query) String() string {
	if q.Year > 0 {
		return q.Title + " (" + strconv.Itoa(q.Year) + ")"
	}
	return q.Title
}

var titleYearPattern = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)$`)

// ParseQuery splits a "Title (Year)" string into its parts. Input without a
// trailing year yields a query with Year 0.
func ParseQuery(raw string) Query {
	raw = strings.TrimSpace(raw)
	if m := titleYearPattern.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[2])
		return Query{Title: strings.TrimSpace(m[1]), Year: year}
	}
	return Query{Title: raw}
}

// Entry is anything a query can be resolved against: a Plex catalog item or a
// TMDB search candidate.
type Entry interface {
	MatchTitle() string
	MatchYear() int
}

// Outcome classifies a resolution attempt.
type Outcome int

const (
	// Unmatched means no entry resolved; Result.Reason says why.
	Unmatched Outcome = iota
	// Matched means exactly one entry resolved.
	Matched
	// Ambiguous means several entries tied and the caller must disambiguate.
	Ambiguous
)

// Match confidence reasons and unmatched reasons surfaced in reports.
const (
	ReasonNoCandidate  = "no candidate above threshold"
	ReasonYearMismatch = "year mismatch"
	ReasonEmptyCatalog = "empty catalog"
)

// Result is the outcome of resolving one query against a catalog snapshot.
// It is consumed immediately by the caller and never persisted.
type Result[E Entry] struct {
	Outcome    Outcome
	Item       E
	Confidence float64
	Reason     string
	Candidates []E
}

// Options tune the resolver.
type Options struct {
	// Threshold is the minimum similarity for the fuzzy fallback. Zero means
	// the default of 0.85.
	Threshold float64
}

func (o Options) threshold() float64 {
	if o.Threshold <= 0 {
		return 0.85
	}
	return o.Threshold
}

// Resolve matches a query against a catalog snapshot.
//
// Exact normalized-title equality wins; a year on the query narrows
// same-titled entries (entries without a year are not excluded by the year
// filter). With no exact match the highest-scoring fuzzy candidate is
// accepted when it clears the threshold. Resolution is deterministic and
// side-effect-free: the catalog is only read.
func Resolve[E Entry](query Query, catalog []E, opts Options) (Result[E], error) {
	title := strings.TrimSpace(query.Title)
	if title == "" {
		return Result[E]{}, services.Wrap(services.ErrInvalidQuery, "match", "resolve", "blank title", nil)
	}
	if len(catalog) == 0 {
		return Result[E]{Outcome: Unmatched, Reason: ReasonEmptyCatalog}, nil
	}

	queryNorm := textutil.NormalizeTitle(title)

	exact := make([]E, 0, 2)
	for _, entry := range catalog {
		if textutil.NormalizeTitle(entry.MatchTitle()) == queryNorm {
			exact = append(exact, entry)
		}
	}

	if len(exact) == 0 {
		return fuzzyResolve(query, catalog, opts), nil
	}

	narrowed := exact
	if query.Year > 0 {
		narrowed = narrowed[:0:0]
		for _, entry := range exact {
			if year := entry.MatchYear(); year == 0 || year == query.Year {
				narrowed = append(narrowed, entry)
			}
		}
		if len(narrowed) == 0 {
			return Result[E]{Outcome: Unmatched, Reason: ReasonYearMismatch}, nil
		}
	}

	if len(narrowed) == 1 {
		return Result[E]{Outcome: Matched, Item: narrowed[0], Confidence: 1.0}, nil
	}
	return Result[E]{Outcome: Ambiguous, Candidates: narrowed}, nil
}

func fuzzyResolve[E Entry](query Query, catalog []E, opts Options) Result[E] {
	threshold := opts.threshold()

	var best E
	bestScore := -1.0
	found := false
	for _, entry := range catalog {
		if query.Year > 0 {
			if year := entry.MatchYear(); year != 0 && year != query.Year {
				continue
			}
		}
		score := textutil.TitleSimilarity(query.Title, entry.MatchTitle())
		if score > bestScore {
			best = entry
			bestScore = score
			found = true
		}
	}

	if !found || bestScore < threshold {
		return Result[E]{Outcome: Unmatched, Reason: ReasonNoCandidate}
	}
	return Result[E]{Outcome: Matched, Item: best, Confidence: bestScore}
}

package collections

import (
	"strings"

	"plextoolkit/internal/match"
)

// SourceType says where a collection's title list comes from.
type SourceType int

const (
	// SourceManual carries an explicit list of title queries.
	SourceManual SourceType = iota
	// SourceFranchise expands a named franchise via its TMDB collection.
	SourceFranchise
	// SourceStudio expands a studio or label via TMDB discovery.
	SourceStudio
	// SourceScraped pulls a published web list.
	SourceScraped
)

func (t SourceType) String() string {
	switch t {
	case SourceManual:
		return "manual"
	case SourceFranchise:
		return "franchise"
	case SourceStudio:
		return "studio"
	case SourceScraped:
		return "scraped"
	default:
		return "unknown"
	}
}

// Source describes where a collection's member list comes from. Exactly one
// variant is meaningful per value, selected by Type.
type Source struct {
	Type SourceType

	// Queries holds the explicit list for SourceManual.
	Queries []match.Query
	// Name holds the franchise or studio name for SourceFranchise and
	// SourceStudio, or the web list name for SourceScraped.
	Name string
}

// Manual builds a source from explicit title queries.
func Manual(queries []match.Query) Source {
	return Source{Type: SourceManual, Queries: queries}
}

// ParseManual builds a manual source from raw "Title (Year)" strings,
// skipping blank entries.
func ParseManual(raw []string) Source {
	queries := make([]match.Query, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		queries = append(queries, match.ParseQuery(entry))
	}
	return Manual(queries)
}

// Franchise builds a source that expands a named franchise.
func Franchise(name string) Source {
	return Source{Type: SourceFranchise, Name: strings.TrimSpace(name)}
}

// Studio builds a source that expands a studio's catalog.
func Studio(name string) Source {
	return Source{Type: SourceStudio, Name: strings.TrimSpace(name)}
}

// Scraped builds a source backed by a named web list.
func Scraped(listName string) Source {
	return Source{Type: SourceScraped, Name: strings.TrimSpace(listName)}
}

package collections

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"plextoolkit/internal/logging"
	"plextoolkit/internal/match"
	"plextoolkit/internal/plex"
	"plextoolkit/internal/services"
)

// LibraryClient is the slice of the Plex client the builder needs.
type LibraryClient interface {
	ListSection(ctx context.Context, section string) ([]plex.Item, error)
	ListCollectionMembers(ctx context.Context, section, collection string) ([]plex.Item, error)
	SetCollectionMembers(ctx context.Context, section, collection string, items []plex.Item) error
}

// Spec describes one collection build request.
type Spec struct {
	Section    string
	Collection string
	Source     Source
}

// Builder resolves a source's titles against a library section and applies
// the resulting membership. Existing members are never removed.
type Builder struct {
	library  LibraryClient
	resolver *SourceResolver
	logger   *slog.Logger
	matchOpt match.Options
}

// NewBuilder wires a collection builder.
func NewBuilder(library LibraryClient, resolver *SourceResolver, threshold float64, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		library:  library,
		resolver: resolver,
		logger:   logging.WithComponent(logger, "collections"),
		matchOpt: match.Options{Threshold: threshold},
	}
}

// Build resolves the requested source, matches each title against a single
// snapshot of the section, and applies the union of new and existing members
// in one mutation. A source that yields no titles aborts before any matching.
func (b *Builder) Build(ctx context.Context, spec Spec) (*BuildReport, error) {
	collection := strings.TrimSpace(spec.Collection)
	if collection == "" {
		return nil, services.Wrap(services.ErrInvalidQuery, "collections", "build", "collection name required", nil)
	}

	queries, err := b.resolver.Resolve(ctx, spec.Source)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, services.Wrap(services.ErrInvalidQuery, "collections", "build", "source produced no titles", nil)
	}

	catalog, err := b.library.ListSection(ctx, spec.Section)
	if err != nil {
		return nil, err
	}
	b.logger.Info("building collection",
		logging.String("collection", collection),
		logging.String("section", spec.Section),
		logging.Int("titles", len(queries)),
		logging.Int("items", len(catalog)))

	existing, err := b.existingMembers(ctx, spec.Section, collection)
	if err != nil {
		return nil, err
	}

	// Membership order is existing members first, then new matches in query
	// order, so servers that preserve ordering display the list as written.
	report := &BuildReport{Collection: collection, Section: spec.Section}
	seen := make(map[string]struct{}, len(existing))
	union := make([]plex.Item, 0, len(existing))
	for _, item := range existing {
		if _, ok := seen[item.RatingKey]; ok {
			continue
		}
		seen[item.RatingKey] = struct{}{}
		union = append(union, item)
	}
	added := 0

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, item := b.resolveOne(query, catalog, seen)
		if entry.Status == StatusAdded {
			union = append(union, item)
			added++
		}
		report.Entries = append(report.Entries, entry)
	}

	report.MemberCount = len(union)
	if added == 0 {
		b.logger.Info("no new members, skipping mutation", logging.String("collection", collection))
		return report, nil
	}

	if err := b.library.SetCollectionMembers(ctx, spec.Section, collection, union); err != nil {
		return report, err
	}
	report.Applied = true
	b.logger.Info("collection updated",
		logging.String("collection", collection),
		logging.Int("added", added),
		logging.Int("members", len(union)))
	return report, nil
}

// existingMembers fetches the collection's current membership. A collection
// that does not exist yet simply has no members.
func (b *Builder) existingMembers(ctx context.Context, section, collection string) ([]plex.Item, error) {
	items, err := b.library.ListCollectionMembers(ctx, section, collection)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// resolveOne matches a single query and classifies it against the member set.
// Duplicate resolutions of the same library item collapse to one membership.
// The matched item is returned only for StatusAdded entries.
func (b *Builder) resolveOne(query match.Query, catalog []plex.Item, seen map[string]struct{}) (ReportEntry, plex.Item) {
	entry := ReportEntry{Query: query}

	result, err := match.Resolve(query, catalog, b.matchOpt)
	if err != nil {
		entry.Status = StatusUnmatched
		entry.Detail = err.Error()
		return entry, plex.Item{}
	}

	switch result.Outcome {
	case match.Matched:
		entry.Matched = result.Item.Title
		if _, present := seen[result.Item.RatingKey]; present {
			entry.Status = StatusAlreadyPresent
			return entry, plex.Item{}
		}
		seen[result.Item.RatingKey] = struct{}{}
		entry.Status = StatusAdded
		return entry, result.Item
	case match.Ambiguous:
		entry.Status = StatusAmbiguous
		titles := make([]string, 0, len(result.Candidates))
		for _, candidate := range result.Candidates {
			titles = append(titles, match.Query{Title: candidate.Title, Year: candidate.Year}.String())
		}
		entry.Detail = "candidates: " + strings.Join(titles, "; ")
	default:
		entry.Status = StatusUnmatched
		entry.Detail = result.Reason
	}
	return entry, plex.Item{}
}

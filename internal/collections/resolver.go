package collections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"plextoolkit/internal/logging"
	"plextoolkit/internal/match"
	"plextoolkit/internal/services"
	"plextoolkit/internal/tmdb"
)

// MetadataClient is the slice of the TMDB client the resolver needs.
type MetadataClient interface {
	CollectionParts(ctx context.Context, collectionID int64) ([]tmdb.Candidate, error)
	SearchCompany(ctx context.Context, name string) (int64, error)
	DiscoverByCompany(ctx context.Context, companyID int64) ([]tmdb.Candidate, error)
	DiscoverByKeyword(ctx context.Context, keywordID int64) ([]tmdb.Candidate, error)
}

// ListProvider fetches scraped web lists.
type ListProvider interface {
	FetchList(ctx context.Context, sourceName string) ([]match.Query, error)
}

// SourceResolver turns a Source into a concrete list of title queries. The
// metadata client may be nil, in which case franchises fall back to the
// bundled title lists and studio sources fail with ErrUnavailable.
type SourceResolver struct {
	metadata MetadataClient
	lists    ListProvider
	logger   *slog.Logger
}

// NewSourceResolver wires a resolver. Any collaborator may be nil.
func NewSourceResolver(metadata MetadataClient, lists ListProvider, logger *slog.Logger) *SourceResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SourceResolver{metadata: metadata, lists: lists, logger: logging.WithComponent(logger, "collections")}
}

// Resolve expands a source into title queries.
func (r *SourceResolver) Resolve(ctx context.Context, source Source) ([]match.Query, error) {
	switch source.Type {
	case SourceManual:
		if len(source.Queries) == 0 {
			return nil, services.Wrap(services.ErrInvalidQuery, "collections", "resolve source", "empty manual list", nil)
		}
		return source.Queries, nil
	case SourceFranchise:
		return r.resolveFranchise(ctx, source.Name)
	case SourceStudio:
		return r.resolveStudio(ctx, source.Name)
	case SourceScraped:
		if r.lists == nil {
			return nil, services.Wrap(services.ErrUnavailable, "collections", "resolve source", "no list provider configured", nil)
		}
		return r.lists.FetchList(ctx, source.Name)
	default:
		return nil, services.Wrap(services.ErrInvalidQuery, "collections", "resolve source", fmt.Sprintf("unknown source type %d", source.Type), nil)
	}
}

func (r *SourceResolver) resolveFranchise(ctx context.Context, name string) ([]match.Query, error) {
	collectionID, known := lookupFranchise(name)
	if !known {
		return nil, services.Wrap(services.ErrNotFound, "collections", "resolve franchise", fmt.Sprintf("unknown franchise %q", name), nil)
	}

	if r.metadata != nil {
		parts, err := r.metadata.CollectionParts(ctx, collectionID)
		if err == nil {
			return candidateQueries(parts), nil
		}
		r.logger.Warn("franchise lookup failed, trying bundled list",
			logging.String("franchise", name), logging.Error(err))
	}

	titles, ok := fallbackFranchiseTitles(name)
	if !ok {
		return nil, services.Wrap(services.ErrUnavailable, "collections", "resolve franchise", fmt.Sprintf("no metadata service and no bundled list for %q", name), nil)
	}
	queries := make([]match.Query, 0, len(titles))
	for _, title := range titles {
		queries = append(queries, match.ParseQuery(title))
	}
	return queries, nil
}

func (r *SourceResolver) resolveStudio(ctx context.Context, name string) ([]match.Query, error) {
	if r.metadata == nil {
		return nil, services.Wrap(services.ErrUnavailable, "collections", "resolve studio", "metadata service not configured", nil)
	}

	filter, known := KnownStudios[strings.ToLower(strings.TrimSpace(name))]
	if !known {
		// Unlisted studios resolve through a company name search.
		companyID, err := r.metadata.SearchCompany(ctx, name)
		if err != nil {
			return nil, services.Wrap(nil, "collections", "resolve studio", name, err)
		}
		filter = StudioFilter{CompanyID: companyID}
	}

	var (
		candidates []tmdb.Candidate
		err        error
	)
	if filter.CompanyID > 0 {
		candidates, err = r.metadata.DiscoverByCompany(ctx, filter.CompanyID)
	} else {
		candidates, err = r.metadata.DiscoverByKeyword(ctx, filter.KeywordID)
	}
	if err != nil {
		return nil, services.Wrap(nil, "collections", "resolve studio", name, err)
	}
	return candidateQueries(candidates), nil
}

// lookupFranchise matches a franchise name case-insensitively against the
// registry.
func lookupFranchise(name string) (int64, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for known, id := range KnownFranchises {
		if strings.ToLower(known) == target {
			return id, true
		}
	}
	return 0, false
}

func candidateQueries(candidates []tmdb.Candidate) []match.Query {
	queries := make([]match.Query, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.Title) == "" {
			continue
		}
		queries = append(queries, match.Query{Title: candidate.Title, Year: candidate.Year})
	}
	return queries
}

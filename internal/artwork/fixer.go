package artwork

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"plextoolkit/internal/logging"
	"plextoolkit/internal/match"
	"plextoolkit/internal/plex"
	"plextoolkit/internal/searchcache"
	"plextoolkit/internal/services"
	"plextoolkit/internal/tmdb"
)

// LibraryClient is the slice of the Plex client the fixer needs.
type LibraryClient interface {
	ListSection(ctx context.Context, section string) ([]plex.Item, error)
	ListCollectionMembers(ctx context.Context, section, collection string) ([]plex.Item, error)
	GetLockState(ctx context.Context, item plex.Item) (plex.LockState, error)
	SetPoster(ctx context.Context, item plex.Item, imageRef string) error
	SetBackground(ctx context.Context, item plex.Item, imageRef string) error
	ListSeasons(ctx context.Context, show plex.Item) ([]plex.Item, error)
}

// MetadataClient is the slice of the TMDB client the fixer needs.
type MetadataClient interface {
	SearchMovies(ctx context.Context, title string, year int) ([]tmdb.Candidate, error)
	SearchTV(ctx context.Context, title string, year int) ([]tmdb.Candidate, error)
	GetSeasonImages(ctx context.Context, showID int64, seasonNumber int) (tmdb.SeasonImages, error)
}

// Scope selects what an artwork run covers.
type Scope struct {
	Section string
	// Collection, when set, restricts the run to that collection's members.
	Collection string
	// Title, when set, restricts the run to items whose title matches it
	// exactly (case-insensitive).
	Title string
}

// Fixer scans a section and repairs unlocked artwork from metadata search
// results. Items are processed strictly in sequence; the cache is optional.
type Fixer struct {
	library  LibraryClient
	metadata MetadataClient
	cache    *searchcache.Store
	logger   *slog.Logger
	matchOpt match.Options
}

// NewFixer wires an artwork fixer. The cache may be nil.
func NewFixer(library LibraryClient, metadata MetadataClient, cache *searchcache.Store, threshold float64, logger *slog.Logger) *Fixer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fixer{
		library:  library,
		metadata: metadata,
		cache:    cache,
		logger:   logging.WithComponent(logger, "artwork"),
		matchOpt: match.Options{Threshold: threshold},
	}
}

// Run scans the scoped items and applies artwork to every unlocked field it
// can resolve. Item failures are recorded and the scan continues; only
// cancellation stops the run early, returning the partial report.
func (f *Fixer) Run(ctx context.Context, scope Scope) (*FixReport, error) {
	var (
		items []plex.Item
		err   error
	)
	if collection := strings.TrimSpace(scope.Collection); collection != "" {
		items, err = f.library.ListCollectionMembers(ctx, scope.Section, collection)
	} else {
		items, err = f.library.ListSection(ctx, scope.Section)
	}
	if err != nil {
		return nil, err
	}
	if filter := strings.TrimSpace(scope.Title); filter != "" {
		filtered := items[:0:0]
		for _, item := range items {
			if strings.EqualFold(item.Title, filter) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	report := &FixReport{Section: scope.Section}
	f.logger.Info("starting artwork scan",
		logging.String("section", scope.Section),
		logging.Int("items", len(items)))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		f.processItem(ctx, item, report)
	}

	f.logger.Info("artwork scan finished",
		logging.Int("applied", report.Count(StatusApplied)),
		logging.Int("locked", report.Count(StatusSkippedLocked)),
		logging.Int("unmatched", report.Count(StatusSkippedNoMatch)),
		logging.Int("failed", report.Count(StatusFailed)))
	return report, nil
}

func (f *Fixer) processItem(ctx context.Context, item plex.Item, report *FixReport) {
	result := ItemResult{Title: item.Title, Kind: item.Kind}

	locks, err := f.library.GetLockState(ctx, item)
	if err != nil {
		result.Status = StatusFailed
		result.Detail = err.Error()
		report.Results = append(report.Results, result)
		return
	}
	if locks.PosterLocked && locks.BackgroundLocked && item.Kind != plex.KindShow {
		result.Status = StatusSkippedLocked
		report.Results = append(report.Results, result)
		return
	}

	resolution, err := f.resolve(ctx, item)
	if err != nil {
		result.Status = StatusFailed
		result.Detail = err.Error()
		report.Results = append(report.Results, result)
		return
	}
	if resolution.status != "" {
		result.Status = resolution.status
		result.Detail = resolution.detail
		report.Results = append(report.Results, result)
		return
	}

	if locks.PosterLocked && locks.BackgroundLocked {
		result.Status = StatusSkippedLocked
	} else {
		f.applyArtwork(ctx, item, locks, resolution.posterRef, resolution.backgroundRef, &result)
	}
	report.Results = append(report.Results, result)

	if item.Kind == plex.KindShow {
		f.processSeasons(ctx, item, resolution.tmdbID, report)
	}
}

// resolution carries a resolved metadata record, or a terminal skip status.
type resolution struct {
	tmdbID        int64
	matchedTitle  string
	posterRef     string
	backgroundRef string
	status        ItemStatus
	detail        string
}

func (f *Fixer) resolve(ctx context.Context, item plex.Item) (resolution, error) {
	if f.metadata == nil {
		return resolution{}, services.Wrap(services.ErrUnavailable, "artwork", "resolve", "metadata service not configured", nil)
	}

	kind := "movie"
	if item.Kind == plex.KindShow {
		kind = "show"
	}
	if entry, ok := f.cache.Lookup(ctx, kind, item.Title, item.Year); ok {
		return resolution{
			tmdbID:        entry.TMDBID,
			matchedTitle:  entry.MatchedTitle,
			posterRef:     entry.PosterRef,
			backgroundRef: entry.BackgroundRef,
		}, nil
	}

	var (
		candidates []tmdb.Candidate
		err        error
	)
	if item.Kind == plex.KindShow {
		candidates, err = f.metadata.SearchTV(ctx, item.Title, item.Year)
	} else {
		candidates, err = f.metadata.SearchMovies(ctx, item.Title, item.Year)
	}
	if err != nil {
		return resolution{}, err
	}

	result, err := match.Resolve(match.Query{Title: item.Title, Year: item.Year}, candidates, f.matchOpt)
	if err != nil {
		return resolution{}, err
	}
	switch result.Outcome {
	case match.Matched:
		f.logger.Debug("resolved title",
			logging.String("title", item.Title),
			logging.Int64("id", result.Item.ID),
			logging.Float64("confidence", result.Confidence))
		resolved := resolution{
			tmdbID:        result.Item.ID,
			matchedTitle:  result.Item.Title,
			posterRef:     result.Item.PosterRef,
			backgroundRef: result.Item.BackgroundRef,
		}
		if storeErr := f.cache.Store(ctx, searchcache.Entry{
			Kind:          kind,
			Title:         item.Title,
			Year:          item.Year,
			TMDBID:        resolved.tmdbID,
			MatchedTitle:  resolved.matchedTitle,
			PosterRef:     resolved.posterRef,
			BackgroundRef: resolved.backgroundRef,
		}); storeErr != nil {
			f.logger.Warn("cache write failed", logging.Error(storeErr))
		}
		return resolved, nil
	case match.Ambiguous:
		titles := make([]string, 0, len(result.Candidates))
		for _, candidate := range result.Candidates {
			titles = append(titles, match.Query{Title: candidate.Title, Year: candidate.Year}.String())
		}
		return resolution{status: StatusSkippedNoMatch, detail: "candidates: " + strings.Join(titles, "; ")}, nil
	default:
		return resolution{status: StatusSkippedNoMatch, detail: result.Reason}, nil
	}
}

// applyArtwork updates whichever fields are unlocked and have an image.
func (f *Fixer) applyArtwork(ctx context.Context, item plex.Item, locks plex.LockState, posterRef, backgroundRef string, result *ItemResult) {
	if !locks.PosterLocked && posterRef != "" {
		if err := f.library.SetPoster(ctx, item, posterRef); err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			return
		}
		result.PosterSet = true
	}
	if !locks.BackgroundLocked && backgroundRef != "" {
		if err := f.library.SetBackground(ctx, item, backgroundRef); err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			return
		}
		result.BackgroundSet = true
	}

	if result.PosterSet || result.BackgroundSet {
		result.Status = StatusApplied
		return
	}
	result.Status = StatusSkippedNoMatch
	result.Detail = "no artwork available for unlocked fields"
}

// processSeasons walks a matched show's seasons and repairs their artwork
// from the show's season images.
func (f *Fixer) processSeasons(ctx context.Context, show plex.Item, showID int64, report *FixReport) {
	seasons, err := f.library.ListSeasons(ctx, show)
	if err != nil {
		report.Results = append(report.Results, ItemResult{
			Title:  show.Title + " (seasons)",
			Kind:   plex.KindSeason,
			Status: StatusFailed,
			Detail: err.Error(),
		})
		return
	}

	for _, season := range seasons {
		if ctx.Err() != nil {
			return
		}
		result := ItemResult{Title: fmt.Sprintf("%s: %s", show.Title, season.Title), Kind: plex.KindSeason}

		locks, err := f.library.GetLockState(ctx, season)
		if err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			report.Results = append(report.Results, result)
			continue
		}
		if locks.PosterLocked && locks.BackgroundLocked {
			result.Status = StatusSkippedLocked
			report.Results = append(report.Results, result)
			continue
		}

		images, err := f.metadata.GetSeasonImages(ctx, showID, season.Index)
		if err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			report.Results = append(report.Results, result)
			continue
		}
		f.applyArtwork(ctx, season, locks, images.PosterRef, images.BackgroundRef, &result)
		report.Results = append(report.Results, result)
	}
}

package collections

import (
	"context"
	"errors"
	"testing"

	"plextoolkit/internal/match"
	"plextoolkit/internal/plex"
	"plextoolkit/internal/services"
	"plextoolkit/internal/tmdb"
)

type fakeLibrary struct {
	catalog    []plex.Item
	members    map[string][]plex.Item
	setCalls   int
	lastSet    []plex.Item
	setErr     error
	sectionErr error
	membersErr error
}

func (f *fakeLibrary) ListSection(_ context.Context, _ string) ([]plex.Item, error) {
	if f.sectionErr != nil {
		return nil, f.sectionErr
	}
	return f.catalog, nil
}

func (f *fakeLibrary) ListCollectionMembers(_ context.Context, _, collection string) ([]plex.Item, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	items, ok := f.members[collection]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "plex", "find collection", collection, nil)
	}
	return items, nil
}

func (f *fakeLibrary) SetCollectionMembers(_ context.Context, _, _ string, items []plex.Item) error {
	f.setCalls++
	f.lastSet = items
	return f.setErr
}

type fakeMetadata struct {
	parts        []tmdb.Candidate
	partsErr     error
	discovered   []tmdb.Candidate
	companyID    int64
	keywordID    int64
	searchedName string
	searchID     int64
	searchErr    error
}

func (f *fakeMetadata) CollectionParts(_ context.Context, _ int64) ([]tmdb.Candidate, error) {
	return f.parts, f.partsErr
}

func (f *fakeMetadata) SearchCompany(_ context.Context, name string) (int64, error) {
	f.searchedName = name
	return f.searchID, f.searchErr
}

func (f *fakeMetadata) DiscoverByCompany(_ context.Context, id int64) ([]tmdb.Candidate, error) {
	f.companyID = id
	return f.discovered, nil
}

func (f *fakeMetadata) DiscoverByKeyword(_ context.Context, id int64) ([]tmdb.Candidate, error) {
	f.keywordID = id
	return f.discovered, nil
}

type fakeLists struct {
	queries []match.Query
	err     error
}

func (f *fakeLists) FetchList(_ context.Context, _ string) ([]match.Query, error) {
	return f.queries, f.err
}

func movieItem(key, title string, year int) plex.Item {
	return plex.Item{RatingKey: key, Title: title, Year: year, Kind: plex.KindMovie}
}

func newTestBuilder(library *fakeLibrary, metadata MetadataClient, lists ListProvider) *Builder {
	resolver := NewSourceResolver(metadata, lists, nil)
	return NewBuilder(library, resolver, 0.85, nil)
}

func TestBuildAddsMatchedTitlesOnce(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{
			movieItem("101", "Jaws", 1975),
			movieItem("102", "Jaws 2", 1978),
			movieItem("103", "Deep Blue Sea", 1999),
		},
		members: map[string][]plex.Item{},
	}
	builder := newTestBuilder(library, nil, nil)

	report, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "Shark Movies",
		Source: Manual([]match.Query{
			{Title: "Jaws", Year: 1975},
			{Title: "Jaws", Year: 1975},
			{Title: "Deep Blue Sea", Year: 1999},
			{Title: "Open Water", Year: 2003},
		}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := report.Count(StatusAdded); got != 2 {
		t.Errorf("added = %d, want 2", got)
	}
	if got := report.Count(StatusAlreadyPresent); got != 1 {
		t.Errorf("already present = %d, want 1", got)
	}
	if got := report.Count(StatusUnmatched); got != 1 {
		t.Errorf("unmatched = %d, want 1", got)
	}
	if !report.Applied {
		t.Error("expected mutation to be applied")
	}
	if library.setCalls != 1 {
		t.Fatalf("SetCollectionMembers calls = %d, want 1", library.setCalls)
	}

	keys := memberKeys(library.lastSet)
	want := []string{"101", "103"}
	if len(keys) != len(want) {
		t.Fatalf("member keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("member keys = %v, want %v", keys, want)
			break
		}
	}
}

func TestBuildUnionsWithExistingMembers(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{movieItem("201", "The Iron Giant", 1999)},
		members: map[string][]plex.Item{
			"Favorites": {movieItem("999", "Heat", 1995)},
		},
	}
	builder := newTestBuilder(library, nil, nil)

	report, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "Favorites",
		Source:     Manual([]match.Query{{Title: "The Iron Giant"}}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !report.Applied {
		t.Fatal("expected mutation")
	}

	keys := memberKeys(library.lastSet)
	want := []string{"999", "201"}
	if len(keys) != 2 || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("member keys = %v, want existing members first: %v", keys, want)
	}
}

func TestBuildSkipsMutationWhenNothingNew(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{movieItem("101", "Jaws", 1975)},
		members: map[string][]plex.Item{
			"Shark Movies": {movieItem("101", "Jaws", 1975)},
		},
	}
	builder := newTestBuilder(library, nil, nil)

	report, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "Shark Movies",
		Source:     Manual([]match.Query{{Title: "Jaws", Year: 1975}}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Applied {
		t.Error("no mutation expected when every title is already a member")
	}
	if library.setCalls != 0 {
		t.Errorf("SetCollectionMembers calls = %d, want 0", library.setCalls)
	}
}

func TestBuildReportsAmbiguousTitles(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{
			movieItem("301", "King Kong", 1933),
			movieItem("302", "King Kong", 2005),
		},
		members: map[string][]plex.Item{},
	}
	builder := newTestBuilder(library, nil, nil)

	report, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "Monsters",
		Source:     Manual([]match.Query{{Title: "King Kong"}}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := report.Count(StatusAmbiguous); got != 1 {
		t.Fatalf("ambiguous = %d, want 1", got)
	}
	if report.Entries[0].Detail == "" {
		t.Error("ambiguous entry should list candidates")
	}
	if report.Applied {
		t.Error("ambiguous-only build must not mutate")
	}
}

func TestBuildSurfacesMutationFailure(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{movieItem("101", "Jaws", 1975)},
		members: map[string][]plex.Item{},
		setErr:  services.Wrap(services.ErrRemoteMutation, "plex", "update collection", "Shark Movies", nil),
	}
	builder := newTestBuilder(library, nil, nil)

	report, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "Shark Movies",
		Source:     Manual([]match.Query{{Title: "Jaws"}}),
	})
	if !errors.Is(err, services.ErrRemoteMutation) {
		t.Fatalf("expected ErrRemoteMutation, got %v", err)
	}
	if report == nil || report.Applied {
		t.Error("failed mutation must not be reported as applied")
	}
}

func TestBuildScrapedSourceFailureAbortsEarly(t *testing.T) {
	library := &fakeLibrary{catalog: []plex.Item{movieItem("101", "Jaws", 1975)}}
	lists := &fakeLists{err: services.Wrap(services.ErrNotFound, "scrape", "parse", "no film entries found in page", nil)}
	builder := newTestBuilder(library, nil, lists)

	_, err := builder.Build(context.Background(), Spec{
		Section:    "Movies",
		Collection: "A24",
		Source:     Scraped("A24"),
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if library.setCalls != 0 {
		t.Error("failed source must not reach the mutation")
	}
}

func TestBuildHonorsCancellation(t *testing.T) {
	library := &fakeLibrary{
		catalog: []plex.Item{movieItem("101", "Jaws", 1975)},
		members: map[string][]plex.Item{},
	}
	builder := newTestBuilder(library, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := builder.Build(ctx, Spec{
		Section:    "Movies",
		Collection: "Shark Movies",
		Source:     Manual([]match.Query{{Title: "Jaws"}}),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func memberKeys(items []plex.Item) []string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.RatingKey)
	}
	return keys
}

package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"plextoolkit/internal/services"
	"plextoolkit/internal/testsupport"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, "token", "test-client",
		WithRetryPolicy(services.RetryPolicy{Attempts: 1, Delay: time.Millisecond}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func sectionsHandler(mux *http.ServeMux) {
	mux.HandleFunc("/library/sections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Directory":[{"key":"1","title":"Movies","type":"movie"},{"key":"2","title":"Shows","type":"show"}]}}`))
	})
}

func TestNewFromConfigUsesConfiguredServer(t *testing.T) {
	var gotToken string
	mux := http.NewServeMux()
	sectionsHandler(mux)
	mux.HandleFunc("/library/sections/1/all", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Plex-Token")
		w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"10","title":"Jaws","type":"movie"}]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithPlexServer(server.URL))
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	items, err := client.ListSection(context.Background(), "Movies")
	if err != nil {
		t.Fatalf("ListSection() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if gotToken != "test-token" {
		t.Errorf("X-Plex-Token = %q, want the configured token", gotToken)
	}
}

func TestListSectionParsesItemsAndLocks(t *testing.T) {
	mux := http.NewServeMux()
	sectionsHandler(mux)
	mux.HandleFunc("/library/sections/1/all", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Plex-Token"); got != "token" {
			t.Errorf("X-Plex-Token = %q, want token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Write([]byte(`{"MediaContainer":{"Metadata":[
			{"ratingKey":"10","title":"Jaws","year":1975,"type":"movie",
			 "Field":[{"locked":true,"name":"thumb"}]},
			{"ratingKey":"11","title":"Jaws 2","year":1978,"type":"movie"}
		]}}`))
	})

	client := newTestClient(t, mux)
	items, err := client.ListSection(context.Background(), "Movies")
	if err != nil {
		t.Fatalf("ListSection() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if !items[0].PosterLocked || items[0].BackgroundLocked {
		t.Errorf("lock flags = %+v, want poster locked only", items[0])
	}
	if items[1].Kind != KindMovie || items[1].Year != 1978 {
		t.Errorf("item = %+v", items[1])
	}
}

func TestListSectionUnknownSection(t *testing.T) {
	mux := http.NewServeMux()
	sectionsHandler(mux)
	client := newTestClient(t, mux)

	_, err := client.ListSection(context.Background(), "Music")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSetCollectionMembersCreatesWhenMissing(t *testing.T) {
	var created url.Values
	mux := http.NewServeMux()
	sectionsHandler(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"machineIdentifier":"machine-1"}}`))
	})
	mux.HandleFunc("/library/sections/1/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Metadata":[]}}`))
	})
	mux.HandleFunc("/library/collections", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		created = r.URL.Query()
		w.WriteHeader(http.StatusCreated)
	})

	client := newTestClient(t, mux)
	items := []Item{{RatingKey: "10", Title: "Jaws"}, {RatingKey: "11", Title: "Jaws 2"}}
	if err := client.SetCollectionMembers(context.Background(), "Movies", "Shark Movies", items); err != nil {
		t.Fatalf("SetCollectionMembers() error = %v", err)
	}
	if created == nil {
		t.Fatal("create endpoint never called")
	}
	if got := created.Get("title"); got != "Shark Movies" {
		t.Errorf("title = %q", got)
	}
	if got := created.Get("uri"); got != "server://machine-1/com.plexapp.plugins.library/library/metadata/10,11" {
		t.Errorf("uri = %q", got)
	}
	if got := created.Get("smart"); got != "0" {
		t.Errorf("smart = %q, want 0", got)
	}
}

func TestSetCollectionMembersUpdatesExisting(t *testing.T) {
	var updated url.Values
	mux := http.NewServeMux()
	sectionsHandler(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"machineIdentifier":"machine-1"}}`))
	})
	mux.HandleFunc("/library/sections/1/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"77","title":"Shark Movies"}]}}`))
	})
	mux.HandleFunc("/library/collections/77/items", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		updated = r.URL.Query()
	})

	client := newTestClient(t, mux)
	items := []Item{{RatingKey: "10"}}
	if err := client.SetCollectionMembers(context.Background(), "Movies", "shark movies", items); err != nil {
		t.Fatalf("SetCollectionMembers() error = %v", err)
	}
	if updated == nil {
		t.Fatal("update endpoint never called")
	}
	if got := updated.Get("uri"); got != "server://machine-1/com.plexapp.plugins.library/library/metadata/10" {
		t.Errorf("uri = %q", got)
	}
}

func TestSetCollectionMembersMutationFailure(t *testing.T) {
	mux := http.NewServeMux()
	sectionsHandler(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"machineIdentifier":"machine-1"}}`))
	})
	mux.HandleFunc("/library/sections/1/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Metadata":[{"ratingKey":"77","title":"Shark Movies"}]}}`))
	})
	mux.HandleFunc("/library/collections/77/items", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	client := newTestClient(t, mux)
	err := client.SetCollectionMembers(context.Background(), "Movies", "Shark Movies", []Item{{RatingKey: "10"}})
	if !errors.Is(err, services.ErrRemoteMutation) {
		t.Fatalf("error = %v, want ErrRemoteMutation", err)
	}
}

func TestGetLockState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/library/metadata/10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Metadata":[
			{"ratingKey":"10","title":"Jaws",
			 "Field":[{"locked":"1","name":"art"},{"locked":false,"name":"thumb"}]}
		]}}`))
	})

	client := newTestClient(t, mux)
	state, err := client.GetLockState(context.Background(), Item{RatingKey: "10", Title: "Jaws"})
	if err != nil {
		t.Fatalf("GetLockState() error = %v", err)
	}
	if state.PosterLocked || !state.BackgroundLocked {
		t.Errorf("state = %+v, want background locked only", state)
	}
}

func TestListSeasonsFiltersKind(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/library/metadata/20/children", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{"Metadata":[
			{"ratingKey":"21","title":"Season 1","type":"season","index":1,"parentRatingKey":"20"},
			{"ratingKey":"22","title":"Season 2","type":"season","index":2,"parentRatingKey":"20"},
			{"ratingKey":"99","title":"Extras","type":"clip"}
		]}}`))
	})

	client := newTestClient(t, mux)
	seasons, err := client.ListSeasons(context.Background(), Item{RatingKey: "20", Title: "The Wire", Kind: KindShow})
	if err != nil {
		t.Fatalf("ListSeasons() error = %v", err)
	}
	if len(seasons) != 2 {
		t.Fatalf("seasons = %d, want 2", len(seasons))
	}
	if seasons[1].Index != 2 {
		t.Errorf("season index = %d, want 2", seasons[1].Index)
	}
}

func TestSetPosterTargetsPostersEndpoint(t *testing.T) {
	var gotPath, gotRef string
	mux := http.NewServeMux()
	mux.HandleFunc("/library/metadata/10/posters", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRef = r.URL.Query().Get("url")
	})

	client := newTestClient(t, mux)
	err := client.SetPoster(context.Background(), Item{RatingKey: "10"}, "https://image.tmdb.org/t/p/original/jaws.jpg")
	if err != nil {
		t.Fatalf("SetPoster() error = %v", err)
	}
	if gotPath != "/library/metadata/10/posters" {
		t.Errorf("path = %q", gotPath)
	}
	if gotRef != "https://image.tmdb.org/t/p/original/jaws.jpg" {
		t.Errorf("url = %q", gotRef)
	}
}

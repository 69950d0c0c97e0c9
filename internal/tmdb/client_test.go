package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plextoolkit/internal/services"
	"plextoolkit/internal/testsupport"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := New("key", server.URL, "https://image.tmdb.org/t/p/original", "en-US",
		WithRetryPolicy(services.RetryPolicy{Attempts: 1, Delay: time.Millisecond}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "https://api.themoviedb.org/3", "", "")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestNewFromConfigMissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutTMDB())
	_, err := NewFromConfig(cfg)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestNewFromConfigUsesConfiguredKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey("configured-key"))
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if client.apiKey != "configured-key" {
		t.Errorf("api key = %q, want configured-key", client.apiKey)
	}
}

func TestSearchMoviesBuildsCandidates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("query"); got != "Jaws" {
			t.Errorf("query = %q", got)
		}
		if got := q.Get("primary_release_year"); got != "1975" {
			t.Errorf("primary_release_year = %q", got)
		}
		if got := q.Get("api_key"); got != "key" {
			t.Errorf("api_key = %q", got)
		}
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[
			{"id":578,"title":"Jaws","release_date":"1975-06-20",
			 "poster_path":"/jaws-poster.jpg","backdrop_path":"/jaws-backdrop.jpg"},
			{"id":579,"title":"","release_date":"1975-01-01"}
		]}`))
	})

	client := newTestClient(t, mux)
	candidates, err := client.SearchMovies(context.Background(), "Jaws", 1975)
	if err != nil {
		t.Fatalf("SearchMovies() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1 (untitled result skipped)", len(candidates))
	}
	got := candidates[0]
	if got.ID != 578 || got.Year != 1975 {
		t.Errorf("candidate = %+v", got)
	}
	if got.PosterRef != "https://image.tmdb.org/t/p/original/jaws-poster.jpg" {
		t.Errorf("poster ref = %q", got.PosterRef)
	}
	if got.BackgroundRef != "https://image.tmdb.org/t/p/original/jaws-backdrop.jpg" {
		t.Errorf("background ref = %q", got.BackgroundRef)
	}
}

func TestSearchMoviesBlankTitle(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	_, err := client.SearchMovies(context.Background(), "  ", 0)
	if !errors.Is(err, services.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestDiscoverByCompanyPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("with_companies"); got != "41077" {
			t.Errorf("with_companies = %q", got)
		}
		page := q.Get("page")
		fmt.Fprintf(w, `{"page":%s,"total_pages":2,"results":[
			{"id":%s00,"title":"Film %s","release_date":"2020-01-01"}
		]}`, page, page, page)
	})

	client := newTestClient(t, mux)
	candidates, err := client.DiscoverByCompany(context.Background(), 41077)
	if err != nil {
		t.Fatalf("DiscoverByCompany() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want one per page", len(candidates))
	}
	if candidates[0].Title != "Film 1" || candidates[1].Title != "Film 2" {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestCollectionParts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/collection/645", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":645,"name":"James Bond Collection","parts":[
			{"id":646,"title":"Dr. No","release_date":"1962-10-04"},
			{"id":657,"title":"From Russia with Love","release_date":"1963-10-10"}
		]}`))
	})

	client := newTestClient(t, mux)
	parts, err := client.CollectionParts(context.Background(), 645)
	if err != nil {
		t.Fatalf("CollectionParts() error = %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[0].Title != "Dr. No" || parts[0].Year != 1962 {
		t.Errorf("first part = %+v", parts[0])
	}
}

func TestGetSeasonImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tv/1438/season/2/images", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"posters":[{"file_path":"/s2-poster.jpg"}],"backdrops":[]}`))
	})

	client := newTestClient(t, mux)
	images, err := client.GetSeasonImages(context.Background(), 1438, 2)
	if err != nil {
		t.Fatalf("GetSeasonImages() error = %v", err)
	}
	if images.PosterRef != "https://image.tmdb.org/t/p/original/s2-poster.jpg" {
		t.Errorf("poster ref = %q", images.PosterRef)
	}
	if images.BackgroundRef != "" {
		t.Errorf("background ref = %q, want empty", images.BackgroundRef)
	}
}

func TestAuthFailureSurfacesUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)
	_, err := client.SearchMovies(context.Background(), "Jaws", 0)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

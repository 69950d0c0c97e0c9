package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransient, "plex", "list section", "Movies", cause)

	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "plex: list section: Movies") {
		t.Errorf("detail missing from %q", got)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "tmdb", "search", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should fall back to transient, got %v", err)
	}
}

func TestHTTPStatusErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		target error
		want   bool
	}{
		{"404 is not found", 404, ErrNotFound, true},
		{"401 is unavailable", 401, ErrUnavailable, true},
		{"403 is unavailable", 403, ErrUnavailable, true},
		{"503 is transient", 503, ErrTransient, true},
		{"400 is not transient", 400, ErrTransient, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &HTTPStatusError{Service: "plex", Method: "GET", Path: "/x", Code: tt.code}
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%d, %v) = %v, want %v", tt.code, tt.target, got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"client error", &HTTPStatusError{Code: 404}, false},
		{"server error", &HTTPStatusError{Code: 502}, true},
		{"invalid query", ErrInvalidQuery, false},
		{"unavailable", ErrUnavailable, false},
		{"plain network error", errors.New("dial tcp: timeout"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

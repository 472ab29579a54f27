package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New("test-token", Options{BaseURL: server.URL, Language: "en-US"}, discardLogger())
}

func TestSearchMovies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "batman" {
			t.Errorf("unexpected query: %s", q.Get("query"))
		}
		if q.Get("page") != "2" {
			t.Errorf("unexpected page: %s", q.Get("page"))
		}
		if q.Get("language") != "en-US" {
			t.Errorf("unexpected language: %s", q.Get("language"))
		}
		if q.Get("include_adult") != "false" {
			t.Errorf("unexpected include_adult: %s", q.Get("include_adult"))
		}
		if q.Get("api_key") != "" {
			t.Error("api_key must not be sent with bearer auth")
		}

		resp := SearchPage{
			Page: 2,
			Results: []Movie{
				{ID: 268, Title: "Batman", VoteAverage: 7.2, ReleaseDate: "1989-06-21", PosterPath: "/b.jpg"},
				{ID: 364, Title: "Batman Returns", VoteAverage: 6.9, ReleaseDate: "1992-06-19"},
			},
			TotalPages:   3,
			TotalResults: 52,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))

	page, err := client.SearchMovies(context.Background(), "batman", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 2 || page.TotalPages != 3 || page.TotalResults != 52 {
		t.Errorf("unexpected metadata: %+v", page)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(page.Results))
	}
	if page.Results[0].Title != "Batman" || page.Results[1].Title != "Batman Returns" {
		t.Errorf("results out of order: %+v", page.Results)
	}
	if page.Results[0].PosterPath != "/b.jpg" {
		t.Errorf("poster path = %q", page.Results[0].PosterPath)
	}
}

func TestSearchMovies_ClampsPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			t.Errorf("expected page=1, got %s", r.URL.Query().Get("page"))
		}
		json.NewEncoder(w).Encode(SearchPage{Page: 1})
	}))

	page, err := client.SearchMovies(context.Background(), "x", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Results == nil {
		t.Error("Results should be non-nil for an empty page")
	}
}

func TestGetMovie(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(MovieDetails{
			ID:      550,
			Title:   "Fight Club",
			Runtime: 139,
			Genres:  []Genre{{ID: 18, Name: "Drama"}},
		})
	}))

	details, err := client.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Title != "Fight Club" {
		t.Errorf("expected Fight Club, got %s", details.Title)
	}
	if details.Runtime != 139 {
		t.Errorf("expected runtime 139, got %d", details.Runtime)
	}
}

func TestUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`))
	}))

	_, err := client.SearchMovies(context.Background(), "test", 1)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if upErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", upErr.StatusCode)
	}
	if upErr.Message != "Invalid API key: You must be granted a valid key." {
		t.Errorf("message = %q", upErr.Message)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("upstream error should match ErrUnavailable")
	}
}

func TestUpstreamError_PlainBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not here\n"))
	}))

	_, err := client.GetMovie(context.Background(), 1)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if upErr.Message != "not here" {
		t.Errorf("message = %q", upErr.Message)
	}
}

func TestMalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json"))
	}))

	_, err := client.SearchMovies(context.Background(), "x", 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := New("t", Options{BaseURL: baseURL}, discardLogger())
	_, err := client.SearchMovies(context.Background(), "x", 1)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T (%v)", err, err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("network error should match ErrUnavailable")
	}
}

func TestPosterURL(t *testing.T) {
	tests := []struct {
		path   string
		size   string
		expect string
	}{
		{"/abc123.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc123.jpg"},
		{"", "w500", ""},
		{"/poster.jpg", "original", "https://image.tmdb.org/t/p/original/poster.jpg"},
	}
	for _, tt := range tests {
		got := PosterURL(tt.path, tt.size)
		if got != tt.expect {
			t.Errorf("PosterURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.expect)
		}
	}
}

func TestMovieYear(t *testing.T) {
	if got := (Movie{ReleaseDate: "2010-07-16"}).Year(); got != "2010" {
		t.Errorf("Year() = %q, want 2010", got)
	}
	if got := (Movie{}).Year(); got != "" {
		t.Errorf("Year() = %q, want empty", got)
	}
}

func TestNavigablePages(t *testing.T) {
	tests := []struct {
		page *SearchPage
		want int
	}{
		{nil, 0},
		{&SearchPage{TotalPages: 3}, 3},
		{&SearchPage{TotalPages: 1200}, MaxPages},
	}
	for _, tt := range tests {
		if got := tt.page.NavigablePages(); got != tt.want {
			t.Errorf("NavigablePages() = %d, want %d", got, tt.want)
		}
	}
}

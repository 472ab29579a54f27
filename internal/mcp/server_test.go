package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

// mockSearcher implements core.MovieSearcher for testing.
type mockSearcher struct {
	page       *tmdb.SearchPage
	searchErr  error
	details    *tmdb.MovieDetails
	detailsErr error

	gotQuery string
	gotPage  int
	gotID    int
}

func (m *mockSearcher) Search(_ context.Context, query string, page int) (*tmdb.SearchPage, error) {
	m.gotQuery, m.gotPage = query, page
	return m.page, m.searchErr
}

func (m *mockSearcher) Details(_ context.Context, id int) (*tmdb.MovieDetails, error) {
	m.gotID = id
	return m.details, m.detailsErr
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	_, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}
	return result
}

func resultText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestSearchMovies(t *testing.T) {
	t.Parallel()
	searcher := &mockSearcher{page: &tmdb.SearchPage{
		Page:         2,
		TotalPages:   3,
		TotalResults: 41,
		Results: []tmdb.Movie{
			{ID: 268, Title: "Batman", PosterPath: "/b.jpg"},
			{ID: 364, Title: "Batman Returns"},
		},
	}}
	srv := NewServer(searcher, "test", discardLogger)

	result := callTool(t, srv, "search_movies", map[string]any{"query": "  batman ", "page": 2})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}
	if searcher.gotQuery != "batman" || searcher.gotPage != 2 {
		t.Errorf("searched %q page %d", searcher.gotQuery, searcher.gotPage)
	}

	var got searchResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got.Page != 2 || got.TotalPages != 3 || got.TotalResults != 41 {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if len(got.Results) != 2 || got.Results[0].Title != "Batman" {
		t.Fatalf("unexpected results: %+v", got.Results)
	}
	if got.Results[0].PosterURL != "https://image.tmdb.org/t/p/w500/b.jpg" {
		t.Errorf("poster url = %q", got.Results[0].PosterURL)
	}
	if got.Results[1].PosterURL != "" {
		t.Errorf("missing poster should be omitted, got %q", got.Results[1].PosterURL)
	}
	if got.Notice != "" {
		t.Errorf("unexpected notice %q", got.Notice)
	}
}

func TestSearchMovies_DefaultPage(t *testing.T) {
	t.Parallel()
	searcher := &mockSearcher{page: tmdb.EmptyPage()}
	srv := NewServer(searcher, "test", discardLogger)

	callTool(t, srv, "search_movies", map[string]any{"query": "heat"})
	if searcher.gotPage != 1 {
		t.Errorf("page = %d, want 1", searcher.gotPage)
	}
}

func TestSearchMovies_EmptyResultNotice(t *testing.T) {
	t.Parallel()
	srv := NewServer(&mockSearcher{page: tmdb.EmptyPage()}, "test", discardLogger)

	result := callTool(t, srv, "search_movies", map[string]any{"query": "qwxz"})
	if result.IsError {
		t.Fatal("empty result must not be an error")
	}
	var got searchResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(got.Notice, "No movies found") {
		t.Errorf("notice = %q", got.Notice)
	}
}

func TestSearchMovies_EmptyQuery(t *testing.T) {
	t.Parallel()
	searcher := &mockSearcher{}
	srv := NewServer(searcher, "test", discardLogger)

	result := callTool(t, srv, "search_movies", map[string]any{"query": "   "})
	if !result.IsError {
		t.Fatal("expected error for empty query")
	}
	if searcher.gotQuery != "" {
		t.Error("searcher must not be called for an empty query")
	}
}

func TestSearchMovies_UpstreamError(t *testing.T) {
	t.Parallel()
	searcher := &mockSearcher{searchErr: &tmdb.UpstreamError{Op: "search movies", StatusCode: 401, Message: "Invalid API key"}}
	srv := NewServer(searcher, "test", discardLogger)

	result := callTool(t, srv, "search_movies", map[string]any{"query": "batman"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "HTTP 401") || !strings.Contains(text, "Invalid API key") {
		t.Errorf("error text = %q", text)
	}
}

func TestGetMovieDetails(t *testing.T) {
	t.Parallel()
	searcher := &mockSearcher{details: &tmdb.MovieDetails{ID: 550, Title: "Fight Club", Runtime: 139}}
	srv := NewServer(searcher, "test", discardLogger)

	result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": 550})
	if result.IsError {
		t.Fatalf("expected success: %s", resultText(t, result))
	}
	if searcher.gotID != 550 {
		t.Errorf("id = %d", searcher.gotID)
	}
	var got tmdb.MovieDetails
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != "Fight Club" || got.Runtime != 139 {
		t.Errorf("details = %+v", got)
	}
}

func TestGetMovieDetails_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		srv := NewServer(&mockSearcher{}, "test", discardLogger)
		result := callTool(t, srv, "get_movie_details", map[string]any{})
		if !result.IsError {
			t.Error("expected error for missing tmdb_id")
		}
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()
		searcher := &mockSearcher{detailsErr: &tmdb.NetworkError{Op: "get movie 1", Err: errors.New("connection refused")}}
		srv := NewServer(searcher, "test", discardLogger)
		result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": "1"})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		if !strings.Contains(resultText(t, result), "connection refused") {
			t.Errorf("error text = %q", resultText(t, result))
		}
	})
}

func TestExtractIntFromArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{`{"tmdb_id": 42}`, 42, false},
		{`{"tmdb_id": "42"}`, 42, false},
		{`{"tmdb_id": "x"}`, 0, true},
		{`{"tmdb_id": true}`, 0, true},
		{`{}`, 0, true},
		{`not json`, 0, true},
	}
	for _, tt := range tests {
		got, err := extractIntFromArgs(json.RawMessage(tt.raw), "tmdb_id")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("extractIntFromArgs(%s) = %d, %v", tt.raw, got, err)
		}
	}
}

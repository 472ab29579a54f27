package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/moviefinder/internal/core"
	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

// Server wraps an MCP SDK server with MovieFinder tool handlers.
type Server struct {
	server   *mcpsdk.Server
	searcher core.MovieSearcher
	logger   *slog.Logger
}

// NewServer creates an MCP server with the search tools registered.
func NewServer(searcher core.MovieSearcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "moviefinder",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, searcher: searcher, logger: logger}
	srv.server.AddTool(searchMoviesTool(), srv.handleSearchMovies)
	srv.server.AddTool(getMovieDetailsTool(), srv.handleGetMovieDetails)
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func searchMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "search_movies",
		Description: "Search TMDb for movies by free text. Returns one page of results " +
			"(id, title, overview, release date, rating, poster) with page, total_pages and total_results.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The text to search for",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "1-based result page, defaults to 1",
					"minimum":     1,
				},
			},
			"required": []any{"query"},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get detailed information about a movie by its TMDb ID: runtime, genres, tagline, IMDb ID.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tmdb_id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the movie",
				},
			},
			"required": []any{"tmdb_id"},
		},
	}
}

// searchResult is the search_movies payload.
type searchResult struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []movieEntry `json:"results"`
	Notice       string       `json:"notice,omitempty"`
}

type movieEntry struct {
	tmdb.Movie
	PosterURL string `json:"poster_url,omitempty"`
}

func (s *Server) handleSearchMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
		Page  int    `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	query, err := search.NormalizeQuery(args.Query)
	if err != nil {
		return toolError(search.EmptyQueryMessage), nil
	}
	page := max(args.Page, 1)

	res, err := s.searcher.Search(ctx, query, page)
	if err != nil {
		s.logger.Warn("mcp search failed", slog.String("query", query), slog.String("error", err.Error()))
		return toolError(describeError("search failed", err)), nil
	}

	out := searchResult{
		Page:         res.Page,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResults,
		Results:      make([]movieEntry, 0, len(res.Results)),
	}
	for _, m := range res.Results {
		out.Results = append(out.Results, movieEntry{Movie: m, PosterURL: tmdb.PosterURL(m.PosterPath, "w500")})
	}
	if len(out.Results) == 0 {
		out.Notice = search.NoResultsMessage
	}
	return toolJSON(out)
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	details, err := s.searcher.Details(ctx, tmdbID)
	if err != nil {
		return toolError(describeError("get movie details failed", err)), nil
	}
	return toolJSON(details)
}

// describeError renders upstream failures with their HTTP status when known.
func describeError(prefix string, err error) string {
	var upErr *tmdb.UpstreamError
	if errors.As(err, &upErr) {
		return fmt.Sprintf("%s: TMDb returned HTTP %d: %s", prefix, upErr.StatusCode, upErr.Message)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vadimtrunov/moviefinder/internal/httpclient"
)

const (
	// DefaultBaseURL is the TMDb API v3 root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/"

	maxErrorBody = 4 << 10
)

// Options configures a Client. Zero values select TMDb defaults.
type Options struct {
	BaseURL      string
	Language     string
	IncludeAdult bool
	HTTP         httpclient.Config
}

// Client is a TMDb API v3 client authenticated with a bearer read access token.
type Client struct {
	baseURL      string
	token        string
	language     string
	includeAdult bool
	http         *httpclient.Client
	logger       *slog.Logger
}

// New creates a new TMDb client.
func New(token string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTP.Timeout == 0 {
		opts.HTTP = httpclient.DefaultConfig()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		token:        token,
		language:     opts.Language,
		includeAdult: opts.IncludeAdult,
		http:         httpclient.New(opts.HTTP, logger),
		logger:       logger,
	}
}

// SearchMovies returns one page of movies matching query. Pages are 1-based;
// values below 1 are sent as 1.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"query":         {query},
		"page":          {strconv.Itoa(page)},
		"include_adult": {strconv.FormatBool(c.includeAdult)},
	}

	var resp SearchPage
	if err := c.get(ctx, "search movies", "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}

	c.logger.Debug("tmdb search",
		slog.String("query", query),
		slog.Int("page", resp.Page),
		slog.Int("total_pages", resp.TotalPages),
		slog.Int("total_results", resp.TotalResults),
	)
	return &resp, nil
}

// GetMovie retrieves full details for a movie by TMDb ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	op := fmt.Sprintf("get movie %d", id)
	if err := c.get(ctx, op, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// PosterURL returns the full URL for a poster path.
func PosterURL(posterPath, size string) string {
	if posterPath == "" {
		return ""
	}
	return imageBaseURL + size + posterPath
}

// get performs an authenticated GET request and decodes the JSON response.
// Failures are returned as *NetworkError or *UpstreamError.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", op, err)
	}

	q := u.Query()
	if c.language != "" {
		q.Set("language", c.language)
	}
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.StatusMessage != "" {
		return envelope.StatusMessage
	}
	return strings.TrimSpace(string(body))
}

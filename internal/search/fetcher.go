package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

// MovieAPI is the upstream the Fetcher reads from. *tmdb.Client implements it.
type MovieAPI interface {
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
}

// CacheOptions bounds the Fetcher's result cache. A zero TTL disables caching.
type CacheOptions struct {
	TTL        time.Duration
	MaxEntries int
}

// DefaultCacheOptions returns a 15 minute, 256 entry cache.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{TTL: 15 * time.Minute, MaxEntries: 256}
}

// Fetcher performs searches keyed by (query, page). Results are cached and
// concurrent requests for the same key share one upstream call.
// Returned pages are shared with the cache and must be treated as read-only.
type Fetcher struct {
	api     MovieAPI
	pages   *cache[*tmdb.SearchPage]
	details *cache[*tmdb.MovieDetails]
	group   singleflight.Group
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher over api.
func NewFetcher(api MovieAPI, opts CacheOptions, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		api:     api,
		pages:   newCache[*tmdb.SearchPage](opts.TTL, opts.MaxEntries),
		details: newCache[*tmdb.MovieDetails](opts.TTL, opts.MaxEntries),
		logger:  logger,
	}
}

func pageKey(query string, page int) string {
	return strconv.Itoa(page) + ":" + query
}

// Cached returns a previously fetched page without touching the network.
func (f *Fetcher) Cached(query string, page int) (*tmdb.SearchPage, bool) {
	return f.pages.Get(pageKey(query, page))
}

// Search returns the given 1-based page of results for query. An empty query
// is a disabled search: it yields an empty page and no upstream call.
func (f *Fetcher) Search(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
	if query == "" {
		return tmdb.EmptyPage(), nil
	}
	if page < 1 {
		page = 1
	}

	key := pageKey(query, page)
	if cached, ok := f.pages.Get(key); ok {
		f.logger.Debug("search cache hit", slog.String("query", query), slog.Int("page", page))
		return cached, nil
	}

	v, err, shared := f.group.Do(key, func() (any, error) {
		res, err := f.api.SearchMovies(ctx, query, page)
		if err != nil {
			return nil, err
		}
		f.pages.Set(key, res)
		return res, nil
	})
	if err != nil {
		f.logger.Warn("search failed",
			slog.String("query", query),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("search %q page %d: %w", query, page, err)
	}
	if shared {
		f.logger.Debug("search request shared", slog.String("query", query), slog.Int("page", page))
	}
	return v.(*tmdb.SearchPage), nil
}

// Details returns full details for a movie, cached by ID.
func (f *Fetcher) Details(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	key := "movie:" + strconv.Itoa(id)
	if cached, ok := f.details.Get(key); ok {
		return cached, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		d, err := f.api.GetMovie(ctx, id)
		if err != nil {
			return nil, err
		}
		f.details.Set(key, d)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("movie details %d: %w", id, err)
	}
	return v.(*tmdb.MovieDetails), nil
}

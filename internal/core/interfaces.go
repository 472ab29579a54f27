package core

import (
	"context"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

// MovieSearcher defines paged movie search with optional detail lookup.
// *search.Fetcher is the production implementation.
type MovieSearcher interface {
	// Search returns one 1-based page of results. An empty query yields an empty page.
	Search(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)

	// Details returns extended information about a movie
	Details(ctx context.Context, id int) (*tmdb.MovieDetails, error)
}

// Frontend defines the interface for long-running user-facing frontends (Telegram)
type Frontend interface {
	// Start runs the frontend until ctx is canceled
	Start(ctx context.Context) error

	// Name returns the frontend name (e.g., "telegram")
	Name() string
}

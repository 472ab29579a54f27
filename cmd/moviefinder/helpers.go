package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/moviefinder/internal/config"
	"github.com/vadimtrunov/moviefinder/internal/httpclient"
	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleAccent  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// newFetcher builds the TMDb client and wraps it in a caching fetcher.
func newFetcher(cfg *config.Config, logger *slog.Logger) *search.Fetcher {
	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.HTTP.Timeout
	hc.MaxAttempts = cfg.HTTP.MaxAttempts
	hc.UserAgent = "moviefinder/" + version

	client := tmdb.New(cfg.TMDb.Token, tmdb.Options{
		BaseURL:      cfg.TMDb.BaseURL,
		Language:     cfg.TMDb.Language,
		IncludeAdult: cfg.TMDb.IncludeAdult,
		HTTP:         hc,
	}, logger)
	logger.Info("TMDb client initialized",
		slog.String("url", sanitizeURL(cfg.TMDb.BaseURL)),
		slog.Int("max_attempts", hc.MaxAttempts),
	)

	return search.NewFetcher(client, search.CacheOptions{
		TTL:        cfg.Cache.ResultTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	}, logger)
}

// describeFetchError renders a fetch failure for terminal output.
func describeFetchError(err error) string {
	var upErr *tmdb.UpstreamError
	var netErr *tmdb.NetworkError
	switch {
	case errors.As(err, &upErr):
		return fmt.Sprintf("TMDb returned HTTP %d: %s", upErr.StatusCode, upErr.Message)
	case errors.As(err, &netErr):
		return fmt.Sprintf("could not reach TMDb: %v", netErr.Err)
	default:
		return err.Error()
	}
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

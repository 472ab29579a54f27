package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// Config holds attempt and timeout configuration.
type Config struct {
	// MaxAttempts is the total number of tries per request. Values below 1 are treated as 1.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
	UserAgent   string
}

// DefaultConfig returns a single-attempt configuration with a 30s timeout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 1,
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
		Timeout:     30 * time.Second,
		UserAgent:   "moviefinder",
	}
}

// Client wraps http.Client with optional retry on transient failures.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client around an existing http.Client.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{
		http:   httpClient,
		config: cfg,
		logger: logger,
	}
}

// Do executes a GET or HEAD request. Transient statuses (429, 502, 503, 504)
// and network errors are retried while attempts remain. The response of the
// final attempt is always returned to the caller, whatever its status, so
// that status handling stays with the API client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	var lastResp *http.Response
	for attempt := range c.config.MaxAttempts {
		if attempt > 0 {
			if err := c.waitBeforeRetry(req.Context(), attempt, lastResp, req.URL.Path); err != nil {
				return nil, err
			}
		}
		final := attempt == c.config.MaxAttempts-1

		resp, err := c.http.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			if final || !retryableMethod(req.Method) {
				return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
			}
			c.logger.Debug("request failed, will retry",
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()),
			)
			lastResp = nil
			continue
		}

		if final || !shouldRetry(resp.StatusCode, req.Method) {
			return resp, nil
		}
		lastResp = resp
		_ = resp.Body.Close()
	}
	// unreachable: the final attempt always returns
	return nil, fmt.Errorf("%s %s: no attempts made", req.Method, req.URL.Path)
}

func (c *Client) waitBeforeRetry(ctx context.Context, attempt int, lastResp *http.Response, path string) error {
	delay := c.backoff(attempt)
	if d := retryAfterDelay(lastResp); d > delay {
		delay = d
	}
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	c.logger.Debug("retrying request",
		slog.Int("attempt", attempt+1),
		slog.String("delay", delay.String()),
		slog.String("path", path),
	)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryAfterDelay(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	seconds, err := strconv.Atoi(ra)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func retryableMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// shouldRetry reports whether a status is transient for a read-only request.
func shouldRetry(statusCode int, method string) bool {
	if !retryableMethod(method) {
		return false
	}
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff calculates the delay for a given attempt with jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.config.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.config.MaxDelay) {
		delay = float64(c.config.MaxDelay)
	}
	jitter := delay * 0.2 * rand.Float64() // #nosec G404
	return time.Duration(delay + jitter)
}

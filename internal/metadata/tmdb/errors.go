package tmdb

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every failure to obtain a response from TMDb,
// whether the service was unreachable or answered with a non-success status.
var ErrUnavailable = errors.New("tmdb unavailable")

// NetworkError reports that TMDb could not be reached.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnavailable) match.
func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// UpstreamError reports a non-success HTTP status from TMDb.
type UpstreamError struct {
	Op         string
	StatusCode int
	// Message is TMDb's status_message, or the raw body when it is not JSON.
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: tmdb API error %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: tmdb API error %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnavailable) match.
func (e *UpstreamError) Is(target error) bool { return target == ErrUnavailable }

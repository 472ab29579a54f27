// Package search holds the search, pagination and selection model shared by
// every MovieFinder frontend.
package search

import (
	"errors"
	"strings"
)

// User-facing notice texts.
const (
	EmptyQueryMessage = "Please enter your search query."
	NoResultsMessage  = "No movies found for your request."
)

// ErrEmptyQuery is returned when a submitted query is empty after trimming.
var ErrEmptyQuery = errors.New("query must not be empty")

// NormalizeQuery trims raw input and rejects an empty result.
func NormalizeQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

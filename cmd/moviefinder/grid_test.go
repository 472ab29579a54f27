package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

func TestGridColumns(t *testing.T) {
	tests := []struct {
		width, want int
	}{
		{0, 1},
		{20, 1},
		{cardWidth, 1},
		{2*cardWidth + cardSpacing, 2},
		{100, 3},
	}
	for _, tt := range tests {
		if got := gridColumns(tt.width); got != tt.want {
			t.Errorf("gridColumns(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		name                  string
		cursor, dRow, dCol, n int
		want                  int
	}{
		{"right", 0, 0, 1, 5, 1},
		{"right at end stays", 4, 0, 1, 5, 4},
		{"left at start stays", 0, 0, -1, 5, 0},
		{"down one row", 1, 1, 0, 5, 4},
		{"down past end stays", 2, 1, 0, 5, 2},
		{"up one row", 3, -1, 0, 5, 0},
		{"empty grid", 0, 0, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moveCursor(tt.cursor, tt.dRow, tt.dCol, 3, tt.n); got != tt.want {
				t.Errorf("moveCursor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderCard(t *testing.T) {
	card := renderCard(tmdb.Movie{
		Title:       "Dr. Strangelove or: How I Learned to Stop Worrying and Love the Bomb",
		ReleaseDate: "1964-01-29",
		VoteAverage: 8.1,
		Overview:    strings.Repeat("word ", 40),
	}, false)

	if w := lipgloss.Width(card); w != cardWidth {
		t.Errorf("card width = %d, want %d", w, cardWidth)
	}
	if h := lipgloss.Height(card); h != cardHeight {
		t.Errorf("card height = %d, want %d", h, cardHeight)
	}
	if !strings.Contains(card, "1964") || !strings.Contains(card, "8.1") || !strings.Contains(card, "…") {
		t.Errorf("card content:\n%s", card)
	}
}

func TestRenderGrid_ScrollsToCursor(t *testing.T) {
	items := make([]tmdb.Movie, 9)
	for i := range items {
		items[i] = tmdb.Movie{ID: i, Title: "Movie " + string(rune('A'+i))}
	}

	// One column, room for two rows: cursor on the last item shows H and I.
	got := renderGrid(items, 8, cardWidth, 2*cardHeight)
	if !strings.Contains(got, "Movie I") || !strings.Contains(got, "Movie H") || strings.Contains(got, "Movie A") {
		t.Errorf("grid not scrolled:\n%s", got)
	}

	if renderGrid(nil, 0, 100, 40) != "" {
		t.Error("empty grid should render nothing")
	}
}

func TestWrapTruncate(t *testing.T) {
	if got := wrapTruncate("", 10, 2); got != "" {
		t.Errorf("empty = %q", got)
	}
	if got := wrapTruncate("short text", 20, 2); got != "short text" {
		t.Errorf("short = %q", got)
	}
	got := wrapTruncate("one two three four five six seven", 10, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[1], "…") {
		t.Errorf("wrapped = %q", got)
	}
}

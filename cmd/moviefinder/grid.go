package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

const (
	cardWidth   = 30 // outer width including border
	cardHeight  = 6  // outer height including border
	cardSpacing = 1
)

var (
	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Width(cardWidth-2).
			Height(cardHeight-2).
			Padding(0, 1)
	styleCardActive = styleCard.BorderForeground(lipgloss.Color("5"))
	styleCardTitle  = lipgloss.NewStyle().Bold(true)
)

// gridColumns returns how many cards fit side by side.
func gridColumns(width int) int {
	return max(1, (width+cardSpacing)/(cardWidth+cardSpacing))
}

// gridRows returns how many card rows fit in height.
func gridRows(height int) int {
	return max(1, height/cardHeight)
}

// moveCursor applies a grid move and clamps the result to [0, n).
func moveCursor(cursor, dRow, dCol, cols, n int) int {
	if n == 0 {
		return 0
	}
	next := cursor + dRow*cols + dCol
	if next < 0 || next >= n {
		return cursor
	}
	return next
}

// renderCard renders one result card.
func renderCard(m tmdb.Movie, active bool) string {
	inner := cardWidth - 4 // border and padding

	title := ansi.Truncate(m.Title, inner, "…")
	meta := m.Year()
	if meta == "" {
		meta = "—"
	}
	if m.VoteAverage > 0 {
		meta += fmt.Sprintf("  ★ %.1f", m.VoteAverage)
	}
	overview := wrapTruncate(m.Overview, inner, cardHeight-4)

	body := styleCardTitle.Render(title) + "\n" + styleAccent.Render(meta)
	if overview != "" {
		body += "\n" + styleDim.Render(overview)
	}

	style := styleCard
	if active {
		style = styleCardActive
	}
	return style.Render(body)
}

// renderGrid lays out items in rows, scrolled so the cursor row is visible.
func renderGrid(items []tmdb.Movie, cursor, width, height int) string {
	if len(items) == 0 {
		return ""
	}
	cols := gridColumns(width)
	visible := gridRows(height)
	first := max(0, cursor/cols-visible+1)

	var rows []string
	for r := first; r < first+visible; r++ {
		start := r * cols
		if start >= len(items) {
			break
		}
		end := min(start+cols, len(items))
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			if i > start {
				cards = append(cards, strings.Repeat(" ", cardSpacing))
			}
			cards = append(cards, renderCard(items[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// wrapTruncate word-wraps s to width and keeps at most lines lines,
// marking the cut with an ellipsis.
func wrapTruncate(s string, width, lines int) string {
	if s == "" || lines <= 0 {
		return ""
	}
	wrapped := strings.Split(ansi.Wordwrap(s, width, ""), "\n")
	if len(wrapped) <= lines {
		return strings.Join(wrapped, "\n")
	}
	wrapped = wrapped[:lines]
	wrapped[lines-1] = ansi.Truncate(wrapped[lines-1]+" …", width, "…")
	return strings.Join(wrapped, "\n")
}

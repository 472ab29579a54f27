package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

const (
	overlayMaxWidth  = 72
	overlayMaxHeight = 24
)

var styleOverlay = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("5")).
	Padding(1, 2)

// overlaySize returns the viewport size for the detail overlay.
func overlaySize(width, height int) (w, h int) {
	frameW, frameH := styleOverlay.GetFrameSize()
	w = max(10, min(overlayMaxWidth, width-4)-frameW)
	h = max(3, min(overlayMaxHeight, height-4)-frameH-2) // title and footer lines
	return w, h
}

// renderDetails renders the selected movie for the overlay body. extra is
// nil until the detail lookup completes.
func renderDetails(m tmdb.Movie, extra *tmdb.MovieDetails, width int) string {
	var sb strings.Builder
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		sb.WriteString(styleDim.Render(m.OriginalTitle))
		sb.WriteString("\n")
	}

	var facts []string
	if m.ReleaseDate != "" {
		facts = append(facts, m.ReleaseDate)
	}
	if extra != nil && extra.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%dh %02dm", extra.Runtime/60, extra.Runtime%60))
	}
	facts = append(facts, fmt.Sprintf("★ %.1f (%d votes)", m.VoteAverage, m.VoteCount))
	sb.WriteString(styleAccent.Render(strings.Join(facts, " · ")))
	sb.WriteString("\n")

	if extra != nil {
		if len(extra.Genres) > 0 {
			names := make([]string, len(extra.Genres))
			for i, g := range extra.Genres {
				names[i] = g.Name
			}
			sb.WriteString(styleInfo.Render(strings.Join(names, ", ")))
			sb.WriteString("\n")
		}
		if extra.Tagline != "" {
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Italic(true).Width(width).Render(extra.Tagline))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	overview := m.Overview
	if overview == "" {
		overview = "No overview available."
	}
	sb.WriteString(lipgloss.NewStyle().Width(width).Render(overview))

	if poster := tmdb.PosterURL(m.PosterPath, "w500"); poster != "" {
		sb.WriteString("\n\n")
		sb.WriteString(styleDim.Render(poster))
	}
	return sb.String()
}

// renderOverlay frames the overlay body and centers it on screen.
func renderOverlay(title, body string, width, height int) string {
	footer := styleDim.Render("esc close · ↑/↓ scroll")
	box := styleOverlay.Render(styleHeader.UnsetMarginBottom().Render(title) + "\n" + body + "\n" + footer)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

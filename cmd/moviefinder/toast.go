package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vadimtrunov/moviefinder/internal/search"
)

const (
	toastTTL      = 3 * time.Second
	maxToasts     = 3
	maxToastWidth = 48
)

var (
	styleToastError = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Foreground(lipgloss.Color("9")).
			Padding(0, 1)
	styleToastInfo = styleToastError.
			BorderForeground(lipgloss.Color("12")).
			Foreground(lipgloss.Color("12"))
)

// toastExpiredMsg removes a toast once its TTL has elapsed.
type toastExpiredMsg struct{ id int }

type toast struct {
	id     int
	notice search.Notice
}

// toastStack holds live notifications, newest first.
type toastStack struct {
	items  []toast
	nextID int
}

// push adds a notice and returns the command that expires it.
func (s *toastStack) push(n search.Notice) tea.Cmd {
	s.nextID++
	id := s.nextID
	s.items = append([]toast{{id: id, notice: n}}, s.items...)
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (s *toastStack) remove(id int) {
	for i, t := range s.items {
		if t.id == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *toastStack) count() int { return len(s.items) }

// view renders up to maxToasts toasts right-aligned within width.
func (s *toastStack) view(width int) string {
	if len(s.items) == 0 {
		return ""
	}
	boxes := make([]string, 0, maxToasts)
	for _, t := range s.items[:min(len(s.items), maxToasts)] {
		style, icon := styleToastInfo, "ℹ "
		if t.notice.Kind == search.NoticeError {
			style, icon = styleToastError, "✗ "
		}
		text := ansi.Truncate(icon+t.notice.Text, maxToastWidth, "…")
		boxes = append(boxes, style.Render(text))
	}
	block := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	if width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

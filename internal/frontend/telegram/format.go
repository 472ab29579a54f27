package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

// Callback data prefixes for inline keyboard buttons.
const (
	cbSelect = "sel:"
	cbPage   = "page:"
	cbClose  = "close"
	cbNoop   = "noop"

	maxButtonLabel = 30 // max characters in an inline keyboard button label
	maxOverview    = 600 // keeps photo captions under Telegram's 1024 limit
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// movieLabel renders "Title (Year)".
func movieLabel(m tmdb.Movie) string {
	if y := m.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title, y)
	}
	return m.Title
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// formatResults renders the results message for the session's displayed page.
func formatResults(s *search.Session) string {
	data := s.Data()
	var sb strings.Builder
	sb.WriteString("🔎 ")
	sb.WriteString(FormatBold(s.Query()))
	if data != nil && s.TotalPages() > 1 {
		sb.WriteString(EscapeMdV2(fmt.Sprintf(" · page %d/%d", data.Page, s.TotalPages())))
	}
	if data != nil {
		sb.WriteString(EscapeMdV2(fmt.Sprintf(" · %d results", data.TotalResults)))
	}
	sb.WriteString("\n\n")

	items := s.Items()
	if len(items) == 0 {
		sb.WriteString(FormatItalic("No results"))
		return sb.String()
	}
	for i, m := range items {
		line := fmt.Sprintf("%d. %s", i+1, movieLabel(m))
		if m.VoteAverage > 0 {
			line += fmt.Sprintf(" ★ %.1f", m.VoteAverage)
		}
		sb.WriteString(EscapeMdV2(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// buildResultsKeyboard builds one selection button per item plus a
// navigation row when there is more than one page. The page indicator
// always reflects the session's current page.
func buildResultsKeyboard(s *search.Session) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, m := range s.Items() {
		label := truncateRunes(fmt.Sprintf("%d. %s", i+1, movieLabel(m)), maxButtonLabel)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbSelect+strconv.Itoa(m.ID)),
		))
	}

	if s.ShowPagination() {
		page, total := s.Page(), s.TotalPages()
		var nav []tgbotapi.InlineKeyboardButton
		if page > 1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("←", cbPage+strconv.Itoa(page-1)))
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, total), cbNoop))
		if page < total {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("→", cbPage+strconv.Itoa(page+1)))
		}
		rows = append(rows, nav)
	}

	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// formatDetails renders the detail view for a selected movie.
func formatDetails(m tmdb.Movie) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(movieLabel(m)))
	sb.WriteString("\n")
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		sb.WriteString(FormatItalic(m.OriginalTitle))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if m.ReleaseDate != "" {
		sb.WriteString(EscapeMdV2("Release date: " + m.ReleaseDate))
		sb.WriteString("\n")
	}
	sb.WriteString(EscapeMdV2(fmt.Sprintf("Rating: %.1f/10 (%d votes)", m.VoteAverage, m.VoteCount)))
	sb.WriteString("\n")
	if m.Overview != "" {
		sb.WriteString("\n")
		sb.WriteString(EscapeMdV2(truncateRunes(m.Overview, maxOverview)))
	}
	return sb.String()
}

func closeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖ Close", cbClose),
	))
}

func retryKeyboard(page int) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↻ Retry", cbPage+strconv.Itoa(page)),
	))
	return &kb
}

// errorText renders a fetch failure for the chat.
func errorText(err error) string {
	var upErr *tmdb.UpstreamError
	var netErr *tmdb.NetworkError
	switch {
	case errors.As(err, &upErr):
		return fmt.Sprintf("TMDb returned HTTP %d: %s", upErr.StatusCode, upErr.Message)
	case errors.As(err, &netErr):
		return "Could not reach TMDb. Check the connection and try again."
	default:
		return "Search failed: " + err.Error()
	}
}

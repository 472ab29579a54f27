package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviefinder/internal/config"
	"github.com/vadimtrunov/moviefinder/internal/core"
	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

func newFindCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "find [query]",
		Short: "Print one page of search results",
		Long:  "Search TMDb once and print the requested page of results as a table.",
		Example: `  moviefinder find batman
  moviefinder find "the godfather" --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := search.NormalizeQuery(strings.Join(args, " "))
			if err != nil {
				return errors.New(search.EmptyQueryMessage)
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1, got %d", page)
			}
			return runFind(cmd.OutOrStdout(), query, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based result page")
	return cmd
}

func runFind(out io.Writer, query string, page int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	w, closeLog, err := config.OpenLogFile(cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger := config.SetupLogger(cfg.App.LogLevel, w)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	searcher := newFetcher(cfg, logger)

	// Piped output gets the table only, without a spinner program.
	if !isTerminal(out) {
		res, err := searcher.Search(ctx, query, page)
		if err != nil {
			return fmt.Errorf("search %q: %s", query, describeFetchError(err))
		}
		_, err = io.WriteString(out, renderResultTable(query, res))
		return err
	}

	p := tea.NewProgram(newFindModel(ctx, searcher, query, page), tea.WithOutput(out))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run find: %w", err)
	}

	fm, ok := m.(findModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	if fm.err != nil {
		return fm.err
	}
	return nil
}

// findResultMsg carries the search result back to the TUI.
type findResultMsg struct {
	page *tmdb.SearchPage
	err  error
}

type findModel struct {
	ctx      context.Context
	searcher core.MovieSearcher
	query    string
	page     int
	spinner  spinner.Model
	result   *tmdb.SearchPage
	err      error
	done     bool
}

func newFindModel(ctx context.Context, searcher core.MovieSearcher, query string, page int) findModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return findModel{
		ctx:      ctx,
		searcher: searcher,
		query:    query,
		page:     page,
		spinner:  s,
	}
}

func (m findModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runSearch())
}

func (m findModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case findResultMsg:
		m.result = msg.page
		if msg.err != nil {
			m.err = fmt.Errorf("search %q: %s", m.query, describeFetchError(msg.err))
		}
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m findModel) View() string {
	if !m.done {
		return m.spinner.View() + styleDim.Render(fmt.Sprintf(" Searching for %q...", m.query)) + "\n"
	}
	if m.err != nil {
		return ""
	}
	return renderResultTable(m.query, m.result)
}

func (m findModel) runSearch() tea.Cmd {
	return func() tea.Msg {
		page, err := m.searcher.Search(m.ctx, m.query, m.page)
		return findResultMsg{page: page, err: err}
	}
}

// renderResultTable prints a page of results with a summary line.
func renderResultTable(query string, page *tmdb.SearchPage) string {
	if page == nil || len(page.Results) == 0 {
		return styleInfo.Render(search.NoResultsMessage) + "\n"
	}

	rows := make([][]string, 0, len(page.Results))
	for _, m := range page.Results {
		rating := ""
		if m.VoteAverage > 0 {
			rating = fmt.Sprintf("%.1f", m.VoteAverage)
		}
		rows = append(rows, []string{strconv.Itoa(m.ID), m.Title, m.Year(), rating})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("ID", "TITLE", "YEAR", "RATING").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.UnsetMarginBottom().Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	summary := fmt.Sprintf("%q · page %d of %d · %d results",
		query, page.Page, max(1, page.NavigablePages()), page.TotalResults)
	return t.Render() + "\n" + styleDim.Render(summary) + "\n"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

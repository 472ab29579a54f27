package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviefinder/internal/config"
	"github.com/vadimtrunov/moviefinder/internal/core"
	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

// newSearchCmd returns the "search" subcommand for the interactive grid.
func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Browse movie search results interactively",
		Long: "Open the interactive search screen. An optional query is submitted on start.\n" +
			"Press tab to switch between the input and the results, ctrl+c to exit.",
		RunE: func(_ *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "))
		},
	}
}

// runSearch wires the fetcher and starts the Bubble Tea search TUI.
func runSearch(initial string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	w, closeLog, err := config.OpenLogFile(cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger := config.SetupLogger(cfg.App.LogLevel, w)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := newSearchModel(ctx, newFetcher(cfg, logger))
	m.input.SetValue(initial)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run search: %w", err)
	}
	return nil
}

// fetchResultMsg carries the outcome of one search request back to the TUI.
type fetchResultMsg struct {
	req  search.Request
	page *tmdb.SearchPage
	err  error
}

// detailsMsg carries the extended details of a selected movie.
type detailsMsg struct {
	id      int
	details *tmdb.MovieDetails
	err     error
}

type focusArea int

const (
	focusInput focusArea = iota
	focusGrid
)

const (
	inputHeight  = 3 // bordered input
	statusHeight = 2 // status line and pager
	helpHeight   = 1
)

// searchModel is the Bubble Tea model for the search screen.
type searchModel struct {
	ctx      context.Context
	searcher core.MovieSearcher
	session  *search.Session
	keys     keyMap

	input   textinput.Model
	spinner spinner.Model
	pager   paginator.Model
	help    help.Model
	detail  viewport.Model
	toasts  toastStack

	extra  *tmdb.MovieDetails // details of the selected movie, once loaded
	focus  focusArea
	cursor int
	width  int
	height int
	ready  bool
}

// newSearchModel creates a searchModel with a focused input and an idle session.
func newSearchModel(ctx context.Context, searcher core.MovieSearcher) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Search for a movie..."
	ti.Prompt = "🔎 "
	ti.Focus()
	ti.CharLimit = 200

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.ArabicFormat = "Page %d of %d"

	return searchModel{
		ctx:      ctx,
		searcher: searcher,
		session:  search.NewSession(),
		keys:     defaultKeyMap(),
		input:    ti,
		spinner:  s,
		pager:    pg,
		help:     help.New(),
		detail:   viewport.New(0, 0),
	}
}

// Init starts the cursor blink and submits a query passed on the command line.
func (m searchModel) Init() tea.Cmd {
	if strings.TrimSpace(m.input.Value()) == "" {
		return textinput.Blink
	}
	req, _ := m.session.Submit(m.input.Value())
	return tea.Batch(textinput.Blink, m.fetch(req), m.spinner.Tick)
}

// Update handles incoming messages and user input.
func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}

	case fetchResultMsg:
		return m, m.handleFetchResult(msg)

	case detailsMsg:
		return m, m.handleDetails(msg)

	case toastExpiredMsg:
		m.toasts.remove(msg.id)
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.focus == focusInput && m.session.Selected() == nil {
		var tiCmd tea.Cmd
		m.input, tiCmd = m.input.Update(msg)
		cmds = append(cmds, tiCmd)
	}
	return m, tea.Batch(cmds...)
}

// busy reports whether a fetch is in flight.
func (m searchModel) busy() bool {
	return m.session.Pending() != nil
}

// handleResize adjusts widget dimensions on terminal resize.
func (m *searchModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.input.Width = max(10, m.width-6)
	m.help.Width = m.width
	m.detail.Width, m.detail.Height = overlaySize(m.width, m.height)
	m.refreshDetail()
	m.ready = true
}

// handleKey dispatches key events depending on what has focus.
func (m *searchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return *m, tea.Quit, true
	}
	if m.session.Selected() != nil {
		return m.handleOverlayKey(msg)
	}
	if key.Matches(msg, m.keys.Retry) {
		if m.session.State() != search.StateError {
			return *m, nil, true
		}
		return *m, m.changePage(m.session.ChangePage(m.session.Page())), true
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m *searchModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return *m, m.submit(), true
	case msg.String() == "tab", key.Matches(msg, m.keys.Back):
		if len(m.session.Items()) > 0 {
			m.setFocus(focusGrid)
		}
		return *m, nil, true
	}
	return *m, nil, false
}

func (m *searchModel) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	n := len(m.session.Items())
	cols := gridColumns(m.width)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit, true
	case key.Matches(msg, m.keys.Focus):
		m.setFocus(focusInput)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.cursor = moveCursor(m.cursor, -1, 0, cols, n)
	case key.Matches(msg, m.keys.Down):
		m.cursor = moveCursor(m.cursor, 1, 0, cols, n)
	case key.Matches(msg, m.keys.Left):
		m.cursor = moveCursor(m.cursor, 0, -1, cols, n)
	case key.Matches(msg, m.keys.Right):
		m.cursor = moveCursor(m.cursor, 0, 1, cols, n)
	case key.Matches(msg, m.keys.NextPage):
		return *m, m.changePage(m.session.NextPage()), true
	case key.Matches(msg, m.keys.PrevPage):
		return *m, m.changePage(m.session.PrevPage()), true
	case key.Matches(msg, m.keys.Open):
		return *m, m.open(), true
	}
	return *m, nil, true
}

func (m *searchModel) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.session.Close()
		m.extra = nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.ScrollUp(1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.ScrollDown(1)
	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return *m, cmd, true
	}
	return *m, nil, true
}

func (m *searchModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// submit hands the input to the session. Empty input raises a toast and
// issues no fetch.
func (m *searchModel) submit() tea.Cmd {
	req, notices := m.session.Submit(m.input.Value())
	cmds := m.pushNotices(notices)
	if req == nil {
		return tea.Batch(cmds...)
	}
	m.input.SetValue(m.session.Query())
	m.input.CursorEnd()
	m.syncPager()
	cmds = append(cmds, m.fetch(req), m.spinner.Tick)
	return tea.Batch(cmds...)
}

func (m *searchModel) changePage(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	m.syncPager()
	return tea.Batch(m.fetch(req), m.spinner.Tick)
}

// open shows the overlay for the card under the cursor.
func (m *searchModel) open() tea.Cmd {
	if !m.session.SelectIndex(m.cursor) {
		return nil
	}
	m.extra = nil
	m.refreshDetail()
	m.detail.GotoTop()
	return m.fetchDetails(m.session.Selected().ID)
}

func (m *searchModel) handleFetchResult(msg fetchResultMsg) tea.Cmd {
	applied, notices := m.session.Resolve(msg.req, msg.page, msg.err)
	if !applied {
		return nil
	}
	m.cursor = 0
	m.syncPager()
	// Only the answer to a submitted query takes focus from the input.
	if msg.req.Submitted && m.session.State() == search.StateReady && len(m.session.Items()) > 0 && m.focus == focusInput {
		m.setFocus(focusGrid)
	}
	return tea.Batch(m.pushNotices(notices)...)
}

func (m *searchModel) handleDetails(msg detailsMsg) tea.Cmd {
	sel := m.session.Selected()
	if sel == nil || sel.ID != msg.id {
		return nil
	}
	if msg.err != nil {
		return m.toasts.push(search.Notice{Kind: search.NoticeError, Text: "Could not load details: " + describeFetchError(msg.err)})
	}
	m.extra = msg.details
	m.refreshDetail()
	return nil
}

func (m *searchModel) pushNotices(notices []search.Notice) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(notices))
	for _, n := range notices {
		cmds = append(cmds, m.toasts.push(n))
	}
	return cmds
}

// syncPager mirrors the session's page into the paginator. The session is
// the source of truth; the paginator only renders it.
func (m *searchModel) syncPager() {
	m.pager.TotalPages = max(1, m.session.TotalPages())
	m.pager.Page = min(m.session.ActiveIndex(), m.pager.TotalPages-1)
}

func (m *searchModel) refreshDetail() {
	sel := m.session.Selected()
	if sel == nil {
		return
	}
	m.detail.SetContent(renderDetails(*sel, m.extra, m.detail.Width))
}

// fetch returns a command that runs req against the searcher.
func (m searchModel) fetch(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	r := *req
	return func() tea.Msg {
		page, err := m.searcher.Search(m.ctx, r.Query, r.Page)
		return fetchResultMsg{req: r, page: page, err: err}
	}
}

func (m searchModel) fetchDetails(id int) tea.Cmd {
	return func() tea.Msg {
		d, err := m.searcher.Details(m.ctx, id)
		return detailsMsg{id: id, details: d, err: err}
	}
}

// View renders the input, status line, grid or error, pager, help and toasts.
func (m searchModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	toasts := m.toasts.view(m.width)
	toastHeight := 0
	if toasts != "" {
		toasts += "\n"
		toastHeight = lipgloss.Height(toasts) - 1
	}

	if sel := m.session.Selected(); sel != nil {
		title := sel.Title
		if y := sel.Year(); y != "" {
			title += " (" + y + ")"
		}
		return toasts + renderOverlay(title, m.detail.View(), m.width, m.height-toastHeight)
	}

	inputBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8"))
	if m.focus == focusInput {
		inputBorder = inputBorder.BorderForeground(lipgloss.Color("5"))
	}

	var sb strings.Builder
	sb.WriteString(toasts)
	sb.WriteString(inputBorder.Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")

	gridHeight := m.height - inputHeight - statusHeight - helpHeight - toastHeight
	switch m.session.State() {
	case search.StateError:
		sb.WriteString(renderError(m.session.Err(), m.width))
	case search.StateReady:
		sb.WriteString(renderGrid(m.session.Items(), m.cursor, m.width, gridHeight))
	}
	sb.WriteString("\n")

	if m.session.ShowPagination() {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styleDim.Render(m.pager.View())))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// statusLine describes the session state above the grid.
func (m searchModel) statusLine() string {
	s := m.session
	switch s.State() {
	case search.StateIdle:
		return styleDim.Render("Type a title and press enter.")
	case search.StateLoading:
		return m.spinner.View() + styleDim.Render(fmt.Sprintf(" Searching for %q...", s.Query()))
	case search.StateError:
		return styleError.Render("Search failed")
	}

	data := s.Data()
	line := styleInfo.Render(fmt.Sprintf("%d results for %q", data.TotalResults, s.DataQuery()))
	if s.Refreshing() {
		line += "  " + m.spinner.View() + styleDim.Render(" updating...")
	}
	return line
}

// renderError is the blocking error display that replaces the grid.
func renderError(err error, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(min(max(20, width-4), 70))
	text := styleError.Render("✗ "+describeFetchError(err)) + "\n\n" +
		styleDim.Render("Press ctrl+r to retry, or edit the query and press enter.")
	return box.Render(text)
}

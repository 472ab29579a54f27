package search

import (
	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
)

// State is the search lifecycle state.
type State int

const (
	// StateIdle means no query has been submitted yet.
	StateIdle State = iota
	// StateLoading means a fetch is in flight and there is no data to show.
	StateLoading
	// StateReady means data is present. A newer fetch may be in flight (see Session.Refreshing).
	StateReady
	// StateError means the last fetch failed. Only a new submit or page change leaves it.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// NoticeKind distinguishes error notices from informational ones.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeInfo
)

// Notice is a transient, non-blocking message for the user.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Request identifies one fetch issued by a Session.
type Request struct {
	Seq   uint64
	Query string
	Page  int
	// Submitted is set on the first fetch of a query entered by the user.
	Submitted bool
}

// Session owns query, page and selection state for one user. It performs no
// I/O: mutating calls return the Request the caller must fetch and the
// Notices it must show, and the caller reports the outcome through Resolve.
// A Session is not safe for concurrent use.
type Session struct {
	query    string
	page     int
	state    State
	data     *tmdb.SearchPage
	dataFor  string
	err      error
	selected *tmdb.Movie
	seq      uint64
	pending  *Request

	// totalPages is the page range of the current query, learned from its
	// last successful fetch. Zero until one resolves.
	totalPages int
}

// NewSession returns an idle session on page 1.
func NewSession() *Session {
	return &Session{page: 1}
}

// Submit validates raw input. An empty query returns an error notice and
// leaves the session untouched; otherwise the query is set, the page reset
// to 1, and a fetch is requested.
func (s *Session) Submit(raw string) (*Request, []Notice) {
	q, err := NormalizeQuery(raw)
	if err != nil {
		return nil, []Notice{{Kind: NoticeError, Text: EmptyQueryMessage}}
	}
	s.query = q
	s.page = 1
	s.totalPages = 0
	req := s.issue()
	req.Submitted = true
	return req, nil
}

// ChangePage moves to a 1-based page, clamped to the query's page range.
// Until the range is known only the current page may be requested again.
// It returns nil when there is no query or the page is unchanged.
func (s *Session) ChangePage(page int) *Request {
	if s.query == "" {
		return nil
	}
	page = max(page, 1)
	if s.totalPages > 0 {
		page = min(page, s.totalPages)
	} else if page != s.page {
		return nil
	}
	if page == s.page && s.state != StateError {
		return nil
	}
	s.page = page
	req := s.issue()
	// Retrying a query whose first fetch failed stands in for its submit.
	req.Submitted = s.totalPages == 0
	return req
}

// NextPage is ChangePage(Page()+1).
func (s *Session) NextPage() *Request { return s.ChangePage(s.page + 1) }

// PrevPage is ChangePage(Page()-1).
func (s *Session) PrevPage() *Request { return s.ChangePage(s.page - 1) }

func (s *Session) issue() *Request {
	s.seq++
	req := Request{Seq: s.seq, Query: s.query, Page: s.page}
	s.pending = &req

	if s.data == nil || s.state == StateError {
		s.state = StateLoading
		s.data = nil
		s.err = nil
	}
	return &req
}

// Resolve records the outcome of req. Outcomes for anything but the most
// recently issued request are dropped and reported as not applied.
func (s *Session) Resolve(req Request, page *tmdb.SearchPage, err error) (applied bool, notices []Notice) {
	if s.pending == nil || req.Seq != s.pending.Seq {
		return false, nil
	}
	s.pending = nil

	if err != nil {
		s.state = StateError
		s.err = err
		s.data = nil
		return true, nil
	}

	if page == nil {
		page = tmdb.EmptyPage()
	}
	s.state = StateReady
	s.err = nil
	s.data = page
	s.dataFor = req.Query
	s.totalPages = page.NavigablePages()
	if len(page.Results) == 0 {
		notices = append(notices, Notice{Kind: NoticeInfo, Text: NoResultsMessage})
	}
	return true, notices
}

// Select marks m as the selected item, replacing any previous selection.
func (s *Session) Select(m tmdb.Movie) {
	s.selected = &m
}

// SelectIndex selects the i-th item of the displayed page.
func (s *Session) SelectIndex(i int) bool {
	items := s.Items()
	if i < 0 || i >= len(items) {
		return false
	}
	s.Select(items[i])
	return true
}

// Close clears the selection.
func (s *Session) Close() {
	s.selected = nil
}

// Reset returns the session to its initial idle state.
func (s *Session) Reset() {
	*s = Session{page: 1, seq: s.seq}
}

func (s *Session) Query() string { return s.query }

// Page is the current 1-based page.
func (s *Session) Page() int { return s.page }

// ActiveIndex is the current page as a 0-based index for page controls.
func (s *Session) ActiveIndex() int { return s.page - 1 }

func (s *Session) State() State { return s.state }

// Err is the failure that put the session into StateError.
func (s *Session) Err() error { return s.err }

// FetchEnabled reports whether a non-empty query is set.
func (s *Session) FetchEnabled() bool { return s.query != "" }

// Data is the page currently displayed, possibly stale while Refreshing.
func (s *Session) Data() *tmdb.SearchPage { return s.data }

// DataQuery is the query that produced Data. It differs from Query while a
// new query is refreshing.
func (s *Session) DataQuery() string { return s.dataFor }

// Items returns the displayed results in order; nil unless StateReady.
func (s *Session) Items() []tmdb.Movie {
	if s.state != StateReady || s.data == nil {
		return nil
	}
	return s.data.Results
}

// TotalPages is the navigable page count of the displayed data.
func (s *Session) TotalPages() int { return s.data.NavigablePages() }

// ShowPagination reports whether a page control should be rendered.
func (s *Session) ShowPagination() bool {
	return s.state == StateReady && s.TotalPages() > 1
}

// Selected returns the selected item, or nil.
func (s *Session) Selected() *tmdb.Movie { return s.selected }

// Pending returns the in-flight request, or nil.
func (s *Session) Pending() *Request { return s.pending }

// Refreshing reports a fetch in flight while older data stays on screen.
func (s *Session) Refreshing() bool {
	return s.state == StateReady && s.pending != nil
}

package telegram

import (
	"sync"

	"github.com/vadimtrunov/moviefinder/internal/search"
)

// chatSession is the search state of one chat. mu serialises updates so the
// session is only ever touched by one goroutine at a time.
type chatSession struct {
	mu        sync.Mutex
	search    *search.Session
	resultsID int  // message showing the results grid, 0 if none
	detailID  int  // message showing the selected movie, 0 if none
	searching bool // resultsID still shows the searching placeholder
}

// sessionManager manages per-chat search sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*chatSession
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*chatSession),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// get returns the chat's session, creating it on first use.
func (sm *sessionManager) get(chatID int64) *chatSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if cs, ok := sm.sessions[chatID]; ok {
		return cs
	}
	cs := &chatSession{search: search.NewSession()}
	sm.sessions[chatID] = cs
	return cs
}

// reset returns a chat's session to idle. Fetches still in flight for it
// are dropped when they resolve.
func (sm *sessionManager) reset(chatID int64) {
	cs := sm.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.search.Reset()
	cs.resultsID = 0
	cs.detailID = 0
	cs.searching = false
}

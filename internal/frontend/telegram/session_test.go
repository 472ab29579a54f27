package telegram

import (
	"sync"
	"testing"

	"github.com/vadimtrunov/moviefinder/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviefinder/internal/search"
)

func TestSessionManager_IsAllowed(t *testing.T) {
	t.Run("empty whitelist allows all", func(t *testing.T) {
		sm := newSessionManager(nil)
		if !sm.isAllowed(123) {
			t.Error("expected all users allowed with nil whitelist")
		}
		if !sm.isAllowed(456) {
			t.Error("expected all users allowed with nil whitelist")
		}
	})

	t.Run("empty slice allows all", func(t *testing.T) {
		sm := newSessionManager([]int64{})
		if !sm.isAllowed(123) {
			t.Error("expected all users allowed with empty whitelist")
		}
	})

	t.Run("whitelist restricts", func(t *testing.T) {
		sm := newSessionManager([]int64{100, 200})
		if !sm.isAllowed(100) {
			t.Error("expected user 100 allowed")
		}
		if !sm.isAllowed(200) {
			t.Error("expected user 200 allowed")
		}
		if sm.isAllowed(300) {
			t.Error("expected user 300 denied")
		}
	})
}

func TestSessionManager_Get(t *testing.T) {
	sm := newSessionManager(nil)

	s1 := sm.get(100)
	if s1 == nil || s1.search == nil {
		t.Fatal("expected initialised session")
	}
	if s1.search.State() != search.StateIdle {
		t.Errorf("new session state = %v, want idle", s1.search.State())
	}

	if s2 := sm.get(100); s1 != s2 {
		t.Error("expected same session for same chat")
	}
	if s3 := sm.get(200); s1 == s3 {
		t.Error("expected different sessions for different chats")
	}
}

func TestSessionManager_Reset(t *testing.T) {
	sm := newSessionManager(nil)

	s1 := sm.get(100)
	req, _ := s1.search.Submit("batman")
	s1.resultsID = 7
	sm.reset(100)
	s2 := sm.get(100)

	if s1 != s2 {
		t.Error("reset should keep the chat's session")
	}
	if s2.search.Query() != "" || s2.search.State() != search.StateIdle {
		t.Errorf("after reset: query %q, state %v", s2.search.Query(), s2.search.State())
	}
	if s2.resultsID != 0 {
		t.Errorf("results message = %d, want 0", s2.resultsID)
	}
	if applied, _ := s2.search.Resolve(*req, tmdb.EmptyPage(), nil); applied {
		t.Error("a fetch from before the reset must be dropped")
	}
}

func TestSessionManager_Concurrent(t *testing.T) {
	sm := newSessionManager(nil)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cs := sm.get(int64(i % 10))
			cs.mu.Lock()
			cs.search.Submit("heat")
			cs.mu.Unlock()
		}()
	}
	wg.Wait()

	for id := range int64(10) {
		if q := sm.get(id).search.Query(); q != "heat" {
			t.Errorf("chat %d query = %q", id, q)
		}
	}
}

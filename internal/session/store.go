package session

import (
	"sync"
	"time"

	"vibe-generator/internal/vibe"
)

// Session is a user's latest generation and what they picked from it.
type Session struct {
	UserID       int64
	Username     string
	Context      vibe.GenerationContext
	Text         vibe.TextResult
	Visual       vibe.VisualResult
	Pick         Pick
	// Menu is the picker submenu on screen; empty is the main menu.
	Menu         string
	MessageID    int
	LastActivity time.Time
}

// Pick indexes into the generated lanes; -1 means nothing chosen yet.
type Pick struct {
	Line     int
	Visual   int
	LayoutID string
}

func NewPick() Pick {
	return Pick{Line: -1, Visual: -1, LayoutID: vibe.DefaultLayoutID}
}

func (p Pick) Complete() bool { return p.Line >= 0 && p.Visual >= 0 }

type Options struct {
	Now func() time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[int64]*Session),
		now:      now,
	}
}

// Save replaces the user's session with a fresh generation and resets the pick.
func (s *Store) Save(userID int64, username string, gc vibe.GenerationContext, text vibe.TextResult, visual vibe.VisualResult) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		UserID:       userID,
		Username:     username,
		Context:      gc,
		Text:         text,
		Visual:       visual,
		Pick:         NewPick(),
		LastActivity: s.now(),
	}
	s.sessions[userID] = sess
	return *sess
}

func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Update applies fn to the stored session under the lock.
func (s *Store) Update(userID int64, fn func(*Session)) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	fn(sess)
	sess.LastActivity = s.now()
	return *sess, true
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Prune drops sessions idle for longer than maxIdle and reports how many.
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/smile-contour/pkg/editor"
	"github.com/menta2k/smile-contour/pkg/geometry"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is one editor behind the HTTP API. The editor is single-threaded,
// so every access goes through Do.
type Session struct {
	ID          string
	FrameWidth  float64
	FrameHeight float64

	mu       sync.Mutex
	editor   *editor.Editor
	revision int
	lastUsed time.Time
}

// Do runs fn with exclusive access to the session's editor.
func (s *Session) Do(fn func(ed *editor.Editor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.editor)
}

// Revision counts region change notifications seen by the session.
func (s *Session) Revision() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Store keeps sessions in memory. Sessions idle for longer than ttl are
// dropped lazily on the next Create or Get.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewStore creates an empty store. A zero ttl keeps sessions until deleted.
func NewStore(maxSessions int, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

// Create registers a session for ed.
func (st *Store) Create(ed *editor.Editor, frameWidth, frameHeight float64) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictLocked()
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		return nil, ErrTooManySessions
	}

	s := &Session{
		ID:          uuid.NewString(),
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
		editor:      ed,
		lastUsed:    st.now(),
	}
	// Called with s.mu held, from inside Do.
	ed.OnRegionChanged(func(_ []geometry.FramePoint) { s.revision++ })

	st.sessions[s.ID] = s
	st.logger.Debug("session created", "id", s.ID, "sessions", len(st.sessions))
	return s, nil
}

// Get returns a live session and marks it used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictLocked()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastUsed = st.now()
	return s, nil
}

// Delete removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	st.logger.Debug("session deleted", "id", id)
	return nil
}

// Len returns the number of sessions, expired ones included.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) evictLocked() {
	if st.ttl <= 0 {
		return
	}
	cutoff := st.now().Add(-st.ttl)
	for id, s := range st.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(st.sessions, id)
			st.logger.Info("session expired", "id", id)
		}
	}
}

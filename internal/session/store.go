package session

import (
	"time"

	"expensetracker/internal/cache"

	"github.com/google/uuid"
)

// Store keeps live sessions in memory, keyed by an opaque random id.
type Store struct {
	sessions *cache.LRUCache[*Session]
}

// NewStore keeps at most capacity sessions. idleTTL <= 0 keeps sessions until
// logout or eviction.
func NewStore(capacity int, idleTTL time.Duration) *Store {
	return &Store{sessions: cache.NewLRUCache[*Session](capacity, idleTTL)}
}

// Create starts a fresh session on the auth screen.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString())
	s.sessions.Set(sess.ID, sess)
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

// Rotate moves old's state to a session under a fresh id and drops old from
// the store. old is reset, so a stale reference to it is signed out.
func (s *Store) Rotate(old *Session) *Session {
	old.mu.Lock()
	st := old.state
	old.reset()
	old.mu.Unlock()

	sess := New(uuid.NewString())
	sess.state = st
	s.sessions.Set(sess.ID, sess)
	s.sessions.Delete(old.ID)
	return sess
}

func (s *Store) Len() int {
	return s.sessions.Size()
}

// Cleaner exposes the backing cache to a cache.Manager sweep.
func (s *Store) Cleaner() cache.Cleaner {
	return s.sessions
}

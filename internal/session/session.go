// Package session tracks who is signed in and which screen they may see.
//
// A Session is handed explicitly to every handler; there is no process-wide
// current user. The Router drives the auth -> onboarding -> dashboard flow.
package session

import (
	"errors"
	"sync"

	"expensetracker/internal/core"
)

// Screen is the view a session is allowed to render.
type Screen string

const (
	ScreenAuth       Screen = "auth"
	ScreenOnboarding Screen = "onboarding"
	ScreenDashboard  Screen = "dashboard"
)

var (
	ErrUnauthenticated   = errors.New("session: not authenticated")
	ErrInvalidTransition = errors.New("session: invalid transition")
)

// State is a snapshot of a session.
type State struct {
	Authenticated bool
	Screen        Screen
	Identity      core.Identity
}

// Session is one browser's sign-in state. The zero value is not usable; use New.
type Session struct {
	ID string

	mu    sync.Mutex
	state State
}

// New returns an unauthenticated session on the auth screen.
func New(id string) *Session {
	return &Session{ID: id, state: State{Screen: ScreenAuth}}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// signIn replaces the whole state. Callers hold s.mu.
func (s *Session) signIn(id core.Identity, screen Screen) {
	s.state = State{Authenticated: true, Screen: screen, Identity: id}
}

// reset returns the session to its initial state. Callers hold s.mu.
func (s *Session) reset() {
	s.state = State{Screen: ScreenAuth}
}

// Require returns the identity when the session is authenticated and on screen.
func (s *Session) Require(screen Screen) (core.Identity, error) {
	st := s.State()
	if !st.Authenticated {
		return core.Identity{}, ErrUnauthenticated
	}
	if st.Screen != screen {
		return core.Identity{}, ErrInvalidTransition
	}
	return st.Identity, nil
}

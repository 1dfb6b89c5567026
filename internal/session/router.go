package session

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

// Accounts is the credential side of the flow. *services.AccountService implements it.
type Accounts interface {
	Register(ctx context.Context, r core.Registration) (core.Identity, error)
	Authenticate(ctx context.Context, username, password string) (core.Identity, error)
}

// Profiles is the onboarding side of the flow. *services.ProfileService implements it.
type Profiles interface {
	Create(ctx context.Context, p core.Profile) (core.Profile, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// Router applies screen transitions to a session. Each transition holds the
// session lock for its whole duration, so concurrent requests on one session
// are serialised.
type Router struct {
	accounts Accounts
	profiles Profiles
}

func NewRouter(accounts Accounts, profiles Profiles) *Router {
	return &Router{accounts: accounts, profiles: profiles}
}

// Login authenticates and lands on the dashboard when a profile exists,
// otherwise on onboarding. A failed login leaves the session untouched.
func (r *Router) Login(ctx context.Context, s *Session, username, password string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := r.accounts.Authenticate(ctx, username, password)
	if err != nil {
		return s.state, err
	}

	exists, err := r.profiles.Exists(ctx, id.Username)
	if err != nil {
		return s.state, fmt.Errorf("check profile: %w", err)
	}

	screen := ScreenOnboarding
	if exists {
		screen = ScreenDashboard
	}
	s.signIn(id, screen)

	slog.InfoContext(ctx, "Session signed in",
		"session_id", s.ID,
		"username", id.Username,
		"screen", screen)
	return s.state, nil
}

// Register creates the account and signs the session in on onboarding.
func (r *Router) Register(ctx context.Context, s *Session, reg core.Registration) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := r.accounts.Register(ctx, reg)
	if err != nil {
		return s.state, err
	}
	s.signIn(id, ScreenOnboarding)

	slog.InfoContext(ctx, "Session registered", "session_id", s.ID, "username", id.Username)
	return s.state, nil
}

// CompleteOnboarding saves the profile for the signed-in user and moves to the
// dashboard. The profile is always stored under the session's username.
func (r *Router) CompleteOnboarding(ctx context.Context, s *Session, p core.Profile) (State, core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Authenticated {
		return s.state, core.Profile{}, ErrUnauthenticated
	}
	if s.state.Screen != ScreenOnboarding {
		return s.state, core.Profile{}, ErrInvalidTransition
	}

	p.Username = s.state.Identity.Username
	saved, err := r.profiles.Create(ctx, p)
	if err != nil {
		return s.state, core.Profile{}, err
	}
	s.state.Screen = ScreenDashboard
	return s.state, saved, nil
}

// Logout clears identity and returns to the auth screen.
func (r *Router) Logout(ctx context.Context, s *Session) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Authenticated {
		slog.InfoContext(ctx, "Session signed out", "session_id", s.ID, "username", s.state.Identity.Username)
	}
	s.reset()
	return s.state
}

// Resolve re-checks where an authenticated session belongs, so a user whose
// profile is missing is never shown the dashboard.
func (r *Router) Resolve(ctx context.Context, s *Session) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Authenticated {
		return s.state, nil
	}
	exists, err := r.profiles.Exists(ctx, s.state.Identity.Username)
	if err != nil {
		return s.state, fmt.Errorf("check profile: %w", err)
	}
	if exists {
		s.state.Screen = ScreenDashboard
	} else {
		s.state.Screen = ScreenOnboarding
	}
	return s.state, nil
}

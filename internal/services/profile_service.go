package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

// ProfileService owns the onboarding profile lifecycle.
type ProfileService struct {
	store ProfileStore
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Create stores p, replacing any existing profile. MonthlyIncome is always
// recomputed as Salary + OtherIncome.
func (s *ProfileService) Create(ctx context.Context, p core.Profile) (core.Profile, error) {
	p = p.WithDerivedIncome()
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile saved",
		"username", p.Username,
		"occupation", p.Occupation,
		"monthly_income_cents", p.MonthlyIncome.Cents)
	return p, nil
}

// Get returns the profile or core.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, username string) (core.Profile, error) {
	return s.store.GetProfile(ctx, username)
}

// Exists reports whether username has completed onboarding. Storage failures
// are returned, never folded into false.
func (s *ProfileService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.store.GetProfile(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrNotFound):
		return false, nil
	}
	return false, err
}

// UpdateLimits overwrites spendable limit, savings and emergency fund, and the
// savings goal when given. A missing profile yields core.ErrNotFound.
func (s *ProfileService) UpdateLimits(ctx context.Context, username string, u core.LimitsUpdate) (core.Profile, error) {
	if err := u.Validate(); err != nil {
		return core.Profile{}, err
	}
	p, err := s.store.UpdateProfileLimits(ctx, username, u)
	if err != nil {
		return core.Profile{}, fmt.Errorf("update limits: %w", err)
	}
	return p, nil
}

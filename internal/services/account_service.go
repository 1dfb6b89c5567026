package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
)

// AccountService registers accounts and checks credentials.
type AccountService struct {
	store  AccountStore
	hasher *auth.Hasher
}

func NewAccountService(store AccountStore, hasher *auth.Hasher) *AccountService {
	return &AccountService{store: store, hasher: hasher}
}

// Register validates the sign-up form, hashes the password and stores the
// account. A taken username yields core.ErrAlreadyExists.
func (s *AccountService) Register(ctx context.Context, r core.Registration) (core.Identity, error) {
	r.Username = strings.TrimSpace(r.Username)
	if err := r.Validate(); err != nil {
		return core.Identity{}, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return core.Identity{}, err
	}

	account := core.Account{
		Username:      r.Username,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(r.FullName),
		Email:         strings.TrimSpace(r.Email),
		Phone:         strings.TrimSpace(r.Phone),
		Currency:      r.Currency,
		MonthlyBudget: r.MonthlyBudget,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return core.Identity{}, fmt.Errorf("register %s: %w", r.Username, err)
	}

	slog.InfoContext(ctx, "Account registered", "username", account.Username)
	return account.Identity(), nil
}

// Authenticate returns the identity for a matching username and password.
// Unknown users and wrong passwords both yield core.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (core.Identity, error) {
	username = strings.TrimSpace(username)

	account, err := s.store.GetAccount(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		s.hasher.VerifyMissing(password)
		slog.WarnContext(ctx, "Login rejected", "reason", "credentials")
		return core.Identity{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Identity{}, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		slog.WarnContext(ctx, "Login rejected", "reason", "credentials")
		return core.Identity{}, core.ErrInvalidCredentials
	}

	return account.Identity(), nil
}

// Account loads the stored account for username.
func (s *AccountService) Account(ctx context.Context, username string) (core.Account, error) {
	return s.store.GetAccount(ctx, username)
}

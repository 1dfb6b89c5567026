package services

import (
	"context"

	"expensetracker/internal/core"

	"github.com/stretchr/testify/mock"
)

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) CreateAccount(ctx context.Context, a core.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccountStore) GetAccount(ctx context.Context, username string) (core.Account, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(core.Account), args.Error(1)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) UpsertProfile(ctx context.Context, p core.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfileStore) GetProfile(ctx context.Context, username string) (core.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(core.Profile), args.Error(1)
}

func (m *mockProfileStore) UpdateProfileLimits(ctx context.Context, username string, u core.LimitsUpdate) (core.Profile, error) {
	args := m.Called(ctx, username, u)
	return args.Get(0).(core.Profile), args.Error(1)
}

type mockLedgerStore struct{ mock.Mock }

func (m *mockLedgerStore) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerStore) ListTransactions(ctx context.Context, username string) ([]core.Transaction, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]core.Transaction), args.Error(1)
}

func (m *mockLedgerStore) TotalSpent(ctx context.Context, username string) (core.Money, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(core.Money), args.Error(1)
}

func (m *mockLedgerStore) SpentByCategory(ctx context.Context, username string) (map[core.Category]core.Money, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(map[core.Category]core.Money), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishTransactionSync(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPublisher) PublishBudgetAlert(ctx context.Context, to, body string) error {
	return m.Called(ctx, to, body).Error(0)
}

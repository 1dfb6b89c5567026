package services

import (
	"context"

	"expensetracker/internal/core"
)

// AccountStore persists credentials. *storage.SQLiteRepository implements it.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) error
	GetAccount(ctx context.Context, username string) (core.Account, error)
}

// ProfileStore persists onboarding profiles.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, p core.Profile) error
	GetProfile(ctx context.Context, username string) (core.Profile, error)
	UpdateProfileLimits(ctx context.Context, username string, u core.LimitsUpdate) (core.Profile, error)
}

// LedgerStore is the append-only transaction ledger plus its aggregates.
type LedgerStore interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (int64, error)
	ListTransactions(ctx context.Context, username string) ([]core.Transaction, error)
	TotalSpent(ctx context.Context, username string) (core.Money, error)
	SpentByCategory(ctx context.Context, username string) (map[core.Category]core.Money, error)
}

// Publisher announces ledger events to the worker. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
	PublishBudgetAlert(ctx context.Context, to, body string) error
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const timestampLayout = time.RFC3339

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// DSN appends the connection pragmas every connection needs: foreign keys on,
// a busy timeout and WAL journaling.
func DSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(DSN(dbPath)); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", core.ErrStorageUnavailable, err)
	}
	return nil
}

// withConn runs fn on a dedicated connection that is released on every path.
// Errors from fn are mapped onto the core error taxonomy.
func (r *SQLiteRepository) withConn(ctx context.Context, op string, fn func(q *Queries) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: acquire connection: %w", core.ErrStorageUnavailable, op, err)
	}
	defer conn.Close()

	return classify(op, fn(New(conn)))
}

func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrAlreadyExists),
		errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrStorageUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: owner %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", core.ErrStorageUnavailable, op, err)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(timestampLayout)
}

// CreateAccount stores a new account. A taken username yields core.ErrAlreadyExists
// and leaves the existing row untouched.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	err := r.withConn(ctx, "create account", func(q *Queries) error {
		n, err := q.CreateAccount(ctx, CreateAccountParams{
			Username:     a.Username,
			PasswordHash: a.PasswordHash,
			FullName:     a.FullName,
			Email:        a.Email,
			Phone:        a.Phone,
			Currency:     string(a.Currency),
			BudgetCents:  a.MonthlyBudget.Cents,
			CreatedAt:    createdAt.UTC().Format(timestampLayout),
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrAlreadyExists
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Account saved to SQLite", "username", a.Username)
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, username string) (core.Account, error) {
	var row Account
	err := r.withConn(ctx, "get account", func(q *Queries) error {
		var err error
		row, err = q.GetAccount(ctx, username)
		return err
	})
	if err != nil {
		return core.Account{}, err
	}
	return toCoreAccount(row), nil
}

// UpsertProfile replaces the whole profile row. It is used for both onboarding and edits.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.Profile) error {
	err := r.withConn(ctx, "upsert profile", func(q *Queries) error {
		return q.UpsertProfile(ctx, UpsertProfileParams{
			Username:            p.Username,
			Occupation:          string(p.Occupation),
			MonthlyIncomeCents:  p.MonthlyIncome.Cents,
			SalaryCents:         p.Salary.Cents,
			SpendableCents:      p.SpendableLimit.Cents,
			SavingsGoalCents:    p.SavingsGoal.Cents,
			CurrentSavingsCents: p.CurrentSavings.Cents,
			EmergencyFundCents:  p.EmergencyFund.Cents,
			OtherIncomeCents:    p.OtherIncome.Cents,
			UpdatedAt:           r.timestamp(),
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Profile saved to SQLite",
		"username", p.Username,
		"spendable_cents", p.SpendableLimit.Cents)
	return nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, username string) (core.Profile, error) {
	var row Profile
	err := r.withConn(ctx, "get profile", func(q *Queries) error {
		var err error
		row, err = q.GetProfile(ctx, username)
		return err
	})
	if err != nil {
		return core.Profile{}, err
	}
	return toCoreProfile(row), nil
}

// UpdateProfileLimits overwrites the limit fields in one statement and returns
// the stored profile. A missing profile yields core.ErrNotFound and nothing is written.
func (r *SQLiteRepository) UpdateProfileLimits(ctx context.Context, username string, u core.LimitsUpdate) (core.Profile, error) {
	var goal sql.NullInt64
	if u.SavingsGoal != nil {
		goal = sql.NullInt64{Int64: u.SavingsGoal.Cents, Valid: true}
	}

	var row Profile
	err := r.withConn(ctx, "update profile limits", func(q *Queries) error {
		n, err := q.UpdateProfileLimits(ctx, UpdateProfileLimitsParams{
			SpendableCents:      u.SpendableLimit.Cents,
			CurrentSavingsCents: u.CurrentSavings.Cents,
			EmergencyFundCents:  u.EmergencyFund.Cents,
			SavingsGoalCents:    goal,
			UpdatedAt:           r.timestamp(),
			Username:            username,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		row, err = q.GetProfile(ctx, username)
		return err
	})
	if err != nil {
		return core.Profile{}, err
	}

	slog.InfoContext(ctx, "Profile limits updated",
		"username", username,
		"spendable_cents", row.SpendableCents,
		"savings_goal_kept", u.SavingsGoal == nil)
	return toCoreProfile(row), nil
}

// AppendTransaction inserts a ledger entry and returns its id. An unknown owner
// yields core.ErrNotFound.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var id int64
	err := r.withConn(ctx, "append transaction", func(q *Queries) error {
		var err error
		id, err = q.CreateTransaction(ctx, CreateTransactionParams{
			Username:    t.Username,
			Description: t.Description,
			AmountCents: t.Amount.Cents,
			Category:    string(t.Category),
			Date:        t.Date.String(),
			CreatedAt:   r.timestamp(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"username", t.Username,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"date", t.Date.String())
	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var row Transaction
	err := r.withConn(ctx, "get transaction", func(q *Queries) error {
		var err error
		row, err = q.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return toCoreTransaction(row)
}

// ListTransactions returns the owner's ledger, newest date first and
// insertion order within a date. No entries yields an empty slice.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, username string) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, "list transactions", func(q *Queries) error {
		rows, err := q.ListTransactionsByUser(ctx, username)
		if err != nil {
			return err
		}
		out, err = toCoreTransactions(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TotalSpent sums the owner's ledger. No entries yields zero.
func (r *SQLiteRepository) TotalSpent(ctx context.Context, username string) (core.Money, error) {
	var total int64
	err := r.withConn(ctx, "sum transactions", func(q *Queries) error {
		var err error
		total, err = q.SumTransactionsByUser(ctx, username)
		return err
	})
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: total}, nil
}

// SpentByCategory groups the owner's ledger by category. Categories without
// entries are absent from the map.
func (r *SQLiteRepository) SpentByCategory(ctx context.Context, username string) (map[core.Category]core.Money, error) {
	out := make(map[core.Category]core.Money)
	err := r.withConn(ctx, "group transactions", func(q *Queries) error {
		rows, err := q.SumTransactionsByCategory(ctx, username)
		if err != nil {
			return err
		}
		for _, row := range rows {
			out[core.Category(row.Category)] = core.Money{Cents: row.TotalAmount}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PendingSync returns up to limit transactions not yet mirrored whose id is
// greater than afterID, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, afterID int64, limit int) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, "list pending sync", func(q *Queries) error {
		rows, err := q.ListPendingSync(ctx, afterID, int64(limit))
		if err != nil {
			return err
		}
		out, err = toCoreTransactions(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSynced records that the transaction has been mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	err := r.withConn(ctx, "mark synced", func(q *Queries) error {
		n, err := q.MarkTransactionSynced(ctx, r.timestamp(), id)
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func toCoreAccount(a Account) core.Account {
	created, _ := time.Parse(timestampLayout, a.CreatedAt)
	return core.Account{
		Username:      a.Username,
		PasswordHash:  a.PasswordHash,
		FullName:      a.FullName,
		Email:         a.Email,
		Phone:         a.Phone,
		Currency:      core.Currency(a.Currency),
		MonthlyBudget: core.Money{Cents: a.BudgetCents},
		CreatedAt:     created,
	}
}

func toCoreProfile(p Profile) core.Profile {
	return core.Profile{
		Username:       p.Username,
		Occupation:     core.Occupation(p.Occupation),
		MonthlyIncome:  core.Money{Cents: p.MonthlyIncomeCents},
		Salary:         core.Money{Cents: p.SalaryCents},
		SpendableLimit: core.Money{Cents: p.SpendableCents},
		SavingsGoal:    core.Money{Cents: p.SavingsGoalCents},
		CurrentSavings: core.Money{Cents: p.CurrentSavingsCents},
		EmergencyFund:  core.Money{Cents: p.EmergencyFundCents},
		OtherIncome:    core.Money{Cents: p.OtherIncomeCents},
	}
}

func toCoreTransaction(t Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: decode transaction %d date %q", core.ErrStorageUnavailable, t.ID, t.Date)
	}
	return core.Transaction{
		ID:          t.ID,
		Username:    t.Username,
		Description: t.Description,
		Amount:      core.Money{Cents: t.AmountCents},
		Category:    core.Category(t.Category),
		Date:        date,
	}, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

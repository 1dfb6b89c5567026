package storage

import (
	"context"
	"database/sql"
)

const createAccount = `
INSERT INTO accounts (username, password_hash, full_name, email, phone, currency, budget_cents, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(username) DO NOTHING
`

type CreateAccountParams struct {
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Phone        string
	Currency     string
	BudgetCents  int64
	CreatedAt    string
}

// CreateAccount returns the number of inserted rows; zero means the username is taken.
func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createAccount,
		arg.Username,
		arg.PasswordHash,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.Currency,
		arg.BudgetCents,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getAccount = `
SELECT username, password_hash, full_name, email, phone, currency, budget_cents, created_at
FROM accounts
WHERE username = ?
`

func (q *Queries) GetAccount(ctx context.Context, username string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, username)
	var i Account
	err := row.Scan(
		&i.Username,
		&i.PasswordHash,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.Currency,
		&i.BudgetCents,
		&i.CreatedAt,
	)
	return i, err
}

const upsertProfile = `
INSERT INTO profiles (
    username, occupation, monthly_income_cents, salary_cents, spendable_cents,
    savings_goal_cents, current_savings_cents, emergency_fund_cents, other_income_cents, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
    occupation            = excluded.occupation,
    monthly_income_cents  = excluded.monthly_income_cents,
    salary_cents          = excluded.salary_cents,
    spendable_cents       = excluded.spendable_cents,
    savings_goal_cents    = excluded.savings_goal_cents,
    current_savings_cents = excluded.current_savings_cents,
    emergency_fund_cents  = excluded.emergency_fund_cents,
    other_income_cents    = excluded.other_income_cents,
    updated_at            = excluded.updated_at
`

type UpsertProfileParams struct {
	Username            string
	Occupation          string
	MonthlyIncomeCents  int64
	SalaryCents         int64
	SpendableCents      int64
	SavingsGoalCents    int64
	CurrentSavingsCents int64
	EmergencyFundCents  int64
	OtherIncomeCents    int64
	UpdatedAt           string
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) error {
	_, err := q.db.ExecContext(ctx, upsertProfile,
		arg.Username,
		arg.Occupation,
		arg.MonthlyIncomeCents,
		arg.SalaryCents,
		arg.SpendableCents,
		arg.SavingsGoalCents,
		arg.CurrentSavingsCents,
		arg.EmergencyFundCents,
		arg.OtherIncomeCents,
		arg.UpdatedAt,
	)
	return err
}

const getProfile = `
SELECT username, occupation, monthly_income_cents, salary_cents, spendable_cents,
       savings_goal_cents, current_savings_cents, emergency_fund_cents, other_income_cents, updated_at
FROM profiles
WHERE username = ?
`

func (q *Queries) GetProfile(ctx context.Context, username string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, username)
	var i Profile
	err := row.Scan(
		&i.Username,
		&i.Occupation,
		&i.MonthlyIncomeCents,
		&i.SalaryCents,
		&i.SpendableCents,
		&i.SavingsGoalCents,
		&i.CurrentSavingsCents,
		&i.EmergencyFundCents,
		&i.OtherIncomeCents,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProfileLimits = `
UPDATE profiles SET
    spendable_cents       = ?,
    current_savings_cents = ?,
    emergency_fund_cents  = ?,
    savings_goal_cents    = COALESCE(?, savings_goal_cents),
    updated_at            = ?
WHERE username = ?
`

type UpdateProfileLimitsParams struct {
	SpendableCents      int64
	CurrentSavingsCents int64
	EmergencyFundCents  int64
	SavingsGoalCents    sql.NullInt64
	UpdatedAt           string
	Username            string
}

// UpdateProfileLimits returns the number of updated rows; zero means no profile.
func (q *Queries) UpdateProfileLimits(ctx context.Context, arg UpdateProfileLimitsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateProfileLimits,
		arg.SpendableCents,
		arg.CurrentSavingsCents,
		arg.EmergencyFundCents,
		arg.SavingsGoalCents,
		arg.UpdatedAt,
		arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createTransaction = `
INSERT INTO transactions (username, description, amount_cents, category, date, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	Username    string
	Description string
	AmountCents int64
	Category    string
	Date        string
	CreatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Username,
		arg.Description,
		arg.AmountCents,
		arg.Category,
		arg.Date,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getTransaction = `
SELECT id, username, description, amount_cents, category, date, created_at, synced_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Description,
		&i.AmountCents,
		&i.Category,
		&i.Date,
		&i.CreatedAt,
		&i.SyncedAt,
	)
	return i, err
}

const listTransactionsByUser = `
SELECT id, username, description, amount_cents, category, date, created_at, synced_at
FROM transactions
WHERE username = ?
ORDER BY date DESC, id ASC
`

func (q *Queries) ListTransactionsByUser(ctx context.Context, username string) ([]Transaction, error) {
	return q.listTransactions(ctx, listTransactionsByUser, username)
}

const listPendingSync = `
SELECT id, username, description, amount_cents, category, date, created_at, synced_at
FROM transactions
WHERE synced_at IS NULL AND id > ?
ORDER BY id ASC
LIMIT ?
`

func (q *Queries) ListPendingSync(ctx context.Context, afterID, limit int64) ([]Transaction, error) {
	return q.listTransactions(ctx, listPendingSync, afterID, limit)
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.Description,
			&i.AmountCents,
			&i.Category,
			&i.Date,
			&i.CreatedAt,
			&i.SyncedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumTransactionsByUser = `
SELECT CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER)
FROM transactions
WHERE username = ?
`

func (q *Queries) SumTransactionsByUser(ctx context.Context, username string) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumTransactionsByUser, username)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumTransactionsByCategory = `
SELECT category, CAST(SUM(amount_cents) AS INTEGER) AS total_amount
FROM transactions
WHERE username = ?
GROUP BY category
ORDER BY category
`

func (q *Queries) SumTransactionsByCategory(ctx context.Context, username string) ([]CategoryTotal, error) {
	rows, err := q.db.QueryContext(ctx, sumTransactionsByCategory, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategoryTotal{}
	for rows.Next() {
		var i CategoryTotal
		if err := rows.Scan(&i.Category, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markTransactionSynced = `
UPDATE transactions SET synced_at = ? WHERE id = ?
`

func (q *Queries) MarkTransactionSynced(ctx context.Context, syncedAt string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markTransactionSynced, syncedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

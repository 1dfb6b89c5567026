package storage

import "database/sql"

// Account is the accounts table row.
type Account struct {
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Phone        string
	Currency     string
	BudgetCents  int64
	CreatedAt    string
}

// Profile is the profiles table row.
type Profile struct {
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

// Transaction is the transactions table row.
type Transaction struct {
	ID          int64
	Username    string
	Description string
	AmountCents int64
	Category    string
	Date        string
	CreatedAt   string
	SyncedAt    sql.NullString
}

// CategoryTotal is one row of the per-category aggregation.
type CategoryTotal struct {
	Category    string
	TotalAmount int64
}

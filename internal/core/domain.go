package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// DateLayout is the storage and wire format for ledger dates.
const DateLayout = "2006-01-02"

const (
	maxDescriptionLen = 200
	maxUsernameLen    = 64
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Account is the credential record created once at registration.
	Account struct {
		Username      string
		PasswordHash  string
		FullName      string
		Email         string
		Phone         string
		Currency      Currency
		MonthlyBudget Money
		CreatedAt     time.Time
	}

	// Registration carries the sign-up form as submitted.
	Registration struct {
		Username        string
		Password        string
		ConfirmPassword string
		FullName        string
		Email           string
		Phone           string
		Currency        Currency
		MonthlyBudget   Money
		AcceptedTerms   bool
	}

	// Identity is what a successful authentication yields.
	Identity struct {
		Username    string
		DisplayName string
		Currency    Currency
	}

	// Profile holds the financial figures captured at onboarding.
	Profile struct {
		Username       string
		Occupation     Occupation
		MonthlyIncome  Money
		Salary         Money
		SpendableLimit Money
		SavingsGoal    Money
		CurrentSavings Money
		EmergencyFund  Money
		OtherIncome    Money
	}

	// LimitsUpdate is the edit-limits form. A nil SavingsGoal keeps the stored goal.
	LimitsUpdate struct {
		SpendableLimit Money
		CurrentSavings Money
		EmergencyFund  Money
		SavingsGoal    *Money
	}

	Transaction struct {
		ID          int64 // assigned by the ledger
		Username    string
		Description string
		Amount      Money
		Category    Category
		Date        Date
	}
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current UTC date.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, int(m), d)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

func validateNonNegative(values ...Money) error {
	for _, v := range values {
		if v.Cents < 0 {
			return ErrNegativeAmount
		}
		if v.Cents > MaxAmountCents {
			return ErrAmountTooLarge
		}
	}
	return nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if len(username) > maxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

// Validate checks the sign-up form the way the registration screen does:
// username present, password confirmed, terms accepted.
func (r Registration) Validate() error {
	if err := validateUsername(r.Username); err != nil {
		return err
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !r.AcceptedTerms {
		return ErrTermsNotAccepted
	}
	if !r.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if email := strings.TrimSpace(r.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ErrInvalidEmailAddress
		}
	}
	return validateNonNegative(r.MonthlyBudget)
}

// Identity derives the session identity of an account.
func (a Account) Identity() Identity {
	name := a.FullName
	if strings.TrimSpace(name) == "" {
		name = a.Username
	}
	return Identity{Username: a.Username, DisplayName: name, Currency: a.Currency}
}

// WithDerivedIncome returns a copy whose MonthlyIncome is Salary + OtherIncome.
func (p Profile) WithDerivedIncome() Profile {
	p.MonthlyIncome = p.Salary.Add(p.OtherIncome)
	return p
}

func (p Profile) Validate() error {
	if err := validateUsername(p.Username); err != nil {
		return err
	}
	if !p.Occupation.Valid() {
		return ErrInvalidOccupation
	}
	if err := validateNonNegative(p.Salary, p.OtherIncome, p.SpendableLimit,
		p.SavingsGoal, p.CurrentSavings, p.EmergencyFund); err != nil {
		return err
	}
	// MonthlyIncome is derived, so it is range checked on its own.
	return validateNonNegative(p.MonthlyIncome)
}

func (u LimitsUpdate) Validate() error {
	if err := validateNonNegative(u.SpendableLimit, u.CurrentSavings, u.EmergencyFund); err != nil {
		return err
	}
	if u.SavingsGoal != nil {
		return validateNonNegative(*u.SavingsGoal)
	}
	return nil
}

// Apply overwrites the limit fields of p. SavingsGoal is kept when the update leaves it unset.
func (u LimitsUpdate) Apply(p Profile) Profile {
	p.SpendableLimit = u.SpendableLimit
	p.CurrentSavings = u.CurrentSavings
	p.EmergencyFund = u.EmergencyFund
	if u.SavingsGoal != nil {
		p.SavingsGoal = *u.SavingsGoal
	}
	return p
}

func (t Transaction) Validate() error {
	if err := validateUsername(t.Username); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-03-09" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if _, err := ParseDate("09/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Username:    "alice",
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		Category:    CategoryFood,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Username: "alice", Description: "a", Amount: Money{Cents: 1}, Category: CategoryFood}, ErrInvalidDate},
		{Transaction{Username: "alice", Date: NewDate(2025, 1, 1), Description: "  ", Amount: Money{Cents: 1}, Category: CategoryFood}, ErrEmptyDescription},
		{Transaction{Username: "alice", Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}, Category: CategoryFood}, ErrInvalidAmount},
		{Transaction{Username: "alice", Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: -5}, Category: CategoryFood}, ErrInvalidAmount},
		{Transaction{Username: "alice", Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "Gadgets"}, ErrInvalidCategory},
		{Transaction{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: CategoryFood}, ErrEmptyUsername},
	}
	for i, tc := range bads {
		err := tc.tx.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected ErrValidation in chain", i)
		}
	}
}

func TestRegistrationValidate(t *testing.T) {
	base := Registration{
		Username:        "alice",
		Password:        "pw",
		ConfirmPassword: "pw",
		Currency:        CurrencyINR,
		AcceptedTerms:   true,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mismatch := base
	mismatch.ConfirmPassword = "other"
	if err := mismatch.Validate(); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	noTerms := base
	noTerms.AcceptedTerms = false
	if err := noTerms.Validate(); !errors.Is(err, ErrTermsNotAccepted) {
		t.Fatalf("expected ErrTermsNotAccepted, got %v", err)
	}

	noUser := base
	noUser.Username = " "
	if err := noUser.Validate(); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}

	badEmail := base
	badEmail.Email = "not-an-email"
	if err := badEmail.Validate(); !errors.Is(err, ErrInvalidEmailAddress) {
		t.Fatalf("expected ErrInvalidEmailAddress, got %v", err)
	}
}

func TestProfileDerivedIncome(t *testing.T) {
	p := Profile{Salary: Money{Cents: 300000}, OtherIncome: Money{Cents: 20000}, MonthlyIncome: Money{Cents: 1}}
	if got := p.WithDerivedIncome().MonthlyIncome.Cents; got != 320000 {
		t.Fatalf("expected 320000, got %d", got)
	}
}

func TestLimitsUpdateApply(t *testing.T) {
	p := Profile{SpendableLimit: Money{Cents: 500}, SavingsGoal: Money{Cents: 1000}}

	got := LimitsUpdate{SpendableLimit: Money{Cents: 800}}.Apply(p)
	if got.SpendableLimit.Cents != 800 || got.SavingsGoal.Cents != 1000 {
		t.Fatalf("unexpected profile %+v", got)
	}

	goal := Money{Cents: 2500}
	got = LimitsUpdate{SpendableLimit: Money{Cents: 800}, SavingsGoal: &goal}.Apply(p)
	if got.SavingsGoal.Cents != 2500 {
		t.Fatalf("expected savings goal overwritten, got %d", got.SavingsGoal.Cents)
	}
}

func TestProfileValidate_IncomeCeiling(t *testing.T) {
	p := Profile{
		Username:    "alice",
		Occupation:  OccupationJob,
		Salary:      Money{Cents: MaxAmountCents},
		OtherIncome: Money{Cents: MaxAmountCents},
	}.WithDerivedIncome()
	if p.MonthlyIncome.Cents <= 0 {
		t.Fatalf("derived income must not wrap, got %d", p.MonthlyIncome.Cents)
	}
	if err := p.Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	p.OtherIncome = Money{}
	p = p.WithDerivedIncome()
	if err := p.Validate(); err != nil {
		t.Fatalf("income at the ceiling must be valid, got %v", err)
	}

	p.Salary = Money{Cents: MaxAmountCents + 1}
	if err := p.WithDerivedIncome().Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge for salary, got %v", err)
	}
}

func TestTransactionValidate_AmountCeiling(t *testing.T) {
	tx := Transaction{Username: "a", Description: "x", Category: CategoryRent, Date: NewDate(2024, 1, 1)}
	tx.Amount = Money{Cents: MaxAmountCents}
	if err := tx.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	tx.Amount = Money{Cents: MaxAmountCents + 1}
	if err := tx.Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

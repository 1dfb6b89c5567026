package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !IsValidation(err) {
				t.Fatalf("%q expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestParseNonNegativeCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{"500", 50000, true},
		{"-5", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseNonNegativeCents(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	m := Money{Cents: 123456}
	if got := m.String(); got != "1234.56" {
		t.Fatalf("String() = %q", got)
	}
	if got := m.Format(CurrencyUSD); got != "$1234.56" {
		t.Fatalf("Format(USD) = %q", got)
	}
	if got := (Money{Cents: 5}).Format(CurrencyINR); got != "₹0.05" {
		t.Fatalf("Format(INR) = %q", got)
	}
	if got := (Money{Cents: 100}).Sub(Money{Cents: 250}); got.Cents != -150 {
		t.Fatalf("Sub = %d", got.Cents)
	}
}

func TestAmountCeiling(t *testing.T) {
	max := "100000000000" // MaxAmountCents in major units
	got, err := ParseDecimalToCents(max)
	if err != nil || got != MaxAmountCents {
		t.Fatalf("expected %d, got %d (err=%v)", MaxAmountCents, got, err)
	}

	for _, in := range []string{"100000000000.01", "50000000000000000", "92233720368547758.07"} {
		if _, err := ParseDecimalToCents(in); !errors.Is(err, ErrAmountTooLarge) {
			t.Fatalf("%q expected ErrAmountTooLarge, got %v", in, err)
		}
		if _, err := ParseNonNegativeCents(in); !errors.Is(err, ErrAmountTooLarge) {
			t.Fatalf("%q expected ErrAmountTooLarge from non-negative parse, got %v", in, err)
		}
	}

	if err := (Money{Cents: MaxAmountCents}).Validate(); err != nil {
		t.Fatalf("amount at the ceiling must be valid, got %v", err)
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the stores, services and the HTTP layer.
var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Field level validation errors. All of them match ErrValidation with errors.Is.
var (
	ErrInvalidDay          = invalid("invalid day")
	ErrInvalidMonth        = invalid("invalid month")
	ErrInvalidDate         = invalid("invalid date")
	ErrInvalidAmount       = invalid("invalid amount")
	ErrEmptyDescription    = invalid("empty description")
	ErrDescriptionTooLong  = invalid("description too long (max 200 characters)")
	ErrInvalidCategory     = invalid("invalid category")
	ErrEmptyUsername       = invalid("empty username")
	ErrEmptyPassword       = invalid("empty password")
	ErrPasswordMismatch    = invalid("passwords do not match")
	ErrTermsNotAccepted    = invalid("terms and conditions not accepted")
	ErrInvalidCurrency     = invalid("invalid currency")
	ErrInvalidOccupation   = invalid("invalid occupation")
	ErrNegativeAmount      = invalid("amount must not be negative")
	ErrAmountTooLarge      = invalid("amount too large")
	ErrUsernameTooLong     = invalid("username too long (max 64 characters)")
	ErrInvalidEmailAddress = invalid("invalid email address")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

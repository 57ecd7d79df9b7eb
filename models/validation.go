package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the base error every field-level validation failure
// wraps, so callers can classify with errors.Is.
var ErrValidation = errors.New("validation failed")

var (
	ErrEmptyName         = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyAddress      = fmt.Errorf("%w: address must be a non-empty mapping", ErrValidation)
	ErrNegativeRate      = fmt.Errorf("%w: hourly rate must be non-negative", ErrValidation)
	ErrNegativeBudget    = fmt.Errorf("%w: preferred budget must be non-negative", ErrValidation)
	ErrEmptyServiceEntry = fmt.Errorf("%w: service entry cannot be empty", ErrValidation)
)

// IsValidationError reports whether the error is a field-level
// validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ValidateName rejects empty or whitespace-only names
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// NormalizeEmail validates the email and returns it lower-cased
func NormalizeEmail(email string) (string, error) {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// ValidateAddress requires a non-empty mapping
func ValidateAddress(address Address) error {
	if len(address) == 0 {
		return ErrEmptyAddress
	}
	return nil
}

// ValidateHourlyRate accepts nil (unset) and non-negative values
func ValidateHourlyRate(rate *float64) error {
	if rate != nil && *rate < 0 {
		return ErrNegativeRate
	}
	return nil
}

// ValidatePreferredBudget accepts nil (unset) and non-negative values
func ValidatePreferredBudget(budget *float64) error {
	if budget != nil && *budget < 0 {
		return ErrNegativeBudget
	}
	return nil
}

// ValidateServiceEntry rejects empty or missing entry payloads
func ValidateServiceEntry(entry ServiceHistoryEntry) error {
	if len(entry) == 0 {
		return ErrEmptyServiceEntry
	}
	return nil
}

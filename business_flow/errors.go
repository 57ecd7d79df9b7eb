// Package businessflow contains the core business logic and use cases for account workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/ameyapb/user-search-backend/models"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountTypeMismatch = errors.New("account is not of the requested type")

	// Update errors
	ErrUpdateFieldsRequired = errors.New("at least one field must be provided for update")
)

// Error codes surfaced in API responses
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeAccountTypeMismatch = "ACCOUNT_TYPE_MISMATCH"
	CodePersistenceError    = "PERSISTENCE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// newValidationError wraps a field-level validation failure with its
// human-readable reason
func newValidationError(err error) *BusinessError {
	return NewBusinessError(CodeValidationError, err.Error(), err)
}

// newPersistenceError wraps a storage-layer failure; these are never
// retried and never swallowed
func newPersistenceError(message string, err error) *BusinessError {
	return NewBusinessError(CodePersistenceError, message, err)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountTypeMismatch(err error) bool {
	return errors.Is(err, ErrAccountTypeMismatch)
}

func IsValidationError(err error) bool {
	return models.IsValidationError(err)
}

func IsUpdateFieldsRequired(err error) bool {
	return errors.Is(err, ErrUpdateFieldsRequired)
}

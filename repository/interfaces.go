// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/ameyapb/user-search-backend/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// AccountRepository defines operations for accounts and their variant
// extension rows
type AccountRepository interface {
	// List returns joined records newest-created-first, optionally
	// filtered by type and by tag overlap (OR across requested tags)
	List(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error)

	// ByID returns the joined record, or nil when the id is unknown
	ByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// Create writes the base row and its extension row as one atomic unit
	Create(ctx context.Context, account *models.Account) error

	// Update writes only the tables for which at least one field is
	// present, re-stamping that table's updated_at
	Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error

	// AppendServiceHistory atomically appends one stamped entry to a
	// consumer's history; returns false when the id does not resolve to
	// a consumer extension row
	AppendServiceHistory(ctx context.Context, id uuid.UUID, entry models.ServiceHistoryEntry) (bool, error)

	// DeleteByID removes the base row (the extension row cascades);
	// returns whether a row existed
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ameyapb/user-search-backend/models"
	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account](db),
	}
}

// joined left-joins both extension tables so the same query serves every
// variant
func (r *AccountRepositoryImpl) joined(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Account{}).
		Joins("Provider").
		Joins("Consumer")
}

// List retrieves accounts matching the filter, newest-created-first
func (r *AccountRepositoryImpl) List(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error) {
	db := r.getDB(ctx)

	query := r.joined(db)
	if filter.ID != nil {
		query = query.Where("accounts.id = ?", *filter.ID)
	}
	if filter.Email != nil {
		query = query.Where("accounts.email = ?", *filter.Email)
	}
	if filter.AccountType != nil {
		query = query.Where("accounts.account_type = ?", filter.AccountType.String())
	}
	if len(filter.Tags) > 0 {
		// Array overlap: any of the requested tags matches
		query = query.Where("accounts.tags && ?", pq.Array(filter.Tags))
	}
	if filter.CreatedAfter != nil {
		query = query.Where("accounts.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("accounts.created_at <= ?", *filter.CreatedBefore)
	}

	var accounts []*models.Account
	err := query.Order("accounts.created_at DESC").Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// ByID retrieves the joined record, or nil when the id is unknown
func (r *AccountRepositoryImpl) ByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	result, err := firstOrNil(r.joined(db).Where("accounts.id = ?", id), &account)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", id, err)
	}

	return result, nil
}

// Create writes the base row and the matching extension row as one
// atomic unit; GORM creates the set association inside the same
// transaction, so the pair is never partially visible
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *models.Account) error {
	return r.Save(ctx, account)
}

// Update splits the incoming field set into base and extension fields
// and writes only the tables for which at least one field is present,
// re-stamping that table's updated_at
func (r *AccountRepositoryImpl) Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if update.HasBaseFields() {
		base := map[string]any{"updated_at": utils.UTCNow()}
		if update.Name != nil {
			base["name"] = *update.Name
		}
		if update.Email != nil {
			base["email"] = *update.Email
		}
		if update.Address != nil {
			base["address"] = *update.Address
		}
		if update.Tags != nil {
			base["tags"] = pq.StringArray(*update.Tags)
		}

		err = db.Model(&models.Account{}).Where("id = ?", id).Updates(base).Error
		if err != nil {
			err = fmt.Errorf("failed to update account %s: %w", id, err)
			return err
		}
	}

	if update.HasProviderFields() {
		ext := map[string]any{"updated_at": utils.UTCNow()}
		if update.HourlyRate != nil {
			ext["hourly_rate"] = *update.HourlyRate
		}
		if update.Availability != nil {
			ext["availability"] = update.Availability
		}

		err = db.Model(&models.ServiceProvider{}).Where("account_id = ?", id).Updates(ext).Error
		if err != nil {
			err = fmt.Errorf("failed to update service provider %s: %w", id, err)
			return err
		}
	}

	if update.HasConsumerFields() {
		ext := map[string]any{"updated_at": utils.UTCNow()}
		if update.PreferredBudget != nil {
			ext["preferred_budget"] = *update.PreferredBudget
		}

		err = db.Model(&models.ServiceConsumer{}).Where("account_id = ?", id).Updates(ext).Error
		if err != nil {
			err = fmt.Errorf("failed to update service consumer %s: %w", id, err)
			return err
		}
	}

	return nil
}

// AppendServiceHistory appends one stamped entry to the existing ordered
// sequence in place; zero rows affected means the id does not resolve to
// a consumer extension row
func (r *AccountRepositoryImpl) AppendServiceHistory(ctx context.Context, id uuid.UUID, entry models.ServiceHistoryEntry) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	stamped := models.StampServiceEntry(entry, utils.UTCNow())
	payload, err := json.Marshal(models.ServiceHistory{stamped})
	if err != nil {
		return false, fmt.Errorf("failed to encode service history entry: %w", err)
	}

	result := db.Exec(
		`UPDATE service_consumers
		 SET service_history = service_history || ?::jsonb, updated_at = ?
		 WHERE account_id = ?`,
		string(payload), utils.UTCNow(), id,
	)
	if result.Error != nil {
		err = fmt.Errorf("failed to append service history for %s: %w", id, result.Error)
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// DeleteByID removes the base row; the extension row is removed by the
// ON DELETE CASCADE constraint as part of the same statement
func (r *AccountRepositoryImpl) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		err = fmt.Errorf("failed to delete account %s: %w", id, result.Error)
		return false, err
	}

	return result.RowsAffected > 0, nil
}

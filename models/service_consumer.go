package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
)

// ServiceHistoryEntry is one append-only record of a past service
// transaction. The "added_at" key is stamped at insertion time.
type ServiceHistoryEntry map[string]any

// ServiceHistory is the ordered, append-only sequence of service records
// stored as JSONB
type ServiceHistory []ServiceHistoryEntry

// Value implements the driver.Valuer interface for ServiceHistory
func (h ServiceHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ServiceHistory{}
	}
	return json.Marshal(h)
}

// Scan implements the sql.Scanner interface for ServiceHistory
func (h *ServiceHistory) Scan(value any) error {
	if value == nil {
		*h = ServiceHistory{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ServiceHistory", value)
	}

	return json.Unmarshal(bytes, h)
}

// ServiceConsumer holds the consumer-only columns, one-to-one with the
// base account row.
// Table: service_consumers
type ServiceConsumer struct {
	AccountID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"account_id"`
	PreferredBudget *float64       `gorm:"type:numeric(12,2)" json:"preferred_budget,omitempty"`
	ServiceHistory  ServiceHistory `gorm:"type:jsonb;not null;default:'[]'" json:"service_history"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ServiceConsumer) TableName() string {
	return "service_consumers"
}

// SetPreferredBudget sets the preferred budget. A nil budget clears it.
// Negative budgets fail validation. Any accepted call re-stamps UpdatedAt.
func (c *ServiceConsumer) SetPreferredBudget(budget *float64) error {
	if err := ValidatePreferredBudget(budget); err != nil {
		return err
	}
	c.PreferredBudget = budget
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// AddServiceToHistory appends one entry to the history, stamping it with
// added_at. Order is insertion order.
func (c *ServiceConsumer) AddServiceToHistory(entry ServiceHistoryEntry) error {
	if err := ValidateServiceEntry(entry); err != nil {
		return err
	}
	c.ServiceHistory = append(c.ServiceHistory, StampServiceEntry(entry, utils.UTCNow()))
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// StampServiceEntry returns a copy of the entry augmented with the
// server-assigned added_at timestamp
func StampServiceEntry(entry ServiceHistoryEntry, at time.Time) ServiceHistoryEntry {
	stamped := make(ServiceHistoryEntry, len(entry)+1)
	for k, v := range entry {
		stamped[k] = v
	}
	stamped["added_at"] = at.Format(time.RFC3339)
	return stamped
}

// NewServiceConsumer creates a consumer-typed account with its extension
// record. Both carry equal UTC creation timestamps.
func NewServiceConsumer(name, email string, address Address, tags []string, preferredBudget *float64, serviceHistory ServiceHistory) (*Account, error) {
	if err := ValidatePreferredBudget(preferredBudget); err != nil {
		return nil, err
	}

	account, err := newAccount(name, email, address, tags, AccountTypeServiceConsumer)
	if err != nil {
		return nil, err
	}

	if serviceHistory == nil {
		serviceHistory = ServiceHistory{}
	}

	account.Consumer = &ServiceConsumer{
		AccountID:       account.ID,
		PreferredBudget: preferredBudget,
		ServiceHistory:  serviceHistory,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
	return account, nil
}

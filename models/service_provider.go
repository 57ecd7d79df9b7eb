package models

import (
	"encoding/json"
	"time"

	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
)

// ServiceProvider holds the provider-only columns, one-to-one with the
// base account row.
// Table: service_providers
type ServiceProvider struct {
	AccountID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"account_id"`
	HourlyRate   *float64        `gorm:"type:numeric(12,2)" json:"hourly_rate,omitempty"`
	Availability json.RawMessage `gorm:"type:jsonb" json:"availability,omitempty"`
	CreatedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ServiceProvider) TableName() string {
	return "service_providers"
}

// SetHourlyRate sets the hourly rate. A nil rate clears it. Negative
// rates fail validation. Any accepted call re-stamps UpdatedAt.
func (p *ServiceProvider) SetHourlyRate(rate *float64) error {
	if err := ValidateHourlyRate(rate); err != nil {
		return err
	}
	p.HourlyRate = rate
	p.UpdatedAt = utils.UTCNow()
	return nil
}

// UpdateAvailability replaces the availability payload and re-stamps
// UpdatedAt
func (p *ServiceProvider) UpdateAvailability(availability json.RawMessage) {
	p.Availability = availability
	p.UpdatedAt = utils.UTCNow()
}

// NewServiceProvider creates a provider-typed account with its extension
// record. Both carry equal UTC creation timestamps.
func NewServiceProvider(name, email string, address Address, tags []string, hourlyRate *float64, availability json.RawMessage) (*Account, error) {
	if err := ValidateHourlyRate(hourlyRate); err != nil {
		return nil, err
	}

	account, err := newAccount(name, email, address, tags, AccountTypeServiceProvider)
	if err != nil {
		return nil, err
	}

	account.Provider = &ServiceProvider{
		AccountID:    account.ID,
		HourlyRate:   hourlyRate,
		Availability: availability,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	return account, nil
}

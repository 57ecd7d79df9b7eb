// Package models contains domain entities and business models for the account service
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AccountType discriminates the concrete account variant
type AccountType string

const (
	AccountTypeServiceProvider AccountType = "service_provider"
	AccountTypeServiceConsumer AccountType = "service_consumer"
	AccountTypeAdmin           AccountType = "admin"
)

// String returns the string representation of the account type
func (t AccountType) String() string {
	return string(t)
}

// DisplayName returns the variant name used in user-facing messages
func (t AccountType) DisplayName() string {
	switch t {
	case AccountTypeServiceProvider:
		return "ServiceProvider"
	case AccountTypeServiceConsumer:
		return "ServiceConsumer"
	case AccountTypeAdmin:
		return "Admin"
	default:
		return string(t)
	}
}

// Valid checks if the account type is valid
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeServiceProvider, AccountTypeServiceConsumer, AccountTypeAdmin:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AccountType
func (t *AccountType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = AccountType(v)
	case []byte:
		*t = AccountType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AccountType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AccountType
func (t AccountType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid AccountType: %s", t)
	}
	return string(t), nil
}

// Address is the structured postal address stored as JSONB (e.g. street/city)
type Address map[string]string

// Value implements the driver.Valuer interface for Address
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface for Address
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	return json.Unmarshal(bytes, a)
}

// Account represents the shared identity record in the database.
// Exactly one of Provider/Consumer exists per account id; the extension
// row shares the account's lifecycle via ON DELETE CASCADE.
type Account struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Email       string         `gorm:"size:255;not null;index:idx_accounts_email" json:"email"`
	Address     Address        `gorm:"type:jsonb;not null" json:"address"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}';index:idx_accounts_tags,type:gin" json:"tags"`
	AccountType AccountType    `gorm:"type:account_type_enum;not null;index:idx_accounts_account_type" json:"account_type"`
	CreatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Provider *ServiceProvider `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	Consumer *ServiceConsumer `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE" json:"consumer,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uuid.UUID
	Email         *string
	AccountType   *AccountType
	Tags          []string // OR semantics: matches accounts whose tag set intersects
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *Account) IsProvider() bool {
	return a.AccountType == AccountTypeServiceProvider
}

func (a *Account) IsConsumer() bool {
	return a.AccountType == AccountTypeServiceConsumer
}

// HasTag reports whether the tag is present in the account's tag set
func (a *Account) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag inserts a tag into the tag set. Adding an empty tag or a tag
// that is already present changes nothing, including UpdatedAt.
func (a *Account) AddTag(tag string) {
	if tag == "" || a.HasTag(tag) {
		return
	}
	a.Tags = append(a.Tags, tag)
	a.UpdatedAt = utils.UTCNow()
}

// RemoveTag removes a tag from the tag set. Removing an absent tag
// changes nothing, including UpdatedAt.
func (a *Account) RemoveTag(tag string) {
	for i, t := range a.Tags {
		if t == tag {
			a.Tags = append(a.Tags[:i], a.Tags[i+1:]...)
			a.UpdatedAt = utils.UTCNow()
			return
		}
	}
}

// ReplaceTags replaces the whole tag set. Nil input is the empty set.
// UpdatedAt advances only when the resulting set differs from the
// current one.
func (a *Account) ReplaceTags(newTags []string) {
	deduped := dedupeTags(newTags)
	if sameTagSet(a.Tags, deduped) {
		return
	}
	a.Tags = deduped
	a.UpdatedAt = utils.UTCNow()
}

// SortedTags returns the tag set as a lexicographically sorted slice for
// stable wire output
func (a *Account) SortedTags() []string {
	out := make([]string, len(a.Tags))
	copy(out, a.Tags)
	sort.Strings(out)
	return out
}

func dedupeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// newAccount builds the shared base record for both variants
func newAccount(name, email string, address Address, tags []string, accountType AccountType) (*Account, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	return &Account{
		ID:          uuid.New(),
		Name:        name,
		Email:       normalized,
		Address:     address,
		Tags:        dedupeTags(tags),
		AccountType: accountType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

package dto

import "encoding/json"

// AccountDTO is the flat over-the-wire account representation used by
// every read/list/create/update response. Tags are sorted for stable
// output; timestamps are RFC3339 UTC strings.
type AccountDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Address     map[string]string `json:"address"`
	Tags        []string          `json:"tags"`
	AccountType string            `json:"account_type"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`

	// Provider fields
	HourlyRate   *float64        `json:"hourly_rate,omitempty"`
	Availability json.RawMessage `json:"availability,omitempty"`

	// Consumer fields
	PreferredBudget *float64         `json:"preferred_budget,omitempty"`
	ServiceHistory  []map[string]any `json:"service_history,omitempty"`
}

// ListAccountsRequest carries the optional list filters
type ListAccountsRequest struct {
	AccountType string   `json:"account_type" validate:"omitempty,oneof=service_provider service_consumer admin"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// CreateProviderRequest is the creation payload for service providers
type CreateProviderRequest struct {
	Name         string            `json:"name" validate:"required"`
	Email        string            `json:"email" validate:"required,contains=@"`
	Address      map[string]string `json:"address" validate:"required,min=1"`
	Tags         []string          `json:"tags" validate:"omitempty,dive,min=1"`
	HourlyRate   *float64          `json:"hourly_rate" validate:"omitempty,gte=0"`
	Availability json.RawMessage   `json:"availability" validate:"omitempty"`
}

// CreateConsumerRequest is the creation payload for service consumers
type CreateConsumerRequest struct {
	Name            string            `json:"name" validate:"required"`
	Email           string            `json:"email" validate:"required,contains=@"`
	Address         map[string]string `json:"address" validate:"required,min=1"`
	Tags            []string          `json:"tags" validate:"omitempty,dive,min=1"`
	PreferredBudget *float64          `json:"preferred_budget" validate:"omitempty,gte=0"`
	ServiceHistory  []map[string]any  `json:"service_history" validate:"omitempty"`
}

// UpdateProviderRequest is the partial-update payload for service
// providers; absent fields leave the stored value untouched
type UpdateProviderRequest struct {
	Name         *string           `json:"name" validate:"omitempty,min=1"`
	Email        *string           `json:"email" validate:"omitempty,contains=@"`
	Address      map[string]string `json:"address" validate:"omitempty,min=1"`
	Tags         []string          `json:"tags" validate:"omitempty,dive,min=1"`
	HourlyRate   *float64          `json:"hourly_rate" validate:"omitempty,gte=0"`
	Availability json.RawMessage   `json:"availability" validate:"omitempty"`
}

// IsEmpty reports whether no field was provided at all
func (r UpdateProviderRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Address == nil &&
		r.Tags == nil && r.HourlyRate == nil && r.Availability == nil
}

// UpdateConsumerRequest is the partial-update payload for service
// consumers; absent fields leave the stored value untouched
type UpdateConsumerRequest struct {
	Name            *string           `json:"name" validate:"omitempty,min=1"`
	Email           *string           `json:"email" validate:"omitempty,contains=@"`
	Address         map[string]string `json:"address" validate:"omitempty,min=1"`
	Tags            []string          `json:"tags" validate:"omitempty,dive,min=1"`
	PreferredBudget *float64          `json:"preferred_budget" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether no field was provided at all
func (r UpdateConsumerRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Address == nil &&
		r.Tags == nil && r.PreferredBudget == nil
}

// AccountResponse wraps one serialized account with a human-readable
// message
type AccountResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// AccountListResponse wraps a serialized account list with a
// human-readable message
type AccountListResponse struct {
	Message  string       `json:"message"`
	Accounts []AccountDTO `json:"accounts"`
}

// DeleteAccountResponse reports the outcome of a delete
type DeleteAccountResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

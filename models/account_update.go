package models

import "encoding/json"

// AccountUpdate is an explicit partial-update set. A nil field is absent
// and leaves the stored value untouched; only tables that receive at
// least one field are written.
type AccountUpdate struct {
	// Base fields (accounts table)
	Name    *string
	Email   *string
	Address *Address
	Tags    *[]string

	// Provider fields (service_providers table)
	HourlyRate   *float64
	Availability json.RawMessage

	// Consumer fields (service_consumers table)
	PreferredBudget *float64
}

// HasBaseFields reports whether any accounts-table field is present
func (u AccountUpdate) HasBaseFields() bool {
	return u.Name != nil || u.Email != nil || u.Address != nil || u.Tags != nil
}

// HasProviderFields reports whether any service_providers-table field is
// present
func (u AccountUpdate) HasProviderFields() bool {
	return u.HourlyRate != nil || u.Availability != nil
}

// HasConsumerFields reports whether any service_consumers-table field is
// present
func (u AccountUpdate) HasConsumerFields() bool {
	return u.PreferredBudget != nil
}

package businessflow

import (
	"time"

	"github.com/ameyapb/user-search-backend/app/dto"
	"github.com/ameyapb/user-search-backend/models"
)

// serializeAccount is the single source of truth for the over-the-wire
// account representation. Every read/list/create/update response goes
// through it: base fields flat, tags sorted, type as its string code,
// timestamps RFC3339 UTC, plus the variant's extra fields.
func serializeAccount(account *models.Account) dto.AccountDTO {
	out := dto.AccountDTO{
		ID:          account.ID.String(),
		Name:        account.Name,
		Email:       account.Email,
		Address:     account.Address,
		Tags:        account.SortedTags(),
		AccountType: account.AccountType.String(),
		CreatedAt:   account.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   account.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if account.Provider != nil {
		out.HourlyRate = account.Provider.HourlyRate
		out.Availability = account.Provider.Availability
	}

	if account.Consumer != nil {
		out.PreferredBudget = account.Consumer.PreferredBudget
		history := make([]map[string]any, len(account.Consumer.ServiceHistory))
		for i, entry := range account.Consumer.ServiceHistory {
			history[i] = entry
		}
		out.ServiceHistory = history
	}

	return out
}

func serializeAccounts(accounts []*models.Account) []dto.AccountDTO {
	out := make([]dto.AccountDTO, len(accounts))
	for i, account := range accounts {
		out[i] = serializeAccount(account)
	}
	return out
}

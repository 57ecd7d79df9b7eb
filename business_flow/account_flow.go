package businessflow

import (
	"context"
	"fmt"

	"github.com/ameyapb/user-search-backend/app/dto"
	"github.com/ameyapb/user-search-backend/models"
	"github.com/ameyapb/user-search-backend/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountFlow is the only entry point the HTTP layer calls for account
// operations
type AccountFlow interface {
	ListAccounts(ctx context.Context, req *dto.ListAccountsRequest) (*dto.AccountListResponse, error)
	GetAccount(ctx context.Context, id string) (*dto.AccountResponse, error)
	DeleteAccount(ctx context.Context, id string) (*dto.DeleteAccountResponse, error)

	CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*dto.AccountResponse, error)
	GetProvider(ctx context.Context, id string) (*dto.AccountResponse, error)
	UpdateProvider(ctx context.Context, id string, req *dto.UpdateProviderRequest) (*dto.AccountResponse, error)
	DeleteProvider(ctx context.Context, id string) (*dto.DeleteAccountResponse, error)

	CreateConsumer(ctx context.Context, req *dto.CreateConsumerRequest) (*dto.AccountResponse, error)
	GetConsumer(ctx context.Context, id string) (*dto.AccountResponse, error)
	UpdateConsumer(ctx context.Context, id string, req *dto.UpdateConsumerRequest) (*dto.AccountResponse, error)
	DeleteConsumer(ctx context.Context, id string) (*dto.DeleteAccountResponse, error)

	AddServiceHistory(ctx context.Context, id string, entry map[string]any) (*dto.AccountResponse, error)
}

// AccountFlowImpl implements AccountFlow
type AccountFlowImpl struct {
	accountRepo repository.AccountRepository
	db          *gorm.DB
}

// NewAccountFlow creates a new account flow
func NewAccountFlow(accountRepo repository.AccountRepository, db *gorm.DB) AccountFlow {
	return &AccountFlowImpl{
		accountRepo: accountRepo,
		db:          db,
	}
}

// ListAccounts returns every account matching the optional type and tag
// filters, newest-created-first
func (f *AccountFlowImpl) ListAccounts(ctx context.Context, req *dto.ListAccountsRequest) (*dto.AccountListResponse, error) {
	filter := models.AccountFilter{}
	if req != nil {
		if req.AccountType != "" {
			accountType := models.AccountType(req.AccountType)
			if !accountType.Valid() {
				return nil, NewBusinessError(CodeValidationError,
					fmt.Sprintf("unknown account type %q", req.AccountType), models.ErrValidation)
			}
			filter.AccountType = &accountType
		}
		filter.Tags = req.Tags
	}

	accounts, err := f.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("Failed to list accounts", err)
	}

	return &dto.AccountListResponse{
		Message:  fmt.Sprintf("Found %d accounts", len(accounts)),
		Accounts: serializeAccounts(accounts),
	}, nil
}

// GetAccount retrieves an account of any variant by id
func (f *AccountFlowImpl) GetAccount(ctx context.Context, id string) (*dto.AccountResponse, error) {
	account, err := f.resolveAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "Account found",
		Account: serializeAccount(account),
	}, nil
}

// DeleteAccount deletes an account of any variant by id; the extension
// row is removed by the storage layer as part of the same operation
func (f *AccountFlowImpl) DeleteAccount(ctx context.Context, id string) (*dto.DeleteAccountResponse, error) {
	accountID, err := parseAccountID(id)
	if err != nil {
		return nil, err
	}

	existed, err := f.accountRepo.DeleteByID(ctx, accountID)
	if err != nil {
		return nil, newPersistenceError("Failed to delete account", err)
	}
	if !existed {
		return nil, NewBusinessError(CodeAccountNotFound, "Account not found", ErrAccountNotFound)
	}

	return &dto.DeleteAccountResponse{
		Message: "Account deleted successfully",
		ID:      accountID.String(),
	}, nil
}

// CreateProvider validates the payload, writes the base and extension
// rows atomically, then re-reads so the response reflects exactly what
// persistence computed
func (f *AccountFlowImpl) CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*dto.AccountResponse, error) {
	account, err := models.NewServiceProvider(req.Name, req.Email, models.Address(req.Address), req.Tags, req.HourlyRate, req.Availability)
	if err != nil {
		return nil, newValidationError(err)
	}

	if err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.accountRepo.Create(txCtx, account)
	}); err != nil {
		return nil, newPersistenceError("Failed to create service provider", err)
	}

	created, err := f.reloadAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "ServiceProvider created successfully",
		Account: serializeAccount(created),
	}, nil
}

// GetProvider retrieves a provider-typed account
func (f *AccountFlowImpl) GetProvider(ctx context.Context, id string) (*dto.AccountResponse, error) {
	account, err := f.resolveVariant(ctx, id, models.AccountTypeServiceProvider)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "ServiceProvider found",
		Account: serializeAccount(account),
	}, nil
}

// UpdateProvider applies a partial update to a provider-typed account.
// Only fields present in the request are changed.
func (f *AccountFlowImpl) UpdateProvider(ctx context.Context, id string, req *dto.UpdateProviderRequest) (*dto.AccountResponse, error) {
	account, err := f.resolveVariant(ctx, id, models.AccountTypeServiceProvider)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, NewBusinessError(CodeValidationError, "No data provided", ErrUpdateFieldsRequired)
	}

	update, err := f.buildBaseUpdate(account, req.Name, req.Email, req.Address, req.Tags)
	if err != nil {
		return nil, err
	}
	if req.HourlyRate != nil {
		if err := models.ValidateHourlyRate(req.HourlyRate); err != nil {
			return nil, newValidationError(err)
		}
		update.HourlyRate = req.HourlyRate
	}
	update.Availability = req.Availability

	return f.applyUpdate(ctx, account.ID, update, "ServiceProvider updated successfully")
}

// DeleteProvider deletes a provider-typed account
func (f *AccountFlowImpl) DeleteProvider(ctx context.Context, id string) (*dto.DeleteAccountResponse, error) {
	return f.deleteVariant(ctx, id, models.AccountTypeServiceProvider, "ServiceProvider deleted successfully")
}

// CreateConsumer validates the payload, writes the base and extension
// rows atomically, then re-reads so the response reflects exactly what
// persistence computed
func (f *AccountFlowImpl) CreateConsumer(ctx context.Context, req *dto.CreateConsumerRequest) (*dto.AccountResponse, error) {
	history := make(models.ServiceHistory, len(req.ServiceHistory))
	for i, entry := range req.ServiceHistory {
		history[i] = models.ServiceHistoryEntry(entry)
	}

	account, err := models.NewServiceConsumer(req.Name, req.Email, models.Address(req.Address), req.Tags, req.PreferredBudget, history)
	if err != nil {
		return nil, newValidationError(err)
	}

	if err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.accountRepo.Create(txCtx, account)
	}); err != nil {
		return nil, newPersistenceError("Failed to create service consumer", err)
	}

	created, err := f.reloadAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "ServiceConsumer created successfully",
		Account: serializeAccount(created),
	}, nil
}

// GetConsumer retrieves a consumer-typed account
func (f *AccountFlowImpl) GetConsumer(ctx context.Context, id string) (*dto.AccountResponse, error) {
	account, err := f.resolveVariant(ctx, id, models.AccountTypeServiceConsumer)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "ServiceConsumer found",
		Account: serializeAccount(account),
	}, nil
}

// UpdateConsumer applies a partial update to a consumer-typed account.
// Only fields present in the request are changed.
func (f *AccountFlowImpl) UpdateConsumer(ctx context.Context, id string, req *dto.UpdateConsumerRequest) (*dto.AccountResponse, error) {
	account, err := f.resolveVariant(ctx, id, models.AccountTypeServiceConsumer)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, NewBusinessError(CodeValidationError, "No data provided", ErrUpdateFieldsRequired)
	}

	update, err := f.buildBaseUpdate(account, req.Name, req.Email, req.Address, req.Tags)
	if err != nil {
		return nil, err
	}
	if req.PreferredBudget != nil {
		if err := models.ValidatePreferredBudget(req.PreferredBudget); err != nil {
			return nil, newValidationError(err)
		}
		update.PreferredBudget = req.PreferredBudget
	}

	return f.applyUpdate(ctx, account.ID, update, "ServiceConsumer updated successfully")
}

// DeleteConsumer deletes a consumer-typed account
func (f *AccountFlowImpl) DeleteConsumer(ctx context.Context, id string) (*dto.DeleteAccountResponse, error) {
	return f.deleteVariant(ctx, id, models.AccountTypeServiceConsumer, "ServiceConsumer deleted successfully")
}

// AddServiceHistory appends one entry, with a server-assigned added_at,
// to a consumer's history. Providers get a type-mismatch error.
func (f *AccountFlowImpl) AddServiceHistory(ctx context.Context, id string, entry map[string]any) (*dto.AccountResponse, error) {
	if err := models.ValidateServiceEntry(models.ServiceHistoryEntry(entry)); err != nil {
		return nil, newValidationError(err)
	}

	account, err := f.resolveVariant(ctx, id, models.AccountTypeServiceConsumer)
	if err != nil {
		return nil, err
	}

	var appended bool
	if err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var txErr error
		appended, txErr = f.accountRepo.AppendServiceHistory(txCtx, account.ID, models.ServiceHistoryEntry(entry))
		return txErr
	}); err != nil {
		return nil, newPersistenceError("Failed to add service to history", err)
	}
	if !appended {
		return nil, NewBusinessError(CodeAccountNotFound, "ServiceConsumer not found", ErrAccountNotFound)
	}

	updated, err := f.reloadAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: "Service added to history successfully",
		Account: serializeAccount(updated),
	}, nil
}

// buildBaseUpdate validates and collects the shared base fields of a
// partial update
func (f *AccountFlowImpl) buildBaseUpdate(account *models.Account, name, email *string, address map[string]string, tags []string) (models.AccountUpdate, error) {
	var update models.AccountUpdate

	if name != nil {
		if err := models.ValidateName(*name); err != nil {
			return update, newValidationError(err)
		}
		update.Name = name
	}
	if email != nil {
		normalized, err := models.NormalizeEmail(*email)
		if err != nil {
			return update, newValidationError(err)
		}
		update.Email = &normalized
	}
	if address != nil {
		addr := models.Address(address)
		if err := models.ValidateAddress(addr); err != nil {
			return update, newValidationError(err)
		}
		update.Address = &addr
	}
	if tags != nil {
		// Collapse duplicates through the entity's set semantics
		account.ReplaceTags(tags)
		deduped := []string(account.Tags)
		update.Tags = &deduped
	}

	return update, nil
}

// applyUpdate writes the split field set transactionally and re-reads
// the record so the response reflects what persistence computed
func (f *AccountFlowImpl) applyUpdate(ctx context.Context, id uuid.UUID, update models.AccountUpdate, message string) (*dto.AccountResponse, error) {
	if err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.accountRepo.Update(txCtx, id, update)
	}); err != nil {
		return nil, newPersistenceError("Failed to update account", err)
	}

	updated, err := f.reloadAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.AccountResponse{
		Message: message,
		Account: serializeAccount(updated),
	}, nil
}

func (f *AccountFlowImpl) deleteVariant(ctx context.Context, id string, want models.AccountType, message string) (*dto.DeleteAccountResponse, error) {
	account, err := f.resolveVariant(ctx, id, want)
	if err != nil {
		return nil, err
	}

	existed, err := f.accountRepo.DeleteByID(ctx, account.ID)
	if err != nil {
		return nil, newPersistenceError("Failed to delete account", err)
	}
	if !existed {
		return nil, NewBusinessError(CodeAccountNotFound, "Account not found", ErrAccountNotFound)
	}

	return &dto.DeleteAccountResponse{
		Message: message,
		ID:      account.ID.String(),
	}, nil
}

// resolveAccount fetches by id, mapping absence to a not-found error
func (f *AccountFlowImpl) resolveAccount(ctx context.Context, id string) (*models.Account, error) {
	accountID, err := parseAccountID(id)
	if err != nil {
		return nil, err
	}

	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, newPersistenceError("Failed to fetch account", err)
	}
	if account == nil {
		return nil, NewBusinessError(CodeAccountNotFound, "Account not found", ErrAccountNotFound)
	}

	return account, nil
}

// resolveVariant fetches by id and enforces the variant-matching rule:
// absence and wrong-variant are distinct outcomes
func (f *AccountFlowImpl) resolveVariant(ctx context.Context, id string, want models.AccountType) (*models.Account, error) {
	account, err := f.resolveAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.AccountType != want {
		return nil, NewBusinessError(CodeAccountTypeMismatch,
			fmt.Sprintf("Account is not a %s", want.DisplayName()), ErrAccountTypeMismatch)
	}

	return account, nil
}

// reloadAccount re-reads a freshly written record; a missing row after a
// successful write is a storage anomaly, not a normal absence
func (f *AccountFlowImpl) reloadAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := f.accountRepo.ByID(ctx, id)
	if err != nil {
		return nil, newPersistenceError("Failed to fetch account", err)
	}
	if account == nil {
		return nil, newPersistenceError("Account disappeared after write", ErrAccountNotFound)
	}
	return account, nil
}

// parseAccountID parses the opaque identifier; a malformed id can never
// name an existing account
func parseAccountID(id string) (uuid.UUID, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, NewBusinessError(CodeAccountNotFound, "Account not found", ErrAccountNotFound)
	}
	return accountID, nil
}

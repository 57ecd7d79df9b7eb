package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/ameyapb/user-search-backend/app/dto"
	"github.com/ameyapb/user-search-backend/models"
	"github.com/ameyapb/user-search-backend/repository"
	testingutil "github.com/ameyapb/user-search-backend/testing"
	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() map[string]string {
	return map[string]string{
		"street": "123 Main St",
		"city":   "Springfield",
	}
}

func newTestFlow(testDB *testingutil.TestDB) AccountFlow {
	repo := repository.NewAccountRepository(testDB.DB)
	return NewAccountFlow(repo, testDB.DB)
}

func TestProviderLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestFlow(testDB)
		ctx := testingutil.CreateTestContext()

		availability, _ := json.Marshal(map[string]any{"monday": []string{"09:00-17:00"}})

		t.Run("Create", func(t *testing.T) {
			resp, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
				Name:         "Jane Plumber",
				Email:        "Jane@Example.com",
				Address:      testAddress(),
				Tags:         []string{"plumbing", "repair", "plumbing"},
				HourlyRate:   utils.ToPtr(80.0),
				Availability: availability,
			})
			require.NoError(t, err)

			assert.Equal(t, "ServiceProvider created successfully", resp.Message)
			assert.Equal(t, "jane@example.com", resp.Account.Email)
			assert.Equal(t, "service_provider", resp.Account.AccountType)
			assert.Equal(t, []string{"plumbing", "repair"}, resp.Account.Tags)
			require.NotNil(t, resp.Account.HourlyRate)
			assert.Equal(t, 80.0, *resp.Account.HourlyRate)
			assert.Nil(t, resp.Account.PreferredBudget)
			assert.NotEmpty(t, resp.Account.CreatedAt)
			assert.Equal(t, resp.Account.CreatedAt, resp.Account.UpdatedAt)
		})

		t.Run("CreateInvalid", func(t *testing.T) {
			_, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
				Name:    "Jane",
				Email:   "no-at-sign",
				Address: testAddress(),
			})
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var bizErr *BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, CodeValidationError, bizErr.Code)
		})

		t.Run("GetUpdateDelete", func(t *testing.T) {
			created, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
				Name:       "Bob Builder",
				Email:      "bob@example.com",
				Address:    testAddress(),
				HourlyRate: utils.ToPtr(60.0),
			})
			require.NoError(t, err)
			id := created.Account.ID

			got, err := flow.GetProvider(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "ServiceProvider found", got.Message)
			assert.Equal(t, id, got.Account.ID)

			updated, err := flow.UpdateProvider(ctx, id, &dto.UpdateProviderRequest{
				Name:       utils.ToPtr("Bob the Builder"),
				HourlyRate: utils.ToPtr(95.0),
			})
			require.NoError(t, err)
			assert.Equal(t, "ServiceProvider updated successfully", updated.Message)
			assert.Equal(t, "Bob the Builder", updated.Account.Name)
			assert.Equal(t, 95.0, *updated.Account.HourlyRate)
			// Untouched fields survive a partial update
			assert.Equal(t, "bob@example.com", updated.Account.Email)

			deleted, err := flow.DeleteProvider(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "ServiceProvider deleted successfully", deleted.Message)
			assert.Equal(t, id, deleted.ID)

			_, err = flow.GetProvider(ctx, id)
			assert.True(t, IsAccountNotFound(err))
		})

		t.Run("UpdateEmptyBody", func(t *testing.T) {
			created, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
				Name:    "Empty Update",
				Email:   "empty@example.com",
				Address: testAddress(),
			})
			require.NoError(t, err)

			_, err = flow.UpdateProvider(ctx, created.Account.ID, &dto.UpdateProviderRequest{})
			require.Error(t, err)
			assert.True(t, IsUpdateFieldsRequired(err))

			var bizErr *BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "No data provided", bizErr.Message)
		})

		t.Run("UpdateNegativeRate", func(t *testing.T) {
			created, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
				Name:    "Rate Check",
				Email:   "rate@example.com",
				Address: testAddress(),
			})
			require.NoError(t, err)

			_, err = flow.UpdateProvider(ctx, created.Account.ID, &dto.UpdateProviderRequest{
				HourlyRate: utils.ToPtr(-10.0),
			})
			assert.True(t, IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestConsumerLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreateWithHistory", func(t *testing.T) {
			resp, err := flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
				Name:            "John Buyer",
				Email:           "john@example.com",
				Address:         testAddress(),
				Tags:            []string{"gardening"},
				PreferredBudget: utils.ToPtr(500.0),
				ServiceHistory:  []map[string]any{{"service": "cleaning"}},
			})
			require.NoError(t, err)

			assert.Equal(t, "ServiceConsumer created successfully", resp.Message)
			assert.Equal(t, "service_consumer", resp.Account.AccountType)
			require.NotNil(t, resp.Account.PreferredBudget)
			assert.Equal(t, 500.0, *resp.Account.PreferredBudget)
			require.Len(t, resp.Account.ServiceHistory, 1)
			assert.Equal(t, "cleaning", resp.Account.ServiceHistory[0]["service"])
		})

		t.Run("AddServiceHistory", func(t *testing.T) {
			created, err := flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
				Name:    "History Keeper",
				Email:   "history@example.com",
				Address: testAddress(),
			})
			require.NoError(t, err)
			id := created.Account.ID

			resp, err := flow.AddServiceHistory(ctx, id, map[string]any{
				"service": "plumbing",
				"cost":    120.0,
			})
			require.NoError(t, err)
			assert.Equal(t, "Service added to history successfully", resp.Message)
			require.Len(t, resp.Account.ServiceHistory, 1)
			assert.Equal(t, "plumbing", resp.Account.ServiceHistory[0]["service"])
			assert.NotEmpty(t, resp.Account.ServiceHistory[0]["added_at"])
		})

		t.Run("AddServiceHistoryEmptyEntry", func(t *testing.T) {
			created, err := flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
				Name:    "Empty Entry",
				Email:   "entry@example.com",
				Address: testAddress(),
			})
			require.NoError(t, err)

			_, err = flow.AddServiceHistory(ctx, created.Account.ID, map[string]any{})
			assert.True(t, IsValidationError(err))
		})

		t.Run("UpdateBudget", func(t *testing.T) {
			created, err := flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
				Name:            "Budget Holder",
				Email:           "budget@example.com",
				Address:         testAddress(),
				PreferredBudget: utils.ToPtr(100.0),
			})
			require.NoError(t, err)

			updated, err := flow.UpdateConsumer(ctx, created.Account.ID, &dto.UpdateConsumerRequest{
				PreferredBudget: utils.ToPtr(750.0),
			})
			require.NoError(t, err)
			assert.Equal(t, "ServiceConsumer updated successfully", updated.Message)
			assert.Equal(t, 750.0, *updated.Account.PreferredBudget)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVariantGating(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestFlow(testDB)
		ctx := testingutil.CreateTestContext()

		provider, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
			Name:    "Gated Provider",
			Email:   "gated.provider@example.com",
			Address: testAddress(),
		})
		require.NoError(t, err)

		consumer, err := flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
			Name:    "Gated Consumer",
			Email:   "gated.consumer@example.com",
			Address: testAddress(),
		})
		require.NoError(t, err)

		t.Run("WrongVariantIsMismatch", func(t *testing.T) {
			_, err := flow.GetProvider(ctx, consumer.Account.ID)
			require.Error(t, err)
			assert.True(t, IsAccountTypeMismatch(err))

			var bizErr *BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "Account is not a ServiceProvider", bizErr.Message)

			_, err = flow.GetConsumer(ctx, provider.Account.ID)
			assert.True(t, IsAccountTypeMismatch(err))

			_, err = flow.AddServiceHistory(ctx, provider.Account.ID, map[string]any{"service": "x"})
			assert.True(t, IsAccountTypeMismatch(err))

			_, err = flow.DeleteConsumer(ctx, provider.Account.ID)
			assert.True(t, IsAccountTypeMismatch(err))
		})

		t.Run("UnknownIDIsNotFound", func(t *testing.T) {
			_, err := flow.GetProvider(ctx, uuid.NewString())
			assert.True(t, IsAccountNotFound(err))

			_, err = flow.GetAccount(ctx, uuid.NewString())
			assert.True(t, IsAccountNotFound(err))

			_, err = flow.DeleteAccount(ctx, uuid.NewString())
			assert.True(t, IsAccountNotFound(err))
		})

		t.Run("MalformedIDIsNotFound", func(t *testing.T) {
			_, err := flow.GetProvider(ctx, "not-a-uuid")
			assert.True(t, IsAccountNotFound(err))
		})

		t.Run("GenericEndpointsServeBothVariants", func(t *testing.T) {
			got, err := flow.GetAccount(ctx, provider.Account.ID)
			require.NoError(t, err)
			assert.Equal(t, "service_provider", got.Account.AccountType)

			got, err = flow.GetAccount(ctx, consumer.Account.ID)
			require.NoError(t, err)
			assert.Equal(t, "service_consumer", got.Account.AccountType)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListAccounts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTestFlow(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := flow.CreateProvider(ctx, &dto.CreateProviderRequest{
			Name:    "Listed Provider",
			Email:   "listed.provider@example.com",
			Address: testAddress(),
			Tags:    []string{"plumbing"},
		})
		require.NoError(t, err)

		_, err = flow.CreateConsumer(ctx, &dto.CreateConsumerRequest{
			Name:    "Listed Consumer",
			Email:   "listed.consumer@example.com",
			Address: testAddress(),
			Tags:    []string{"gardening"},
		})
		require.NoError(t, err)

		t.Run("All", func(t *testing.T) {
			resp, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{})
			require.NoError(t, err)
			assert.Equal(t, "Found 2 accounts", resp.Message)
			assert.Len(t, resp.Accounts, 2)
		})

		t.Run("ByType", func(t *testing.T) {
			resp, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{
				AccountType: models.AccountTypeServiceProvider.String(),
			})
			require.NoError(t, err)
			require.Len(t, resp.Accounts, 1)
			assert.Equal(t, "Listed Provider", resp.Accounts[0].Name)
		})

		t.Run("ByTags", func(t *testing.T) {
			resp, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{
				Tags: []string{"gardening", "missing"},
			})
			require.NoError(t, err)
			require.Len(t, resp.Accounts, 1)
			assert.Equal(t, "Listed Consumer", resp.Accounts[0].Name)
		})

		t.Run("NoMatches", func(t *testing.T) {
			resp, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{
				Tags: []string{"nothing"},
			})
			require.NoError(t, err)
			assert.Equal(t, "Found 0 accounts", resp.Message)
			assert.Empty(t, resp.Accounts)
		})

		t.Run("InvalidType", func(t *testing.T) {
			_, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{
				AccountType: "wizard",
			})
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

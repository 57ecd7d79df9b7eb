package repository

import (
	"testing"

	"github.com/ameyapb/user-search-backend/models"
	testingutil "github.com/ameyapb/user-search-backend/testing"
	"github.com/ameyapb/user-search-backend/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewAccountRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreateAndByID", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := fixtures.CreateTestProvider("plumbing")
			require.NoError(t, err)

			found, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, created.Email, found.Email)
			assert.Equal(t, models.AccountTypeServiceProvider, found.AccountType)
			require.NotNil(t, found.Provider)
			assert.Nil(t, found.Consumer)
			require.NotNil(t, found.Provider.HourlyRate)
			assert.Equal(t, 75.50, *found.Provider.HourlyRate)
			assert.Equal(t, "Springfield", found.Address["city"])
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, uuid.New())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ListAll", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, _, err := fixtures.CreateMixedAccounts("urgent")
			require.NoError(t, err)

			accounts, err := repo.List(ctx, models.AccountFilter{})
			require.NoError(t, err)
			assert.Len(t, accounts, 2)
		})

		t.Run("ListOrderedNewestFirst", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestProvider()
			require.NoError(t, err)
			second, err := fixtures.CreateTestConsumer()
			require.NoError(t, err)

			// Force distinct creation times
			require.NoError(t, testDB.DB.Exec(
				"UPDATE accounts SET created_at = created_at - interval '1 hour' WHERE id = ?", first.ID).Error)

			accounts, err := repo.List(ctx, models.AccountFilter{})
			require.NoError(t, err)
			require.Len(t, accounts, 2)
			assert.Equal(t, second.ID, accounts[0].ID)
			assert.Equal(t, first.ID, accounts[1].ID)
		})

		t.Run("ListByType", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, _, err := fixtures.CreateMixedAccounts("shared")
			require.NoError(t, err)

			accounts, err := repo.List(ctx, models.AccountFilter{
				AccountType: utils.ToPtr(models.AccountTypeServiceConsumer),
			})
			require.NoError(t, err)
			require.Len(t, accounts, 1)
			assert.True(t, accounts[0].IsConsumer())
			require.NotNil(t, accounts[0].Consumer)
		})

		t.Run("ListByTagsOverlap", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			provider, consumer, err := fixtures.CreateMixedAccounts("shared")
			require.NoError(t, err)

			// Single tag carried only by the provider
			accounts, err := repo.List(ctx, models.AccountFilter{Tags: []string{"plumbing"}})
			require.NoError(t, err)
			require.Len(t, accounts, 1)
			assert.Equal(t, provider.ID, accounts[0].ID)

			// Any-of semantics across both fixtures
			accounts, err = repo.List(ctx, models.AccountFilter{Tags: []string{"plumbing", "gardening"}})
			require.NoError(t, err)
			assert.Len(t, accounts, 2)

			// Shared tag matches both
			accounts, err = repo.List(ctx, models.AccountFilter{Tags: []string{"shared"}})
			require.NoError(t, err)
			assert.Len(t, accounts, 2)

			// Unknown tag matches nothing
			accounts, err = repo.List(ctx, models.AccountFilter{Tags: []string{"nope"}})
			require.NoError(t, err)
			assert.Empty(t, accounts)

			_ = consumer
		})

		t.Run("UpdateBaseFields", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := fixtures.CreateTestProvider("old")
			require.NoError(t, err)

			err = repo.Update(ctx, created.ID, models.AccountUpdate{
				Name: utils.ToPtr("Renamed Provider"),
				Tags: utils.ToPtr([]string{"fresh", "tags"}),
			})
			require.NoError(t, err)

			found, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed Provider", found.Name)
			assert.ElementsMatch(t, []string{"fresh", "tags"}, []string(found.Tags))
			assert.True(t, found.UpdatedAt.After(created.UpdatedAt))
			// Extension row untouched
			require.NotNil(t, found.Provider)
			assert.Equal(t, 75.50, *found.Provider.HourlyRate)
		})

		t.Run("UpdateProviderFields", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := fixtures.CreateTestProvider()
			require.NoError(t, err)

			err = repo.Update(ctx, created.ID, models.AccountUpdate{
				HourlyRate: utils.ToPtr(110.0),
			})
			require.NoError(t, err)

			found, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found.Provider)
			assert.Equal(t, 110.0, *found.Provider.HourlyRate)
			assert.True(t, found.Provider.UpdatedAt.After(created.Provider.UpdatedAt))
			// Base row name unchanged
			assert.Equal(t, created.Name, found.Name)
		})

		t.Run("AppendServiceHistory", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := fixtures.CreateTestConsumer()
			require.NoError(t, err)

			ok, err := repo.AppendServiceHistory(ctx, created.ID, models.ServiceHistoryEntry{
				"service": "plumbing",
				"cost":    120.0,
			})
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.AppendServiceHistory(ctx, created.ID, models.ServiceHistoryEntry{
				"service": "gardening",
			})
			require.NoError(t, err)
			assert.True(t, ok)

			found, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, found.Consumer)
			require.Len(t, found.Consumer.ServiceHistory, 2)
			assert.Equal(t, "plumbing", found.Consumer.ServiceHistory[0]["service"])
			assert.Equal(t, "gardening", found.Consumer.ServiceHistory[1]["service"])
			assert.NotEmpty(t, found.Consumer.ServiceHistory[0]["added_at"])
		})

		t.Run("AppendServiceHistoryNoConsumerRow", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			provider, err := fixtures.CreateTestProvider()
			require.NoError(t, err)

			ok, err := repo.AppendServiceHistory(ctx, provider.ID, models.ServiceHistoryEntry{"service": "x"})
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = repo.AppendServiceHistory(ctx, uuid.New(), models.ServiceHistoryEntry{"service": "x"})
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("DeleteCascades", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := fixtures.CreateTestConsumer()
			require.NoError(t, err)

			deleted, err := repo.DeleteByID(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			found, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, found)

			var count int64
			require.NoError(t, testDB.DB.Table("service_consumers").
				Where("account_id = ?", created.ID).Count(&count).Error)
			assert.Zero(t, count)
		})

		t.Run("DeleteUnknownID", func(t *testing.T) {
			deleted, err := repo.DeleteByID(ctx, uuid.New())
			require.NoError(t, err)
			assert.False(t, deleted)
		})

		return nil
	})
	require.NoError(t, err)
}

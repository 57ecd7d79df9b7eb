// Package testing provides test utilities and database setup for testing the account service
package testing

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/ameyapb/user-search-backend/models"
	"github.com/ameyapb/user-search-backend/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// DefaultTestAddress returns an address suitable for most fixtures
func DefaultTestAddress() models.Address {
	return models.Address{
		"street": "123 Test Street",
		"city":   "Springfield",
		"state":  "IL",
		"zip":    "62704",
	}
}

// CreateTestProvider creates and persists a service provider account
func (tf *TestFixtures) CreateTestProvider(tags ...string) (*models.Account, error) {
	suffix := rand.Intn(10000000)
	availability, _ := json.Marshal(map[string]any{
		"monday": []string{"09:00-17:00"},
		"friday": []string{"10:00-14:00"},
	})

	account, err := models.NewServiceProvider(
		fmt.Sprintf("Provider %d", suffix),
		fmt.Sprintf("provider.%d@example.com", suffix),
		DefaultTestAddress(),
		tags,
		utils.ToPtr(75.50),
		availability,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build test provider: %w", err)
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test provider: %w", err)
	}

	return account, nil
}

// CreateTestConsumer creates and persists a service consumer account
func (tf *TestFixtures) CreateTestConsumer(tags ...string) (*models.Account, error) {
	suffix := rand.Intn(10000000)

	account, err := models.NewServiceConsumer(
		fmt.Sprintf("Consumer %d", suffix),
		fmt.Sprintf("consumer.%d@example.com", suffix),
		DefaultTestAddress(),
		tags,
		utils.ToPtr(500.00),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build test consumer: %w", err)
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test consumer: %w", err)
	}

	return account, nil
}

// CreateMixedAccounts creates one provider and one consumer sharing a common tag
func (tf *TestFixtures) CreateMixedAccounts(commonTag string) (*models.Account, *models.Account, error) {
	provider, err := tf.CreateTestProvider(commonTag, "plumbing")
	if err != nil {
		return nil, nil, err
	}

	consumer, err := tf.CreateTestConsumer(commonTag, "gardening")
	if err != nil {
		return nil, nil, err
	}

	return provider, consumer, nil
}

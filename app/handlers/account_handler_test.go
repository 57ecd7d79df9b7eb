package handlers

import (
	"testing"
	"time"

	"github.com/ameyapb/user-search-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestContext(t *testing.T) {
	t.Run("CarriesRequestValues", func(t *testing.T) {
		ctx, cancel := newRequestContext("req-1", "agent", "10.0.0.1", "/api/v1/accounts", 30*time.Second)
		defer cancel()

		assert.Equal(t, "req-1", ctx.Value(utils.RequestIDKey))
		assert.Equal(t, "agent", ctx.Value(utils.UserAgentKey))
		assert.Equal(t, "10.0.0.1", ctx.Value(utils.IPAddressKey))
		assert.Equal(t, "/api/v1/accounts", ctx.Value(utils.EndpointKey))

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, time.Second)
	})

	t.Run("CancelReleasesContext", func(t *testing.T) {
		ctx, cancel := newRequestContext("req-2", "agent", "10.0.0.1", "/api/v1/accounts", 30*time.Second)
		cancel()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context still live after cancel")
		}
	})
}

package auth

import (
	"context"
	"io"
	"testing"

	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := store.New(t.TempDir(), &logger)
	require.NoError(t, err)
	return s
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveUsers([]models.User{
		{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin, Name: "Site Admin"},
		{ID: 2, Username: "reception", Password: "welcome1", Role: models.RoleFrontOffice, Name: "Front Desk"},
	}))

	logger := zerolog.New(io.Discard)
	a := NewStoreAuthenticator(s, &logger)
	ctx := context.Background()

	t.Run("ValidCredentials", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, models.RoleAdmin, user.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "admin", "admin124")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "ghost", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "Admin", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = a.Authenticate(ctx, "admin", "ADMIN123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("EmptyCollection", func(t *testing.T) {
		empty := newTestStore(t)
		a2 := NewStoreAuthenticator(empty, &logger)
		_, err := a2.Authenticate(ctx, "admin", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestCapabilities(t *testing.T) {
	admin := models.Actor{UserID: 1, Role: models.RoleAdmin}
	frontOffice := models.Actor{UserID: 2, Role: models.RoleFrontOffice}

	assert.True(t, Allowed(admin, CapDeleteBooking))
	assert.False(t, Allowed(frontOffice, CapDeleteBooking))

	assert.NoError(t, Require(admin, CapDeleteBooking))
	assert.ErrorIs(t, Require(frontOffice, CapDeleteBooking), ErrForbidden)

	// Unknown capabilities are denied for everyone.
	assert.False(t, Allowed(admin, Capability("drop_tables")))
}

package session

import (
	"context"
	"io"
	"testing"
	"time"

	"casamira/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewManager(NewMemorySessionRepository(time.Hour), &logger)
}

func TestManagerEstablishAndLogout(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	user := &models.User{ID: 2, Username: "reception", Role: models.RoleFrontOffice, Name: "Front Desk"}
	sess, err := m.Establish(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, models.RoleFrontOffice, sess.Role)
	assert.Equal(t, "Front Desk", sess.Name)
	assert.Equal(t, int64(2), sess.UserID)

	got, err := m.Current(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.Token, got.Token)

	// Logout clears every session field at once by dropping the record.
	require.NoError(t, m.Logout(ctx, sess.Token))
	got, err = m.Current(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManagerCurrentEmptyToken(t *testing.T) {
	m := newTestManager(t)
	got, err := m.Current(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManagerTokensAreUnique(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	user := &models.User{ID: 1, Role: models.RoleAdmin}

	s1, err := m.Establish(ctx, user)
	require.NoError(t, err)
	s2, err := m.Establish(ctx, user)
	require.NoError(t, err)

	assert.NotEqual(t, s1.Token, s2.Token)
}

func TestManagerFlashes(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Establish(ctx, &models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	m.Flash(ctx, sess, "success", "Feature added successfully!")
	m.Flash(ctx, sess, "error", "Feature not found!")

	flashes := m.PopFlashes(ctx, sess)
	require.Len(t, flashes, 2)
	assert.Equal(t, "success", flashes[0].Kind)
	assert.Equal(t, "Feature not found!", flashes[1].Message)

	// One-shot: a second pop is empty.
	assert.Empty(t, m.PopFlashes(ctx, sess))
}

func TestManagerLoginRateLimit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < models.LoginRateLimitAttempts; i++ {
		assert.True(t, m.CheckLoginRateLimit(ctx, "10.1.1.1"))
	}
	assert.False(t, m.CheckLoginRateLimit(ctx, "10.1.1.1"))
	assert.True(t, m.CheckLoginRateLimit(ctx, "10.1.1.2"))
}

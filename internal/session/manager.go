package session

import (
	"context"
	"time"

	"casamira/internal/domain"
	"casamira/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager issues, resolves and clears staff sessions. Tokens are opaque
// uuids; the browser only ever sees the token.
type Manager struct {
	repo   domain.SessionRepository
	logger *zerolog.Logger
}

func NewManager(repo domain.SessionRepository, logger *zerolog.Logger) *Manager {
	return &Manager{repo: repo, logger: logger}
}

// Establish creates an authenticated session for the user and returns it.
func (m *Manager) Establish(ctx context.Context, user *models.User) (*models.Session, error) {
	sess := &models.Session{
		Token:         uuid.NewString(),
		Authenticated: true,
		UserID:        user.ID,
		Role:          user.Role,
		Name:          user.Name,
	}

	if err := m.repo.Set(ctx, sess); err != nil {
		return nil, err
	}

	m.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("session established")
	return sess, nil
}

// Current resolves a token to its session, nil when absent or expired.
func (m *Manager) Current(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	return m.repo.Get(ctx, token)
}

// Logout clears the session, dropping authentication, role, name and user id
// together.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.repo.Delete(ctx, token)
}

// Flash appends a one-shot notice to the session.
func (m *Manager) Flash(ctx context.Context, sess *models.Session, kind, message string) {
	if sess == nil {
		return
	}
	sess.Flashes = append(sess.Flashes, models.Flash{Kind: kind, Message: message})
	if err := m.repo.Set(ctx, sess); err != nil {
		m.logger.Warn().Err(err).Msg("failed to store flash")
	}
}

// PopFlashes returns pending notices and clears them from the session.
func (m *Manager) PopFlashes(ctx context.Context, sess *models.Session) []models.Flash {
	if sess == nil || len(sess.Flashes) == 0 {
		return nil
	}
	flashes := sess.Flashes
	sess.Flashes = nil
	if err := m.repo.Set(ctx, sess); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear flashes")
	}
	return flashes
}

// CheckLoginRateLimit throttles login attempts for a client key.
func (m *Manager) CheckLoginRateLimit(ctx context.Context, key string) bool {
	allowed, err := m.repo.CheckRateLimit(ctx, key, models.LoginRateLimitAttempts, models.LoginRateLimitWindow*time.Second)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("login rate limit check failed")
		return true
	}
	return allowed
}

package session

import (
	"context"
	"sync/atomic"
	"time"

	"casamira/internal/domain"
	"casamira/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository prefers the primary (Redis) repository and falls
// back to the in-memory one when it errors, probing the primary again after a
// minute. Sessions created during an outage live only in memory.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	if !r.isDown.Load() {
		sess, err := r.primary.Get(ctx, token)
		if err == nil {
			return sess, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		sess, err := r.primary.Get(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return sess, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, token)
}

func (r *FailoverSessionRepository) Set(ctx context.Context, sess *models.Session) error {
	if !r.isDown.Load() {
		if err := r.primary.Set(ctx, sess); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}

	return r.fallback.Set(ctx, sess)
}

func (r *FailoverSessionRepository) Delete(ctx context.Context, token string) error {
	if !r.isDown.Load() {
		if err := r.primary.Delete(ctx, token); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}

	return r.fallback.Delete(ctx, token)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

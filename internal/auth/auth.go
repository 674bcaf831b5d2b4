package auth

import (
	"context"
	"errors"

	"casamira/internal/domain"
	"casamira/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidCredentials is returned when no user matches the submitted
	// username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the actor's role lacks the capability.
	ErrForbidden = errors.New("forbidden")
)

// StoreAuthenticator checks credentials against the users collection with an
// exact, case-sensitive plaintext comparison. That is the system's stated
// contract; hashing belongs in a replacement implementation of
// domain.Authenticator, not here.
type StoreAuthenticator struct {
	store  domain.RecordStore
	logger *zerolog.Logger
}

func NewStoreAuthenticator(store domain.RecordStore, logger *zerolog.Logger) *StoreAuthenticator {
	return &StoreAuthenticator{store: store, logger: logger}
}

func (a *StoreAuthenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	users, err := a.store.LoadUsers()
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Username == username && users[i].Password == password {
			return &users[i], nil
		}
	}

	a.logger.Warn().Str("username", username).Msg("authentication failed")
	return nil, ErrInvalidCredentials
}

// Capability names an admin operation gated by role.
type Capability string

const (
	// CapDeleteBooking is the only capability restricted to the admin role;
	// every other admin operation just requires an authenticated actor.
	CapDeleteBooking Capability = "delete_booking"
)

// Allowed reports whether the actor's role grants the capability. Roles are
// compared by string equality; there is no role hierarchy.
func Allowed(actor models.Actor, cap Capability) bool {
	switch cap {
	case CapDeleteBooking:
		return actor.Role == models.RoleAdmin
	default:
		return false
	}
}

// Require returns ErrForbidden when the capability is not granted.
func Require(actor models.Actor, cap Capability) error {
	if !Allowed(actor, cap) {
		return ErrForbidden
	}
	return nil
}

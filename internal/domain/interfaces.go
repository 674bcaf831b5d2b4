package domain

import (
	"context"
	"time"

	"casamira/internal/models"
)

// RecordStore is the flat-file persistence contract shared by every entity
// collection. Load on a missing collection yields an empty slice; Save
// replaces the whole collection.
type RecordStore interface {
	LoadFeatures() ([]models.Feature, error)
	SaveFeatures([]models.Feature) error
	LoadNearby() ([]models.NearbyPlace, error)
	SaveNearby([]models.NearbyPlace) error
	LoadFeedback() ([]models.FeedbackEntry, error)
	SaveFeedback([]models.FeedbackEntry) error
	LoadUsers() ([]models.User, error)
	SaveUsers([]models.User) error
	LoadBookings() ([]models.Booking, error)
	SaveBookings([]models.Booking) error
}

// SessionRepository persists staff sessions under opaque tokens.
type SessionRepository interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	Set(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Authenticator validates staff credentials against the users collection. The
// current implementation is an exact plaintext match; the interface exists so
// a hashing implementation can be substituted without touching callers.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// EventPublisher publishes a JSON-encoded domain event.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// AuditRecorder appends one entry per successful admin mutation.
type AuditRecorder interface {
	Record(ctx context.Context, actor models.Actor, action, entity string, entityID int64) error
}

// BookingService covers the booking lifecycle operations.
type BookingService interface {
	Create(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context) ([]models.Booking, error)
	Get(ctx context.Context, id int64) (*models.Booking, error)
	SetStatus(ctx context.Context, id int64, status string, actor models.Actor) (*models.Booking, error)
	Delete(ctx context.Context, id int64, actor models.Actor) error
}

// ContentService covers features and nearby places CRUD.
type ContentService interface {
	ListFeatures(ctx context.Context) ([]models.Feature, error)
	AddFeature(ctx context.Context, feature *models.Feature, actor models.Actor) error
	EditFeature(ctx context.Context, feature models.Feature, actor models.Actor) error
	DeleteFeature(ctx context.Context, id int64, actor models.Actor) error
	ListNearby(ctx context.Context) ([]models.NearbyPlace, error)
	AddNearby(ctx context.Context, place *models.NearbyPlace, actor models.Actor) error
	EditNearby(ctx context.Context, place models.NearbyPlace, actor models.Actor) error
	DeleteNearby(ctx context.Context, id int64, actor models.Actor) error
}

// FeedbackService covers public intake and admin review of guest feedback.
type FeedbackService interface {
	Submit(ctx context.Context, entry *models.FeedbackEntry) error
	List(ctx context.Context) ([]models.FeedbackEntry, error)
	MarkRead(ctx context.Context, id int64, actor models.Actor) error
	Delete(ctx context.Context, id int64, actor models.Actor) error
}

package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleAdmin       = "admin"
	RoleFrontOffice = "front_office"
)

// Collection names double as file names (without extension) under the data dir.
const (
	CollectionFeatures = "features"
	CollectionNearby   = "nearby"
	CollectionFeedback = "feedback"
	CollectionUsers    = "users"
	CollectionBookings = "bookings"
)

const (
	// DefaultSessionTTL is the staff session lifetime in seconds.
	DefaultSessionTTL = 24 * 60 * 60

	// LoginRateLimitAttempts is the number of login attempts allowed per window.
	LoginRateLimitAttempts = 10

	// LoginRateLimitWindow is the login rate limit window in seconds.
	LoginRateLimitWindow = 60

	// NotifyQueueSize is the staff notification queue size.
	NotifyQueueSize = 256
)

// ValidStatus reports whether s is one of the three booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

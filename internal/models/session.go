package models

// Session is the server-side staff session record, stored under an opaque token.
type Session struct {
	Token         string  `json:"token"`
	Authenticated bool    `json:"authenticated"`
	UserID        int64   `json:"user_id"`
	Role          string  `json:"role"`
	Name          string  `json:"name"`
	Flashes       []Flash `json:"flashes,omitempty"`
}

// Flash is a one-shot notice consumed by the next page payload.
type Flash struct {
	Kind    string `json:"kind"` // success, error, info
	Message string `json:"message"`
}

// Actor identifies the authenticated staff member performing an admin operation.
type Actor struct {
	UserID int64
	Role   string
	Name   string
}

// Actor derives the acting identity from an authenticated session.
func (s *Session) Actor() Actor {
	return Actor{UserID: s.UserID, Role: s.Role, Name: s.Name}
}

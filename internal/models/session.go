package models

import "time"

// Session binds a bearer token to a user with a sliding expiry
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is logically dead.
// A row past its deadline must never authenticate a request.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

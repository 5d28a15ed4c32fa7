package models

import "time"

// User represents a registered player account
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the resolved view of an authenticated request.
// Anonymous requests carry no Identity.
type Identity struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsBanned bool   `json:"is_banned"`
}

// Identity returns the public identity triple for the user
func (u *User) Identity() *Identity {
	return &Identity{
		ID:       u.ID,
		Name:     u.Name,
		IsBanned: u.IsBanned,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	PasswordAgain string `json:"password_again"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

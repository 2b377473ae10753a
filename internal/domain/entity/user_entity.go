package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// Passwords are stored as bcrypt hashes in Password and never serialized.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionUser is the identity snapshot kept in the session at login time.
type SessionUser struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Snapshot returns the identity fields copied into a new session.
func (u *User) Snapshot() SessionUser {
	return SessionUser{UserID: u.ID, Email: u.Email, Username: u.Username}
}

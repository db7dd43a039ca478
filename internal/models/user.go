package models

import "time"

// User represents an account that owns links.
type User struct {
	UserID int64
	Email  string
	// PasswordHash is the bcrypt hash of the credential. The plaintext
	// password is never persisted or returned.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

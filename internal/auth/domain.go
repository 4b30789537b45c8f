package auth

import "time"

// User represents an account eligible to sign in.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

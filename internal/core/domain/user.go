package domain

import "time"

// User is an identity record. Email is unique and compared case-sensitively.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// Profile holds any extra registration fields, stored as-is.
	Profile   map[string]any
	CreatedAt time.Time
}

// PublicProfile is the part of a User that may be returned to its owner.
type PublicProfile struct {
	ID    string
	Email string
}

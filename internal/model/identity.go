package model

import "time"

// IdentityID uniquely identifies a registered user account
type IdentityID string

// Identity is the public profile of a user account
type Identity struct {
	ID          IdentityID
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credential holds login data for an identity.
// Stored separately so password hashes never travel with the profile.
type Credential struct {
	IdentityID   IdentityID
	Email        string // lower-cased, unique
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

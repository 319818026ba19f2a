package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordTooShort = errors.New("password is too short")

	// Identity errors
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailTaken       = errors.New("email is already registered")

	// Game errors
	ErrGameNotFound         = errors.New("game not found")
	ErrRosterEntryNotFound  = errors.New("roster entry not found")
	ErrNotOwner             = errors.New("identity is not the game owner")
	ErrNotParticipant       = errors.New("identity is not a participant in this game")
	ErrAlreadyParticipant   = errors.New("identity is already a participant in this game")
	ErrDuplicateRosterEntry = errors.New("a roster entry with that name already exists")
	ErrGameInactive         = errors.New("game is not active")
	ErrOwnerCannotLeave     = errors.New("the owner cannot leave their own game")
	ErrJoinCodeExhausted    = errors.New("could not generate a unique join code")

	// Ledger errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotPlayerOwner     = errors.New("identity does not own this player")
	ErrScoreEntryNotFound = errors.New("score entry not found")
)

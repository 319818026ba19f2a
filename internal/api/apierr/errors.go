package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/auth"
)

// APIError is the JSON body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNameRequired        = "NAME_REQUIRED"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodePasswordTooShort    = "PASSWORD_TOO_SHORT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeNotOwner            = "NOT_OWNER"
	CodeNotParticipant      = "NOT_PARTICIPANT"
	CodeIdentityNotFound    = "IDENTITY_NOT_FOUND"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeRosterEntryNotFound = "ROSTER_ENTRY_NOT_FOUND"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeScoreEntryNotFound  = "SCORE_ENTRY_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeAlreadyParticipant  = "ALREADY_PARTICIPANT"
	CodeDuplicateRoster     = "DUPLICATE_ROSTER_ENTRY"
	CodeGameInactive        = "GAME_INACTIVE"
	CodeOwnerCannotLeave    = "OWNER_CANNOT_LEAVE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.apiError)
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError.
// Validation, conflict and state errors are all reported as 400.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeNameRequired, "Name is required"}}
	case errors.Is(err, model.ErrInvalidEmail):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEmail, "Email address is invalid"}}
	case errors.Is(err, model.ErrPasswordTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodePasswordTooShort, "Password must be at least 6 characters"}}

	// Authorization
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "Only the game owner can do that"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "You are not a participant in this game"}}
	case errors.Is(err, model.ErrNotPlayerOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "You do not own this player"}}

	// Not found
	case errors.Is(err, model.ErrIdentityNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeIdentityNotFound, "User not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrRosterEntryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRosterEntryNotFound, "Roster entry not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrScoreEntryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScoreEntryNotFound, "Score entry not found"}}

	// Conflict
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusBadRequest, APIError{CodeEmailTaken, "Email is already registered"}}
	case errors.Is(err, model.ErrAlreadyParticipant):
		return &httpError{http.StatusBadRequest, APIError{CodeAlreadyParticipant, "You are already in this game"}}
	case errors.Is(err, model.ErrDuplicateRosterEntry):
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicateRoster, "A roster entry with that name already exists"}}

	// State
	case errors.Is(err, model.ErrGameInactive):
		return &httpError{http.StatusBadRequest, APIError{CodeGameInactive, "Game is not active"}}
	case errors.Is(err, model.ErrOwnerCannotLeave):
		return &httpError{http.StatusBadRequest, APIError{CodeOwnerCannotLeave, "The owner cannot leave their own game"}}

	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates a generic not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewMethodNotAllowedError reports a known route used with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewStoreUnavailableError reports that the backing store cannot be reached
func NewStoreUnavailableError() error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Storage is temporarily unavailable"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

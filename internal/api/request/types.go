package request

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for PATCH /auth/me.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateGameRequest is the request body for PATCH /games/{id}.
// Each present field is applied as a separate owner-only change.
type UpdateGameRequest struct {
	Name     *string         `json:"name,omitempty"`
	Metadata *map[string]any `json:"metadata,omitempty"`
	Active   *bool           `json:"active,omitempty"`
}

// IsEmpty reports whether the request changes nothing
func (r UpdateGameRequest) IsEmpty() bool {
	return r.Name == nil && r.Metadata == nil && r.Active == nil
}

// AddRosterEntryRequest is the request body for adding a roster entry
type AddRosterEntryRequest struct {
	Name string `json:"name"`
}

// SetScoreRequest is the request body for setting a roster entry's score
type SetScoreRequest struct {
	Score *int `json:"score"`
}

// CreatePlayerRequest is the request body for creating a ledger player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// RenamePlayerRequest is the request body for renaming a ledger player
type RenamePlayerRequest struct {
	Name string `json:"name"`
}

// AddScoreRequest is the request body for recording a score entry
type AddScoreRequest struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Value    *int   `json:"value"`
}

// UpdateScoreRequest is the request body for changing a score entry's value
type UpdateScoreRequest struct {
	Value *int `json:"value"`
}

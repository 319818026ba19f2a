package response

import (
	"time"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/auth"
	"github.com/mcoot/scorekeeper/internal/services/ledger"
)

// Identity represents a user account in API responses
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IdentityFromModel converts a model.Identity to a response Identity
func IdentityFromModel(i *model.Identity) Identity {
	return Identity{
		ID:          string(i.ID),
		DisplayName: i.DisplayName,
		Email:       i.Email,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// AuthResponse is the response for register and login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Identity:  IdentityFromModel(&s.Identity),
	}
}

// RosterEntry is a named score in a game's roster
type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Game represents a game in API responses
type Game struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	JoinCode       string         `json:"join_code"`
	OwnerID        string         `json:"owner_id"`
	OwnerName      string         `json:"owner_name,omitempty"`
	ParticipantIDs []string       `json:"participant_ids"`
	Roster         []RosterEntry  `json:"roster"`
	Active         bool           `json:"active"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	participants := make([]string, len(g.ParticipantIDs))
	for i, id := range g.ParticipantIDs {
		participants[i] = string(id)
	}

	roster := make([]RosterEntry, len(g.Roster))
	for i, e := range g.Roster {
		roster[i] = RosterEntry{
			ID:    string(e.ID),
			Name:  e.Name,
			Score: e.Score,
		}
	}

	metadata := g.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return Game{
		ID:             string(g.ID),
		Name:           g.Name,
		JoinCode:       string(g.JoinCode),
		OwnerID:        string(g.OwnerID),
		ParticipantIDs: participants,
		Roster:         roster,
		Active:         g.Active,
		Metadata:       metadata,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// GameList is the response for listing games
type GameList struct {
	Games []Game `json:"games"`
}

// GameWithOwnerName converts a game and fills in its owner's display name
func GameWithOwnerName(g *model.Game, ownerNames map[model.IdentityID]string) Game {
	game := GameFromModel(g)
	game.OwnerName = ownerNames[g.OwnerID]
	return game
}

// GameListFromModels converts a slice of games, naming owners found in ownerNames
func GameListFromModels(games []*model.Game, ownerNames map[model.IdentityID]string) GameList {
	list := GameList{Games: make([]Game, len(games))}
	for i, g := range games {
		list.Games[i] = GameWithOwnerName(g, ownerNames)
	}
	return list
}

// Player represents a ledger player in API responses
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	GameIDs   []string  `json:"game_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	gameIDs := make([]string, len(p.GameIDs))
	for i, id := range p.GameIDs {
		gameIDs[i] = string(id)
	}
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		OwnerID:   string(p.OwnerID),
		GameIDs:   gameIDs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PlayerList is the response for listing players
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModels converts a slice of players
func PlayerListFromModels(players []*model.Player) PlayerList {
	list := PlayerList{Players: make([]Player, len(players))}
	for i, p := range players {
		list.Players[i] = PlayerFromModel(p)
	}
	return list
}

// ScoreEntry represents a ledger score entry in API responses
type ScoreEntry struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	GameID     string    `json:"game_id"`
	PlayerName string    `json:"player_name,omitempty"`
	GameName   string    `json:"game_name,omitempty"`
	Value      int       `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoreEntryFromModel converts a model.ScoreEntry
func ScoreEntryFromModel(e *model.ScoreEntry) ScoreEntry {
	return ScoreEntry{
		ID:         string(e.ID),
		PlayerID:   string(e.PlayerID),
		GameID:     string(e.GameID),
		Value:      e.Value,
		RecordedAt: e.RecordedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ScoreList is the response for listing score entries
type ScoreList struct {
	Scores []ScoreEntry `json:"scores"`
}

// ScoreListFromLines converts ledger score lines, keeping their names
func ScoreListFromLines(lines []ledger.ScoreLine) ScoreList {
	list := ScoreList{Scores: make([]ScoreEntry, len(lines))}
	for i, l := range lines {
		entry := ScoreEntryFromModel(l.ScoreEntry)
		entry.PlayerName = l.PlayerName
		entry.GameName = l.GameName
		list.Scores[i] = entry
	}
	return list
}

// ScoreTotal is the summed score of a player in a game
type ScoreTotal struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Total    int    `json:"total"`
}

// Health is the response for the health endpoint
type Health struct {
	Status         string     `json:"status"`
	StoreConnected bool       `json:"store_connected"`
	CheckedAt      *time.Time `json:"checked_at,omitempty"`
}

package mongo

import (
	"time"

	"github.com/mcoot/scorekeeper/internal/model"
)

// Collection names
const (
	identitiesCollection   = "identities"
	credentialsCollection  = "credentials"
	gamesCollection        = "games"
	playersCollection      = "players"
	scoreEntriesCollection = "score_entries"
)

type identityDoc struct {
	ID          string    `bson:"_id"`
	DisplayName string    `bson:"display_name"`
	Email       string    `bson:"email"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type credentialDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type rosterDoc struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Score int    `bson:"score"`
}

type gameDoc struct {
	ID           string         `bson:"_id"`
	Name         string         `bson:"name"`
	JoinCode     string         `bson:"join_code"`
	OwnerID      string         `bson:"owner"`
	Participants []string       `bson:"participants"`
	Roster       []rosterDoc    `bson:"roster"`
	Active       bool           `bson:"is_active"`
	Metadata     map[string]any `bson:"metadata,omitempty"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

type playerDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	OwnerID   string    `bson:"owner"`
	GameIDs   []string  `bson:"games"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type scoreEntryDoc struct {
	ID         string    `bson:"_id"`
	PlayerID   string    `bson:"player"`
	GameID     string    `bson:"game"`
	Value      int       `bson:"value"`
	RecordedAt time.Time `bson:"date"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toIdentityDoc(i *model.Identity) identityDoc {
	return identityDoc{
		ID:          string(i.ID),
		DisplayName: i.DisplayName,
		Email:       i.Email,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (d identityDoc) toModel() *model.Identity {
	return &model.Identity{
		ID:          model.IdentityID(d.ID),
		DisplayName: d.DisplayName,
		Email:       d.Email,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toCredentialDoc(c *model.Credential) credentialDoc {
	return credentialDoc{
		ID:           string(c.IdentityID),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (d credentialDoc) toModel() *model.Credential {
	return &model.Credential{
		IdentityID:   model.IdentityID(d.ID),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toGameDoc(g *model.Game) gameDoc {
	participants := make([]string, len(g.ParticipantIDs))
	for i, id := range g.ParticipantIDs {
		participants[i] = string(id)
	}
	roster := make([]rosterDoc, len(g.Roster))
	for i, e := range g.Roster {
		roster[i] = rosterDoc{ID: string(e.ID), Name: e.Name, Score: e.Score}
	}
	return gameDoc{
		ID:           string(g.ID),
		Name:         g.Name,
		JoinCode:     string(g.JoinCode),
		OwnerID:      string(g.OwnerID),
		Participants: participants,
		Roster:       roster,
		Active:       g.Active,
		Metadata:     g.Metadata,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func (d gameDoc) toModel() *model.Game {
	participants := make([]model.IdentityID, len(d.Participants))
	for i, id := range d.Participants {
		participants[i] = model.IdentityID(id)
	}
	roster := make([]model.RosterEntry, len(d.Roster))
	for i, e := range d.Roster {
		roster[i] = model.RosterEntry{ID: model.RosterEntryID(e.ID), Name: e.Name, Score: e.Score}
	}
	return &model.Game{
		ID:             model.GameID(d.ID),
		Name:           d.Name,
		JoinCode:       model.JoinCode(d.JoinCode),
		OwnerID:        model.IdentityID(d.OwnerID),
		ParticipantIDs: participants,
		Roster:         roster,
		Active:         d.Active,
		Metadata:       d.Metadata,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toPlayerDoc(p *model.Player) playerDoc {
	games := make([]string, len(p.GameIDs))
	for i, id := range p.GameIDs {
		games[i] = string(id)
	}
	return playerDoc{
		ID:        string(p.ID),
		Name:      p.Name,
		OwnerID:   string(p.OwnerID),
		GameIDs:   games,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d playerDoc) toModel() *model.Player {
	games := make([]model.GameID, len(d.GameIDs))
	for i, id := range d.GameIDs {
		games[i] = model.GameID(id)
	}
	return &model.Player{
		ID:        model.PlayerID(d.ID),
		Name:      d.Name,
		OwnerID:   model.IdentityID(d.OwnerID),
		GameIDs:   games,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toScoreEntryDoc(e *model.ScoreEntry) scoreEntryDoc {
	return scoreEntryDoc{
		ID:         string(e.ID),
		PlayerID:   string(e.PlayerID),
		GameID:     string(e.GameID),
		Value:      e.Value,
		RecordedAt: e.RecordedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (d scoreEntryDoc) toModel() *model.ScoreEntry {
	return &model.ScoreEntry{
		ID:         model.ScoreEntryID(d.ID),
		PlayerID:   model.PlayerID(d.PlayerID),
		GameID:     model.GameID(d.GameID),
		Value:      d.Value,
		RecordedAt: d.RecordedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

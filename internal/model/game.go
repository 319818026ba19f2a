package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// GameID uniquely identifies a game
type GameID string

// JoinCode is the short human-readable code other users join a game with
type JoinCode string

// RosterEntryID identifies a roster entry within its game
type RosterEntryID string

// RosterEntry is a named score line embedded in a game
type RosterEntry struct {
	ID    RosterEntryID
	Name  string
	Score int
}

// Game is a score table owned by one identity and shared with its participants
type Game struct {
	ID             GameID
	Name           string
	JoinCode       JoinCode
	OwnerID        IdentityID
	ParticipantIDs []IdentityID // owner is always first
	Roster         []RosterEntry
	Active         bool
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOwner reports whether id owns the game
func (g *Game) IsOwner(id IdentityID) bool {
	return g.OwnerID == id
}

// IsParticipant reports whether id is the owner or a joined participant
func (g *Game) IsParticipant(id IdentityID) bool {
	return g.OwnerID == id || slices.Contains(g.ParticipantIDs, id)
}

// RosterIndex returns the position of the entry with the given ID, or -1
func (g *Game) RosterIndex(id RosterEntryID) int {
	return slices.IndexFunc(g.Roster, func(e RosterEntry) bool { return e.ID == id })
}

// HasRosterName reports whether the roster already holds name, ignoring case
func (g *Game) HasRosterName(name string) bool {
	return slices.ContainsFunc(g.Roster, func(e RosterEntry) bool {
		return strings.EqualFold(e.Name, name)
	})
}

// Clone returns a deep copy of the game, except that metadata values are shared
func (g *Game) Clone() *Game {
	c := *g
	c.ParticipantIDs = slices.Clone(g.ParticipantIDs)
	c.Roster = slices.Clone(g.Roster)
	c.Metadata = maps.Clone(g.Metadata)
	return &c
}

// NormalizeJoinCode upper-cases and trims a user-supplied join code
func NormalizeJoinCode(s string) JoinCode {
	return JoinCode(strings.ToUpper(strings.TrimSpace(s)))
}

// SortGames orders games by creation time, then ID, so listings are stable
func SortGames(games []*Game) {
	slices.SortStableFunc(games, func(a, b *Game) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

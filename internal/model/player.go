package model

import (
	"slices"
	"strings"
	"time"
)

// PlayerID uniquely identifies a ledger player
type PlayerID string

// Player is a standalone named participant owned by one identity.
// Score entries are recorded against players rather than roster entries.
type Player struct {
	ID        PlayerID
	Name      string
	OwnerID   IdentityID
	GameIDs   []GameID // games this player has recorded scores in
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasGame reports whether the player has scored in the given game
func (p *Player) HasGame(id GameID) bool {
	return slices.Contains(p.GameIDs, id)
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	c := *p
	c.GameIDs = slices.Clone(p.GameIDs)
	return &c
}

// SortPlayers orders players by name, then ID
func SortPlayers(players []*Player) {
	slices.SortStableFunc(players, func(a, b *Player) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

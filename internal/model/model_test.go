package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameIsParticipant(t *testing.T) {
	g := &Game{OwnerID: "owner", ParticipantIDs: []IdentityID{"owner", "guest"}}

	assert.True(t, g.IsParticipant("owner"))
	assert.True(t, g.IsParticipant("guest"))
	assert.False(t, g.IsParticipant("stranger"))
	assert.True(t, g.IsOwner("owner"))
	assert.False(t, g.IsOwner("guest"))
}

func TestGameRosterLookup(t *testing.T) {
	g := &Game{Roster: []RosterEntry{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}}

	assert.Equal(t, 1, g.RosterIndex("b"))
	assert.Equal(t, -1, g.RosterIndex("missing"))
	assert.True(t, g.HasRosterName("alice"))
	assert.False(t, g.HasRosterName("Carol"))
}

func TestGameCloneIsIndependent(t *testing.T) {
	g := &Game{
		ParticipantIDs: []IdentityID{"owner"},
		Roster:         []RosterEntry{{ID: "a", Name: "Alice", Score: 1}},
		Metadata:       map[string]any{"round": 1},
	}

	c := g.Clone()
	c.ParticipantIDs = append(c.ParticipantIDs, "guest")
	c.Roster[0].Score = 10
	c.Metadata["round"] = 2

	assert.Len(t, g.ParticipantIDs, 1)
	assert.Equal(t, 1, g.Roster[0].Score)
	assert.Equal(t, 1, g.Metadata["round"])
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, JoinCode("ABC123"), NormalizeJoinCode("  abc123 "))
}

func TestSortScoreEntries(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []*ScoreEntry{
		{ID: "1", RecordedAt: base},
		{ID: "3", RecordedAt: base.Add(time.Minute)},
		{ID: "2", RecordedAt: base},
	}

	SortScoreEntries(entries)

	assert.Equal(t, ScoreEntryID("3"), entries[0].ID)
	assert.Equal(t, ScoreEntryID("2"), entries[1].ID)
	assert.Equal(t, ScoreEntryID("1"), entries[2].ID)
	assert.Equal(t, 0, SumScores(nil))
	assert.Equal(t, 0, SumScores([]*ScoreEntry{{Value: 5}, {Value: -5}}))
}

func TestSortGames(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	games := []*Game{
		{ID: "b", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(-time.Hour)},
		{ID: "a", CreatedAt: base},
	}

	SortGames(games)

	assert.Equal(t, []GameID{"c", "a", "b"}, []GameID{games[0].ID, games[1].ID, games[2].ID})
}

// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and set NewStorage in their SetupTest.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Suite exercises a storage.Storage implementation
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newGame(id model.GameID, code model.JoinCode, owner model.IdentityID, created time.Time) *model.Game {
	return &model.Game{
		ID:             id,
		Name:           "Game " + string(id),
		JoinCode:       code,
		OwnerID:        owner,
		ParticipantIDs: []model.IdentityID{owner},
		Roster:         []model.RosterEntry{},
		Active:         true,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// Identity tests

func (s *Suite) TestSaveAndGetIdentity() {
	identity := &model.Identity{ID: "id-1", DisplayName: "Alice", Email: "alice@example.com", CreatedAt: baseTime}

	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity))

	retrieved, err := s.Storage.GetIdentity(s.Ctx, "id-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.Equal("alice@example.com", retrieved.Email)
	s.True(baseTime.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetIdentityNotFound() {
	_, err := s.Storage.GetIdentity(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// Credential tests

func (s *Suite) TestGetCredentialByEmailIgnoresCase() {
	cred := &model.Credential{IdentityID: "id-1", Email: "alice@example.com", PasswordHash: "hash"}
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	retrieved, err := s.Storage.GetCredentialByEmail(s.Ctx, "Alice@Example.com")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("id-1"), retrieved.IdentityID)
	s.Equal("hash", retrieved.PasswordHash)
}

func (s *Suite) TestSaveCredentialMovesEmailIndex() {
	cred := &model.Credential{IdentityID: "id-1", Email: "old@example.com", PasswordHash: "hash"}
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	cred.Email = "new@example.com"
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	_, err := s.Storage.GetCredentialByEmail(s.Ctx, "old@example.com")
	s.ErrorIs(err, model.ErrIdentityNotFound)

	retrieved, err := s.Storage.GetCredential(s.Ctx, "id-1")
	s.Require().NoError(err)
	s.Equal("new@example.com", retrieved.Email)
}

func (s *Suite) TestGetCredentialNotFound() {
	_, err := s.Storage.GetCredential(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrIdentityNotFound)

	_, err = s.Storage.GetCredentialByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	game := newGame("game-1", "ABC123", "owner", baseTime)
	game.Roster = []model.RosterEntry{{ID: "r-1", Name: "Alice", Score: -3}}
	game.Metadata = map[string]any{"venue": "pub"}

	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	retrieved, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.Name, retrieved.Name)
	s.Equal(game.JoinCode, retrieved.JoinCode)
	s.Equal(game.ParticipantIDs, retrieved.ParticipantIDs)
	s.Equal(game.Roster, retrieved.Roster)
	s.Equal("pub", retrieved.Metadata["venue"])
	s.True(retrieved.Active)
}

func (s *Suite) TestGetGameReturnsCopy() {
	game := newGame("game-1", "ABC123", "owner", baseTime)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	retrieved, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	retrieved.Name = "changed"

	again, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal("Game game-1", again.Name)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.Storage.GetGameByJoinCode(s.Ctx, "NOPE42")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestJoinCodeLookup() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGame("game-1", "ABC123", "owner", baseTime)))

	exists, err := s.Storage.JoinCodeExists(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.Storage.JoinCodeExists(s.Ctx, "ZZZ999")
	s.Require().NoError(err)
	s.False(exists)

	game, err := s.Storage.GetGameByJoinCode(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), game.ID)
}

func (s *Suite) TestDeleteGameRemovesIndexes() {
	game := newGame("game-1", "ABC123", "owner", baseTime)
	game.ParticipantIDs = append(game.ParticipantIDs, "guest")
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, "game-1"))

	_, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)

	exists, err := s.Storage.JoinCodeExists(s.Ctx, "ABC123")
	s.Require().NoError(err)
	s.False(exists)

	games, err := s.Storage.ListGamesForIdentity(s.Ctx, "guest")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestListGamesForIdentity() {
	first := newGame("game-1", "AAAAAA", "alice", baseTime)
	second := newGame("game-2", "BBBBBB", "bob", baseTime.Add(time.Minute))
	second.ParticipantIDs = append(second.ParticipantIDs, "alice")
	other := newGame("game-3", "CCCCCC", "bob", baseTime.Add(2*time.Minute))

	for _, g := range []*model.Game{second, other, first} {
		s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))
	}

	games, err := s.Storage.ListGamesForIdentity(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("game-1"), games[0].ID)
	s.Equal(model.GameID("game-2"), games[1].ID)
}

func (s *Suite) TestListGamesDropsDepartedParticipant() {
	game := newGame("game-1", "AAAAAA", "alice", baseTime)
	game.ParticipantIDs = append(game.ParticipantIDs, "bob")
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	game.ParticipantIDs = []model.IdentityID{"alice"}
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	games, err := s.Storage.ListGamesForIdentity(s.Ctx, "bob")
	s.Require().NoError(err)
	s.Empty(games)
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "p-1", Name: "Alice", OwnerID: "owner", GameIDs: []model.GameID{"game-1"}, CreatedAt: baseTime}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
	s.Equal([]model.GameID{"game-1"}, retrieved.GameIDs)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-1", Name: "Alice", OwnerID: "owner"}))

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "p-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	players, err := s.Storage.ListPlayersByOwner(s.Ctx, "owner")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestListPlayersByOwner() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-1", Name: "Zed", OwnerID: "owner"}))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-2", Name: "Amy", OwnerID: "owner"}))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-3", Name: "Bob", OwnerID: "someone-else"}))

	players, err := s.Storage.ListPlayersByOwner(s.Ctx, "owner")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("Amy", players[0].Name)
	s.Equal("Zed", players[1].Name)
}

// Score entry tests

func (s *Suite) TestSaveAndGetScoreEntry() {
	entry := &model.ScoreEntry{ID: "s-1", PlayerID: "p-1", GameID: "game-1", Value: 7, RecordedAt: baseTime}
	s.Require().NoError(s.Storage.SaveScoreEntry(s.Ctx, entry))

	retrieved, err := s.Storage.GetScoreEntry(s.Ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(7, retrieved.Value)
	s.True(baseTime.Equal(retrieved.RecordedAt))
}

func (s *Suite) TestGetScoreEntryNotFound() {
	_, err := s.Storage.GetScoreEntry(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrScoreEntryNotFound)
}

func (s *Suite) TestListScoreEntries() {
	entries := []*model.ScoreEntry{
		{ID: "s-1", PlayerID: "p-1", GameID: "game-1", Value: 1, RecordedAt: baseTime},
		{ID: "s-2", PlayerID: "p-1", GameID: "game-2", Value: 2, RecordedAt: baseTime.Add(time.Minute)},
		{ID: "s-3", PlayerID: "p-2", GameID: "game-1", Value: 3, RecordedAt: baseTime.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		s.Require().NoError(s.Storage.SaveScoreEntry(s.Ctx, e))
	}

	byGame, err := s.Storage.ListScoreEntriesByGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(byGame, 2)
	s.Equal(model.ScoreEntryID("s-3"), byGame[0].ID)
	s.Equal(model.ScoreEntryID("s-1"), byGame[1].ID)

	byPlayer, err := s.Storage.ListScoreEntriesByPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Require().Len(byPlayer, 2)
	s.Equal(model.ScoreEntryID("s-2"), byPlayer[0].ID)
}

func (s *Suite) TestDeleteScoreEntry() {
	entry := &model.ScoreEntry{ID: "s-1", PlayerID: "p-1", GameID: "game-1", Value: 1, RecordedAt: baseTime}
	s.Require().NoError(s.Storage.SaveScoreEntry(s.Ctx, entry))

	s.Require().NoError(s.Storage.DeleteScoreEntry(s.Ctx, "s-1"))

	_, err := s.Storage.GetScoreEntry(s.Ctx, "s-1")
	s.ErrorIs(err, model.ErrScoreEntryNotFound)

	byGame, err := s.Storage.ListScoreEntriesByGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(byGame)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
	"github.com/mcoot/scorekeeper/internal/dependencies/mocks"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
	"github.com/mcoot/scorekeeper/internal/testutil"
)

const (
	owner    model.IdentityID = "owner"
	stranger model.IdentityID = "stranger"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
	game    *model.Game
	player  *model.Player
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, mocks.NewMockIDs("ledger"), testutil.NopLogger())
	s.ctx = context.Background()

	s.game = &model.Game{
		ID:             "game-1",
		Name:           "Darts",
		JoinCode:       "DARTS1",
		OwnerID:        owner,
		ParticipantIDs: []model.IdentityID{owner, "guest"},
		Active:         true,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, s.game))

	player, err := s.service.CreatePlayer(s.ctx, owner, "Alice")
	s.Require().NoError(err)
	s.player = player
}

func (s *ServiceSuite) addScore(value int) *model.ScoreEntry {
	entry, err := s.service.AddScoreEntry(s.ctx, s.player.ID, s.game.ID, value, owner)
	s.Require().NoError(err)
	return entry
}

// Player tests

func (s *ServiceSuite) TestCreatePlayerRequiresName() {
	_, err := s.service.CreatePlayer(s.ctx, owner, " ")
	s.ErrorIs(err, model.ErrNameRequired)
}

func (s *ServiceSuite) TestPlayersAreOwnerScoped() {
	_, err := s.service.CreatePlayer(s.ctx, stranger, "Mallory")
	s.Require().NoError(err)

	players, err := s.service.ListPlayers(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("Alice", players[0].Name)

	_, err = s.service.GetPlayer(s.ctx, s.player.ID, stranger)
	s.ErrorIs(err, model.ErrNotPlayerOwner)
}

func (s *ServiceSuite) TestRenamePlayer() {
	player, err := s.service.RenamePlayer(s.ctx, s.player.ID, owner, "Alicia")
	s.Require().NoError(err)
	s.Equal("Alicia", player.Name)

	_, err = s.service.RenamePlayer(s.ctx, s.player.ID, stranger, "Hacked")
	s.ErrorIs(err, model.ErrNotPlayerOwner)

	_, err = s.service.RenamePlayer(s.ctx, s.player.ID, owner, "")
	s.ErrorIs(err, model.ErrNameRequired)
}

func (s *ServiceSuite) TestDeletePlayer() {
	s.ErrorIs(s.service.DeletePlayer(s.ctx, s.player.ID, stranger), model.ErrNotPlayerOwner)
	s.Require().NoError(s.service.DeletePlayer(s.ctx, s.player.ID, owner))

	_, err := s.service.GetPlayer(s.ctx, s.player.ID, owner)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// AddScoreEntry tests

func (s *ServiceSuite) TestAddScoreEntry() {
	entry := s.addScore(10)

	s.Equal(10, entry.Value)
	s.Equal(s.clock.Now(), entry.RecordedAt)

	player, err := s.service.GetPlayer(s.ctx, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal([]model.GameID{"game-1"}, player.GameIDs)

	s.addScore(5)
	player, err = s.service.GetPlayer(s.ctx, s.player.ID, owner)
	s.Require().NoError(err)
	s.Len(player.GameIDs, 1)
}

func (s *ServiceSuite) TestAddScoreEntryMissingRecords() {
	_, err := s.service.AddScoreEntry(s.ctx, "missing", s.game.ID, 1, owner)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.service.AddScoreEntry(s.ctx, s.player.ID, "missing", 1, owner)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestAddScoreEntryRequiresOwningBoth() {
	_, err := s.service.AddScoreEntry(s.ctx, s.player.ID, s.game.ID, 1, stranger)
	s.ErrorIs(err, model.ErrNotPlayerOwner)

	guestPlayer, err := s.service.CreatePlayer(s.ctx, "guest", "Guest's player")
	s.Require().NoError(err)
	_, err = s.service.AddScoreEntry(s.ctx, guestPlayer.ID, s.game.ID, 1, "guest")
	s.ErrorIs(err, model.ErrNotOwner)
}

// Listing and totals

func (s *ServiceSuite) TestListScoresMostRecentFirst() {
	first := s.addScore(1)
	s.clock.Advance(time.Minute)
	second := s.addScore(2)

	byGame, err := s.service.ListScoresForGame(s.ctx, s.game.ID, owner)
	s.Require().NoError(err)
	s.Require().Len(byGame, 2)
	s.Equal(second.ID, byGame[0].ID)
	s.Equal(first.ID, byGame[1].ID)

	byPlayer, err := s.service.ListScoresForPlayer(s.ctx, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(second.ID, byPlayer[0].ID)
}

func (s *ServiceSuite) TestListScoresForbidden() {
	_, err := s.service.ListScoresForGame(s.ctx, s.game.ID, "guest")
	s.ErrorIs(err, model.ErrNotOwner)

	_, err = s.service.ListScoresForPlayer(s.ctx, s.player.ID, stranger)
	s.ErrorIs(err, model.ErrNotPlayerOwner)
}

func (s *ServiceSuite) TestTotalScore() {
	total, err := s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(0, total)

	s.addScore(10)
	s.addScore(-3)

	other := &model.Game{ID: "game-2", JoinCode: "OTHER2", OwnerID: owner, ParticipantIDs: []model.IdentityID{owner}}
	s.Require().NoError(s.storage.SaveGame(s.ctx, other))
	_, err = s.service.AddScoreEntry(s.ctx, s.player.ID, other.ID, 100, owner)
	s.Require().NoError(err)

	total, err = s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(7, total)
}

// Update and delete

func (s *ServiceSuite) TestUpdateScoreEntry() {
	entry := s.addScore(1)

	updated, err := s.service.UpdateScoreEntry(s.ctx, entry.ID, 42, owner)
	s.Require().NoError(err)
	s.Equal(42, updated.Value)

	total, err := s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(42, total)
}

func (s *ServiceSuite) TestUpdateScoreEntryChecks() {
	entry := s.addScore(1)

	_, err := s.service.UpdateScoreEntry(s.ctx, "missing", 1, owner)
	s.ErrorIs(err, model.ErrScoreEntryNotFound)

	_, err = s.service.UpdateScoreEntry(s.ctx, entry.ID, 1, stranger)
	s.ErrorIs(err, model.ErrNotPlayerOwner)

	s.Require().NoError(s.storage.DeleteGame(s.ctx, s.game.ID))
	_, err = s.service.UpdateScoreEntry(s.ctx, entry.ID, 1, owner)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestDeleteScoreEntry() {
	entry := s.addScore(5)

	s.ErrorIs(s.service.DeleteScoreEntry(s.ctx, entry.ID, stranger), model.ErrNotPlayerOwner)
	s.Require().NoError(s.service.DeleteScoreEntry(s.ctx, entry.ID, owner))

	total, err := s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(0, total)

	s.ErrorIs(s.service.DeleteScoreEntry(s.ctx, entry.ID, owner), model.ErrScoreEntryNotFound)
}

func (s *ServiceSuite) TestAddScoreEntryLogs() {
	logger, logs := testutil.CaptureLogger()
	s.service = New(s.storage, s.clock, mocks.NewMockIDs("logged"), logger)

	entry := s.addScore(-4)

	record := logs.Find(s.T(), "score recorded")
	s.Require().NotNil(record)
	s.Equal(string(entry.ID), record["score_id"])
	s.Equal(float64(-4), record["value"])
}

// failingStore fails the selected writes and passes everything else through
type failingStore struct {
	storage.Storage
	failSavePlayer bool
	failSaveScore  bool
}

var errWriteFailed = errors.New("write failed")

func (f *failingStore) SavePlayer(ctx context.Context, p *model.Player) error {
	if f.failSavePlayer {
		return errWriteFailed
	}
	return f.Storage.SavePlayer(ctx, p)
}

func (f *failingStore) SaveScoreEntry(ctx context.Context, e *model.ScoreEntry) error {
	if f.failSaveScore {
		return errWriteFailed
	}
	return f.Storage.SaveScoreEntry(ctx, e)
}

func (s *ServiceSuite) TestAddScoreEntryFailureRecordsNothing() {
	store := &failingStore{Storage: s.storage, failSavePlayer: true}
	s.service = New(store, s.clock, mocks.NewMockIDs("failing"), testutil.NopLogger())

	_, err := s.service.AddScoreEntry(s.ctx, s.player.ID, s.game.ID, 5, owner)
	s.ErrorIs(err, errWriteFailed)

	total, err := s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(0, total)

	// A retry once the store recovers counts the score exactly once
	store.failSavePlayer = false
	s.addScore(5)
	total, err = s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(5, total)
}

func (s *ServiceSuite) TestAddScoreEntrySaveFailureKeepsTotal() {
	s.addScore(2)

	store := &failingStore{Storage: s.storage, failSaveScore: true}
	s.service = New(store, s.clock, mocks.NewMockIDs("failing"), testutil.NopLogger())

	_, err := s.service.AddScoreEntry(s.ctx, s.player.ID, s.game.ID, 5, owner)
	s.ErrorIs(err, errWriteFailed)

	total, err := s.service.TotalScore(s.ctx, s.game.ID, s.player.ID, owner)
	s.Require().NoError(err)
	s.Equal(2, total)
}

func (s *ServiceSuite) TestListScoresOrderWithRealClockAndIDs() {
	s.service = New(s.storage, clock.New(), ids.New(), testutil.NopLogger())

	for v := range 20 {
		s.addScore(v)
	}

	entries, err := s.service.ListScoresForGame(s.ctx, s.game.ID, owner)
	s.Require().NoError(err)
	s.Require().Len(entries, 20)
	for i, e := range entries {
		s.Equal(19-i, e.Value, "position %d", i)
	}
}

func (s *ServiceSuite) TestListScoresCarryNames() {
	s.addScore(3)

	bob, err := s.service.CreatePlayer(s.ctx, owner, "Bob")
	s.Require().NoError(err)
	_, err = s.service.AddScoreEntry(s.ctx, bob.ID, s.game.ID, 4, owner)
	s.Require().NoError(err)
	s.Require().NoError(s.service.DeletePlayer(s.ctx, bob.ID, owner))

	byGame, err := s.service.ListScoresForGame(s.ctx, s.game.ID, owner)
	s.Require().NoError(err)
	names := map[int]string{}
	for _, line := range byGame {
		s.Equal("Darts", line.GameName)
		names[line.Value] = line.PlayerName
	}
	s.Equal(map[int]string{3: "Alice", 4: ""}, names)

	byPlayer, err := s.service.ListScoresForPlayer(s.ctx, s.player.ID, owner)
	s.Require().NoError(err)
	s.Require().Len(byPlayer, 1)
	s.Equal("Alice", byPlayer[0].PlayerName)
	s.Equal("Darts", byPlayer[0].GameName)
}

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/scorekeeper/internal/access"
	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Service records discrete score entries against standalone players.
// Recording or reading scores for a (player, game) pair requires owning both.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// Player operations

// CreatePlayer creates a player owned by owner
func (s *Service) CreatePlayer(ctx context.Context, owner model.IdentityID, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(s.ids.NewID()),
		Name:      name,
		OwnerID:   owner,
		GameIDs:   []model.GameID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("owner_id", string(owner)),
	)
	return player, nil
}

// ListPlayers returns the players owned by owner
func (s *Service) ListPlayers(ctx context.Context, owner model.IdentityID) ([]*model.Player, error) {
	return s.storage.ListPlayersByOwner(ctx, owner)
}

// GetPlayer returns a player the requester owns
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID, requester model.IdentityID) (*model.Player, error) {
	return s.ownedPlayer(ctx, id, requester)
}

// RenamePlayer changes the name of a player the requester owns
func (s *Service) RenamePlayer(ctx context.Context, id model.PlayerID, requester model.IdentityID, name string) (*model.Player, error) {
	player, err := s.ownedPlayer(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrNameRequired
	}
	player.Name = name
	player.UpdatedAt = s.clock.Now()

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player the requester owns. Its score entries are kept.
func (s *Service) DeletePlayer(ctx context.Context, id model.PlayerID, requester model.IdentityID) error {
	if _, err := s.ownedPlayer(ctx, id, requester); err != nil {
		return err
	}
	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}

	s.logger.Info("player deleted", slog.String("player_id", string(id)))
	return nil
}

// Score entry operations

// AddScoreEntry records value for the player in the game
func (s *Service) AddScoreEntry(ctx context.Context, playerID model.PlayerID, gameID model.GameID, value int, requester model.IdentityID) (*model.ScoreEntry, error) {
	player, _, err := s.ownedPair(ctx, playerID, gameID, requester)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &model.ScoreEntry{
		ID:         model.ScoreEntryID(s.ids.NewID()),
		PlayerID:   playerID,
		GameID:     gameID,
		Value:      value,
		RecordedAt: now,
		UpdatedAt:  now,
	}

	// Game list first, so a failed write never leaves an entry behind an error
	if !player.HasGame(gameID) {
		player.GameIDs = append(player.GameIDs, gameID)
		player.UpdatedAt = now
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, err
		}
	}

	if err := s.storage.SaveScoreEntry(ctx, entry); err != nil {
		s.logger.Error("failed to save score entry",
			slog.String("player_id", string(playerID)),
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("score recorded",
		slog.String("score_id", string(entry.ID)),
		slog.String("player_id", string(playerID)),
		slog.String("game_id", string(gameID)),
		slog.Int("value", value),
	)
	return entry, nil
}

// ScoreLine is a score entry with the names of its player and game.
// A name is empty when that record has since been deleted.
type ScoreLine struct {
	*model.ScoreEntry
	PlayerName string
	GameName   string
}

// ListScoresForGame returns the entries recorded in a game the requester owns,
// most recent first, each named after its player
func (s *Service) ListScoresForGame(ctx context.Context, gameID model.GameID, requester model.IdentityID) ([]ScoreLine, error) {
	game, err := s.ownedGame(ctx, gameID, requester)
	if err != nil {
		return nil, err
	}
	entries, err := s.storage.ListScoreEntriesByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	playerNames := make(map[model.PlayerID]string)
	lines := make([]ScoreLine, len(entries))
	for i, e := range entries {
		name, ok := playerNames[e.PlayerID]
		if !ok {
			if name, err = s.playerName(ctx, e.PlayerID); err != nil {
				return nil, err
			}
			playerNames[e.PlayerID] = name
		}
		lines[i] = ScoreLine{ScoreEntry: e, PlayerName: name, GameName: game.Name}
	}
	return lines, nil
}

// ListScoresForPlayer returns the entries recorded for a player the requester owns,
// most recent first, each named after its game
func (s *Service) ListScoresForPlayer(ctx context.Context, playerID model.PlayerID, requester model.IdentityID) ([]ScoreLine, error) {
	player, err := s.ownedPlayer(ctx, playerID, requester)
	if err != nil {
		return nil, err
	}
	entries, err := s.storage.ListScoreEntriesByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	gameNames := make(map[model.GameID]string)
	lines := make([]ScoreLine, len(entries))
	for i, e := range entries {
		name, ok := gameNames[e.GameID]
		if !ok {
			if name, err = s.gameName(ctx, e.GameID); err != nil {
				return nil, err
			}
			gameNames[e.GameID] = name
		}
		lines[i] = ScoreLine{ScoreEntry: e, PlayerName: player.Name, GameName: name}
	}
	return lines, nil
}

func (s *Service) playerName(ctx context.Context, id model.PlayerID) (string, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return player.Name, nil
}

func (s *Service) gameName(ctx context.Context, id model.GameID) (string, error) {
	game, err := s.storage.GetGame(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return game.Name, nil
}

// TotalScore sums the entries for a player in a game; zero when there are none
func (s *Service) TotalScore(ctx context.Context, gameID model.GameID, playerID model.PlayerID, requester model.IdentityID) (int, error) {
	if _, _, err := s.ownedPair(ctx, playerID, gameID, requester); err != nil {
		return 0, err
	}

	entries, err := s.storage.ListScoreEntriesByPlayer(ctx, playerID)
	if err != nil {
		return 0, err
	}
	inGame := slices.DeleteFunc(entries, func(e *model.ScoreEntry) bool {
		return e.GameID != gameID
	})
	return model.SumScores(inGame), nil
}

// UpdateScoreEntry overwrites the value of an entry
func (s *Service) UpdateScoreEntry(ctx context.Context, id model.ScoreEntryID, value int, requester model.IdentityID) (*model.ScoreEntry, error) {
	entry, err := s.ownedEntry(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	entry.Value = value
	entry.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveScoreEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteScoreEntry removes an entry
func (s *Service) DeleteScoreEntry(ctx context.Context, id model.ScoreEntryID, requester model.IdentityID) error {
	if _, err := s.ownedEntry(ctx, id, requester); err != nil {
		return err
	}
	if err := s.storage.DeleteScoreEntry(ctx, id); err != nil {
		return err
	}

	s.logger.Info("score deleted", slog.String("score_id", string(id)))
	return nil
}

func (s *Service) ownedPlayer(ctx context.Context, id model.PlayerID, requester model.IdentityID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if player.OwnerID != requester {
		return nil, model.ErrNotPlayerOwner
	}
	return player, nil
}

func (s *Service) ownedGame(ctx context.Context, id model.GameID, requester model.IdentityID) (*model.Game, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(access.RecordScores, game, requester); err != nil {
		return nil, err
	}
	return game, nil
}

// ownedPair resolves both records before checking ownership of either,
// so a missing record always wins over a forbidden one
func (s *Service) ownedPair(ctx context.Context, playerID model.PlayerID, gameID model.GameID, requester model.IdentityID) (*model.Player, *model.Game, error) {
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if player.OwnerID != requester {
		return nil, nil, model.ErrNotPlayerOwner
	}
	if err := access.Check(access.RecordScores, game, requester); err != nil {
		return nil, nil, err
	}
	return player, game, nil
}

func (s *Service) ownedEntry(ctx context.Context, id model.ScoreEntryID, requester model.IdentityID) (*model.ScoreEntry, error) {
	entry, err := s.storage.GetScoreEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.ownedPair(ctx, entry.PlayerID, entry.GameID, requester); err != nil {
		return nil, err
	}
	return entry, nil
}

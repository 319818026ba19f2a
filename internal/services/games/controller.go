package games

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/scorekeeper/internal/access"
	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
	"github.com/mcoot/scorekeeper/internal/dependencies/random"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 6
	// JoinCodeAlphabet is the characters used in join codes (avoid confusing chars)
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxJoinCodeAttempts bounds the search for an unused join code
	maxJoinCodeAttempts = 32
)

// Controller applies ownership and participation rules to games and their rosters.
// Every mutation loads the game, checks access, changes it and saves the whole record.
type Controller struct {
	storage   storage.Storage
	clock     clock.Clock
	random    random.Random
	ids       ids.Generator
	logger    *slog.Logger
	listeners []Listener
}

// NewController creates a new games Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		ids:     ids,
		logger:  logger,
	}
}

// Subscribe registers a listener for successful game changes.
// Must be called before the controller starts serving requests.
func (c *Controller) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// CreateGame creates an active game owned by owner with a fresh join code
func (c *Controller) CreateGame(ctx context.Context, owner model.IdentityID, name string, metadata map[string]any) (*model.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	code, err := c.generateJoinCode(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:             model.GameID(c.ids.NewID()),
		Name:           name,
		JoinCode:       code,
		OwnerID:        owner,
		ParticipantIDs: []model.IdentityID{owner},
		Roster:         []model.RosterEntry{},
		Active:         true,
		Metadata:       metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("owner_id", string(owner)),
		slog.String("join_code", string(code)),
	)
	c.notify(ctx, EventCreated, game)

	return game, nil
}

// JoinGame adds identity to the participants of the game with the given join code
func (c *Controller) JoinGame(ctx context.Context, identity model.IdentityID, joinCode string) (*model.Game, error) {
	game, err := c.storage.GetGameByJoinCode(ctx, model.NormalizeJoinCode(joinCode))
	if err != nil {
		return nil, err
	}

	if !game.Active {
		return nil, model.ErrGameInactive
	}
	if game.IsParticipant(identity) {
		return nil, model.ErrAlreadyParticipant
	}

	game.ParticipantIDs = append(game.ParticipantIDs, identity)
	game.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("participant joined game",
		slog.String("game_id", string(game.ID)),
		slog.String("identity_id", string(identity)),
	)
	c.notify(ctx, EventJoined, game)

	return game, nil
}

// LeaveGame removes a non-owner participant from a game
func (c *Controller) LeaveGame(ctx context.Context, gameID model.GameID, identity model.IdentityID) error {
	game, err := c.Authorize(ctx, gameID, identity, access.LeaveGame)
	if err != nil {
		return err
	}
	if game.IsOwner(identity) {
		return model.ErrOwnerCannotLeave
	}

	remaining := make([]model.IdentityID, 0, len(game.ParticipantIDs))
	for _, id := range game.ParticipantIDs {
		if id != identity {
			remaining = append(remaining, id)
		}
	}
	game.ParticipantIDs = remaining
	game.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, game); err != nil {
		return err
	}

	c.logger.Info("participant left game",
		slog.String("game_id", string(game.ID)),
		slog.String("identity_id", string(identity)),
	)
	c.notify(ctx, EventLeft, game)

	return nil
}

// ListGames returns every game identity owns or participates in
func (c *Controller) ListGames(ctx context.Context, identity model.IdentityID) ([]*model.Game, error) {
	return c.storage.ListGamesForIdentity(ctx, identity)
}

// OwnerNames maps the owner of each game to their display name.
// Owners whose identity no longer exists are left out.
func (c *Controller) OwnerNames(ctx context.Context, games []*model.Game) (map[model.IdentityID]string, error) {
	names := make(map[model.IdentityID]string)
	for _, g := range games {
		if _, seen := names[g.OwnerID]; seen {
			continue
		}
		identity, err := c.storage.GetIdentity(ctx, g.OwnerID)
		if errors.Is(err, model.ErrIdentityNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		names[g.OwnerID] = identity.DisplayName
	}
	return names, nil
}

// GetGame resolves ref as a game ID, falling back to a join code
func (c *Controller) GetGame(ctx context.Context, ref string, requester model.IdentityID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, model.GameID(ref))
	if errors.Is(err, model.ErrGameNotFound) {
		game, err = c.storage.GetGameByJoinCode(ctx, model.NormalizeJoinCode(ref))
	}
	if err != nil {
		return nil, err
	}

	if err := access.Check(access.ViewGame, game, requester); err != nil {
		return nil, err
	}
	return game, nil
}

// Authorize loads a game and checks that requester may perform op on it
func (c *Controller) Authorize(ctx context.Context, gameID model.GameID, requester model.IdentityID, op access.Operation) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(op, game, requester); err != nil {
		return nil, err
	}
	return game, nil
}

// RenameGame changes the display name of a game
func (c *Controller) RenameGame(ctx context.Context, gameID model.GameID, requester model.IdentityID, name string) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.RenameGame, EventRenamed, func(game *model.Game) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return model.ErrNameRequired
		}
		game.Name = name
		return nil
	})
}

// UpdateMetadata replaces the metadata bag of a game
func (c *Controller) UpdateMetadata(ctx context.Context, gameID model.GameID, requester model.IdentityID, metadata map[string]any) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.UpdateMetadata, EventMetadataUpdated, func(game *model.Game) error {
		game.Metadata = metadata
		return nil
	})
}

// SetActive opens or closes a game to new participants
func (c *Controller) SetActive(ctx context.Context, gameID model.GameID, requester model.IdentityID, active bool) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.SetActive, EventActiveChanged, func(game *model.Game) error {
		game.Active = active
		return nil
	})
}

// DeleteGame removes a game. Score entries recorded against it are kept.
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID, requester model.IdentityID) error {
	game, err := c.Authorize(ctx, gameID, requester, access.DeleteGame)
	if err != nil {
		return err
	}

	if err := c.storage.DeleteGame(ctx, gameID); err != nil {
		c.logger.Error("failed to delete game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("game deleted", slog.String("game_id", string(gameID)))
	c.notify(ctx, EventDeleted, game)

	return nil
}

// AddRosterEntry appends a named entry with a score of zero
func (c *Controller) AddRosterEntry(ctx context.Context, gameID model.GameID, requester model.IdentityID, name string) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.AddRosterEntry, EventRosterAdded, func(game *model.Game) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return model.ErrNameRequired
		}
		if game.HasRosterName(name) {
			return model.ErrDuplicateRosterEntry
		}
		game.Roster = append(game.Roster, model.RosterEntry{
			ID:   model.RosterEntryID(c.ids.NewID()),
			Name: name,
		})
		return nil
	})
}

// SetRosterScore overwrites the score of a roster entry
func (c *Controller) SetRosterScore(ctx context.Context, gameID model.GameID, requester model.IdentityID, entryID model.RosterEntryID, score int) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.SetRosterScore, EventScoreSet, func(game *model.Game) error {
		i := game.RosterIndex(entryID)
		if i < 0 {
			return model.ErrRosterEntryNotFound
		}
		game.Roster[i].Score = score
		return nil
	})
}

// RemoveRosterEntry deletes a roster entry
func (c *Controller) RemoveRosterEntry(ctx context.Context, gameID model.GameID, requester model.IdentityID, entryID model.RosterEntryID) (*model.Game, error) {
	return c.mutate(ctx, gameID, requester, access.RemoveRosterEntry, EventRosterRemoved, func(game *model.Game) error {
		i := game.RosterIndex(entryID)
		if i < 0 {
			return model.ErrRosterEntryNotFound
		}
		game.Roster = append(game.Roster[:i], game.Roster[i+1:]...)
		return nil
	})
}

// mutate runs the load, check, change, save cycle shared by game updates
func (c *Controller) mutate(
	ctx context.Context,
	gameID model.GameID,
	requester model.IdentityID,
	op access.Operation,
	kind EventKind,
	change func(*model.Game) error,
) (*model.Game, error) {
	game, err := c.Authorize(ctx, gameID, requester, op)
	if err != nil {
		return nil, err
	}

	if err := change(game); err != nil {
		return nil, err
	}
	game.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game updated",
		slog.String("game_id", string(game.ID)),
		slog.String("identity_id", string(requester)),
		slog.String("event", string(kind)),
	)
	c.notify(ctx, kind, game)

	return game, nil
}

func (c *Controller) save(ctx context.Context, game *model.Game) error {
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (c *Controller) generateJoinCode(ctx context.Context) (model.JoinCode, error) {
	for range maxJoinCodeAttempts {
		code := model.JoinCode(c.random.String(JoinCodeLength, JoinCodeAlphabet))
		exists, err := c.storage.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", model.ErrJoinCodeExhausted
}

func (c *Controller) notify(ctx context.Context, kind EventKind, game *model.Game) {
	for _, l := range c.listeners {
		l.GameChanged(ctx, Event{Kind: kind, Game: game.Clone()})
	}
}

// ControllerInterface defines the operations the API layer relies on
type ControllerInterface interface {
	CreateGame(ctx context.Context, owner model.IdentityID, name string, metadata map[string]any) (*model.Game, error)
	JoinGame(ctx context.Context, identity model.IdentityID, joinCode string) (*model.Game, error)
	LeaveGame(ctx context.Context, gameID model.GameID, identity model.IdentityID) error
	ListGames(ctx context.Context, identity model.IdentityID) ([]*model.Game, error)
	OwnerNames(ctx context.Context, games []*model.Game) (map[model.IdentityID]string, error)
	GetGame(ctx context.Context, ref string, requester model.IdentityID) (*model.Game, error)
	Authorize(ctx context.Context, gameID model.GameID, requester model.IdentityID, op access.Operation) (*model.Game, error)
	RenameGame(ctx context.Context, gameID model.GameID, requester model.IdentityID, name string) (*model.Game, error)
	UpdateMetadata(ctx context.Context, gameID model.GameID, requester model.IdentityID, metadata map[string]any) (*model.Game, error)
	SetActive(ctx context.Context, gameID model.GameID, requester model.IdentityID, active bool) (*model.Game, error)
	DeleteGame(ctx context.Context, gameID model.GameID, requester model.IdentityID) error
	AddRosterEntry(ctx context.Context, gameID model.GameID, requester model.IdentityID, name string) (*model.Game, error)
	SetRosterScore(ctx context.Context, gameID model.GameID, requester model.IdentityID, entryID model.RosterEntryID, score int) (*model.Game, error)
	RemoveRosterEntry(ctx context.Context, gameID model.GameID, requester model.IdentityID, entryID model.RosterEntryID) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)

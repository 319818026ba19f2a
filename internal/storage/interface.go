package storage

import (
	"context"

	"github.com/mcoot/scorekeeper/internal/model"
)

// Storage defines the interface for data persistence.
// Get and List operations return copies; callers persist changes with the
// matching Save, which replaces the whole record.
type Storage interface {
	// Identity operations
	SaveIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error)

	// Credential operations
	SaveCredential(ctx context.Context, cred *model.Credential) error
	GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error)
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameByJoinCode(ctx context.Context, code model.JoinCode) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	JoinCodeExists(ctx context.Context, code model.JoinCode) (bool, error)
	ListGamesForIdentity(ctx context.Context, id model.IdentityID) ([]*model.Game, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayersByOwner(ctx context.Context, owner model.IdentityID) ([]*model.Player, error)

	// Score entry operations
	SaveScoreEntry(ctx context.Context, entry *model.ScoreEntry) error
	GetScoreEntry(ctx context.Context, id model.ScoreEntryID) (*model.ScoreEntry, error)
	DeleteScoreEntry(ctx context.Context, id model.ScoreEntryID) error
	ListScoreEntriesByGame(ctx context.Context, gameID model.GameID) ([]*model.ScoreEntry, error)
	ListScoreEntriesByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.ScoreEntry, error)

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}

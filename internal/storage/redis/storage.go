package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each record is a JSON string; secondary lookups go through index keys
// (plain strings for unique lookups, SETs of record keys for listings).
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance and verifies the connection
func New(cfg Config) (*Storage, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return s, nil
}

// Open creates a Redis storage without contacting the server.
// Connections are made lazily, so the store can come up while Redis is down.
func Open(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.ConnectTimeout

	return &Storage{
		client: redis.NewClient(opts),
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping checks the connection to Redis
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// getRecord loads and decodes the JSON record at key, mapping a missing key to notFound
func getRecord[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &record, nil
}

// listRecords loads every record referenced by the SET at indexKey.
// Keys whose record has gone, or which keep rejects, are pruned from the index.
func listRecords[T any](ctx context.Context, client *redis.Client, indexKey string, keep func(*T) bool) ([]*T, error) {
	keys, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(keys))
	if len(keys) == 0 {
		return records, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var stale []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			stale = append(stale, keys[i])
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			continue // Skip invalid data
		}
		if keep != nil && !keep(&record) {
			stale = append(stale, keys[i])
			continue
		}
		records = append(records, &record)
	}

	if len(stale) > 0 {
		if err := client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, identityKey(identity.ID), data, 0).Err()
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	return getRecord[model.Identity](ctx, s.client, identityKey(id), model.ErrIdentityNotFound)
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	c := *cred
	c.Email = strings.ToLower(cred.Email)

	data, err := json.Marshal(&c)
	if err != nil {
		return err
	}

	prev, err := s.GetCredential(ctx, c.IdentityID)
	if err != nil && !errors.Is(err, model.ErrIdentityNotFound) {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	if prev != nil && prev.Email != c.Email {
		pipe.Del(ctx, emailIndexKey(prev.Email))
	}
	pipe.Set(ctx, credentialKey(c.IdentityID), data, 0)
	pipe.Set(ctx, emailIndexKey(c.Email), string(c.IdentityID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	return getRecord[model.Credential](ctx, s.client, credentialKey(id), model.ErrIdentityNotFound)
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	id, err := s.client.Get(ctx, emailIndexKey(strings.ToLower(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}
	return s.GetCredential(ctx, model.IdentityID(id))
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	key := gameKey(game.ID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Set(ctx, joinCodeIndexKey(game.JoinCode), string(game.ID), 0)
	pipe.SAdd(ctx, gamesForIdentityIndexKey(game.OwnerID), key)
	for _, id := range game.ParticipantIDs {
		pipe.SAdd(ctx, gamesForIdentityIndexKey(id), key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getRecord[model.Game](ctx, s.client, gameKey(id), model.ErrGameNotFound)
}

func (s *Storage) GetGameByJoinCode(ctx context.Context, code model.JoinCode) (*model.Game, error) {
	id, err := s.client.Get(ctx, joinCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return s.GetGame(ctx, model.GameID(id))
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	key := gameKey(id)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, joinCodeIndexKey(game.JoinCode))
	pipe.SRem(ctx, gamesForIdentityIndexKey(game.OwnerID), key)
	for _, participant := range game.ParticipantIDs {
		pipe.SRem(ctx, gamesForIdentityIndexKey(participant), key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) JoinCodeExists(ctx context.Context, code model.JoinCode) (bool, error) {
	exists, err := s.client.Exists(ctx, joinCodeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListGamesForIdentity(ctx context.Context, id model.IdentityID) ([]*model.Game, error) {
	games, err := listRecords(ctx, s.client, gamesForIdentityIndexKey(id), func(g *model.Game) bool {
		return g.IsParticipant(id)
	})
	if err != nil {
		return nil, err
	}
	model.SortGames(games)
	return games, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	key := playerKey(player.ID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, playersForOwnerIndexKey(player.OwnerID), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getRecord[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	key := playerKey(id)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, playersForOwnerIndexKey(player.OwnerID), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPlayersByOwner(ctx context.Context, owner model.IdentityID) ([]*model.Player, error) {
	players, err := listRecords(ctx, s.client, playersForOwnerIndexKey(owner), func(p *model.Player) bool {
		return p.OwnerID == owner
	})
	if err != nil {
		return nil, err
	}
	model.SortPlayers(players)
	return players, nil
}

// Score entry operations

func (s *Storage) SaveScoreEntry(ctx context.Context, entry *model.ScoreEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := scoreEntryKey(entry.ID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, scoresForGameIndexKey(entry.GameID), key)
	pipe.SAdd(ctx, scoresForPlayerIndexKey(entry.PlayerID), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetScoreEntry(ctx context.Context, id model.ScoreEntryID) (*model.ScoreEntry, error) {
	return getRecord[model.ScoreEntry](ctx, s.client, scoreEntryKey(id), model.ErrScoreEntryNotFound)
}

func (s *Storage) DeleteScoreEntry(ctx context.Context, id model.ScoreEntryID) error {
	entry, err := s.GetScoreEntry(ctx, id)
	if errors.Is(err, model.ErrScoreEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	key := scoreEntryKey(id)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, scoresForGameIndexKey(entry.GameID), key)
	pipe.SRem(ctx, scoresForPlayerIndexKey(entry.PlayerID), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListScoreEntriesByGame(ctx context.Context, gameID model.GameID) ([]*model.ScoreEntry, error) {
	entries, err := listRecords[model.ScoreEntry](ctx, s.client, scoresForGameIndexKey(gameID), nil)
	if err != nil {
		return nil, err
	}
	model.SortScoreEntries(entries)
	return entries, nil
}

func (s *Storage) ListScoreEntriesByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.ScoreEntry, error) {
	entries, err := listRecords[model.ScoreEntry](ctx, s.client, scoresForPlayerIndexKey(playerID), nil)
	if err != nil {
		return nil, err
	}
	model.SortScoreEntries(entries)
	return entries, nil
}

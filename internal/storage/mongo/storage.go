package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Config holds MongoDB connection settings
type Config struct {
	// URI is the MongoDB connection string (e.g., mongodb://localhost:27017)
	URI string

	// Database is the database holding the scorekeeper collections
	Database string

	// ConnectTimeout bounds the initial connection and ping made by New
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible defaults for MongoDB configuration
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "scorekeeper",
		ConnectTimeout: 5 * time.Second,
	}
}

// Storage is a MongoDB-backed implementation of the storage interface
type Storage struct {
	client  *mongo.Client
	db      *mongo.Database
	indexed atomic.Bool
}

// New connects to MongoDB, verifies the connection and ensures indexes exist
func New(cfg Config) (*Storage, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Open creates a MongoDB storage without waiting for the server.
// Indexes are created by the first successful Ping.
func Open(cfg Config) (*Storage, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &Storage{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects from MongoDB
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping checks the connection to MongoDB and creates indexes the first time it succeeds
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	if s.indexed.Load() {
		return nil
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return err
	}
	s.indexed.Store(true)
	return nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		credentialsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		gamesCollection: {
			{Keys: bson.D{{Key: "join_code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "participants", Value: 1}}},
		},
		playersCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		scoreEntriesCollection: {
			{Keys: bson.D{{Key: "game", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "player", Value: 1}, {Key: "date", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// converter is implemented by every document type
type converter[M any] interface {
	toModel() *M
}

func findOne[D converter[M], M any](ctx context.Context, coll *mongo.Collection, filter any, notFound error) (*M, error) {
	var doc D
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func findMany[D converter[M], M any](ctx context.Context, coll *mongo.Collection, filter any, sort bson.D) ([]*M, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}

	var docs []D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]*M, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toModel())
	}
	return records, nil
}

func (s *Storage) replace(ctx context.Context, collection, id string, doc any) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *Storage) deleteByID(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	return s.replace(ctx, identitiesCollection, string(identity.ID), toIdentityDoc(identity))
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	return findOne[identityDoc, model.Identity](ctx, s.db.Collection(identitiesCollection),
		bson.M{"_id": string(id)}, model.ErrIdentityNotFound)
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	doc := toCredentialDoc(cred)
	doc.Email = strings.ToLower(doc.Email)
	err := s.replace(ctx, credentialsCollection, doc.ID, doc)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrEmailTaken
	}
	return err
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	return findOne[credentialDoc, model.Credential](ctx, s.db.Collection(credentialsCollection),
		bson.M{"_id": string(id)}, model.ErrIdentityNotFound)
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return findOne[credentialDoc, model.Credential](ctx, s.db.Collection(credentialsCollection),
		bson.M{"email": strings.ToLower(email)}, model.ErrIdentityNotFound)
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	return s.replace(ctx, gamesCollection, string(game.ID), toGameDoc(game))
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return findOne[gameDoc, model.Game](ctx, s.db.Collection(gamesCollection),
		bson.M{"_id": string(id)}, model.ErrGameNotFound)
}

func (s *Storage) GetGameByJoinCode(ctx context.Context, code model.JoinCode) (*model.Game, error) {
	return findOne[gameDoc, model.Game](ctx, s.db.Collection(gamesCollection),
		bson.M{"join_code": string(code)}, model.ErrGameNotFound)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	return s.deleteByID(ctx, gamesCollection, string(id))
}

func (s *Storage) JoinCodeExists(ctx context.Context, code model.JoinCode) (bool, error) {
	n, err := s.db.Collection(gamesCollection).CountDocuments(ctx, bson.M{"join_code": string(code)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) ListGamesForIdentity(ctx context.Context, id model.IdentityID) ([]*model.Game, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner": string(id)},
		bson.M{"participants": string(id)},
	}}
	return findMany[gameDoc, model.Game](ctx, s.db.Collection(gamesCollection), filter,
		bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	return s.replace(ctx, playersCollection, string(player.ID), toPlayerDoc(player))
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return findOne[playerDoc, model.Player](ctx, s.db.Collection(playersCollection),
		bson.M{"_id": string(id)}, model.ErrPlayerNotFound)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.deleteByID(ctx, playersCollection, string(id))
}

func (s *Storage) ListPlayersByOwner(ctx context.Context, owner model.IdentityID) ([]*model.Player, error) {
	return findMany[playerDoc, model.Player](ctx, s.db.Collection(playersCollection),
		bson.M{"owner": string(owner)}, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
}

// Score entry operations

func (s *Storage) SaveScoreEntry(ctx context.Context, entry *model.ScoreEntry) error {
	return s.replace(ctx, scoreEntriesCollection, string(entry.ID), toScoreEntryDoc(entry))
}

func (s *Storage) GetScoreEntry(ctx context.Context, id model.ScoreEntryID) (*model.ScoreEntry, error) {
	return findOne[scoreEntryDoc, model.ScoreEntry](ctx, s.db.Collection(scoreEntriesCollection),
		bson.M{"_id": string(id)}, model.ErrScoreEntryNotFound)
}

func (s *Storage) DeleteScoreEntry(ctx context.Context, id model.ScoreEntryID) error {
	return s.deleteByID(ctx, scoreEntriesCollection, string(id))
}

var scoreEntrySort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}

func (s *Storage) ListScoreEntriesByGame(ctx context.Context, gameID model.GameID) ([]*model.ScoreEntry, error) {
	return findMany[scoreEntryDoc, model.ScoreEntry](ctx, s.db.Collection(scoreEntriesCollection),
		bson.M{"game": string(gameID)}, scoreEntrySort)
}

func (s *Storage) ListScoreEntriesByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.ScoreEntry, error) {
	return findMany[scoreEntryDoc, model.ScoreEntry](ctx, s.db.Collection(scoreEntriesCollection),
		bson.M{"player": string(playerID)}, scoreEntrySort)
}

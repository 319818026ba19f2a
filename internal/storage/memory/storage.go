package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	identities    map[model.IdentityID]*model.Identity
	credentials   map[model.IdentityID]*model.Credential
	emailIndex    map[string]model.IdentityID
	games         map[model.GameID]*model.Game
	joinCodeIndex map[model.JoinCode]model.GameID
	players       map[model.PlayerID]*model.Player
	scoreEntries  map[model.ScoreEntryID]*model.ScoreEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities:    make(map[model.IdentityID]*model.Identity),
		credentials:   make(map[model.IdentityID]*model.Credential),
		emailIndex:    make(map[string]model.IdentityID),
		games:         make(map[model.GameID]*model.Game),
		joinCodeIndex: make(map[model.JoinCode]model.GameID),
		players:       make(map[model.PlayerID]*model.Player),
		scoreEntries:  make(map[model.ScoreEntryID]*model.ScoreEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping always succeeds for the in-memory store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *identity
	s.identities[identity.ID] = &c
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	c := *identity
	return &c, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(cred.Email)
	if prev, ok := s.credentials[cred.IdentityID]; ok && prev.Email != email {
		delete(s.emailIndex, prev.Email)
	}
	c := *cred
	c.Email = email
	s.credentials[cred.IdentityID] = &c
	s.emailIndex[email] = cred.IdentityID
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	c := *cred
	return &c, nil
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	cred, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	c := *cred
	return &c, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	s.joinCodeIndex[game.JoinCode] = game.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) GetGameByJoinCode(ctx context.Context, code model.JoinCode) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinCodeIndex[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[id]; ok {
		delete(s.joinCodeIndex, game.JoinCode)
	}
	delete(s.games, id)
	return nil
}

func (s *Storage) JoinCodeExists(ctx context.Context, code model.JoinCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.joinCodeIndex[code]
	return ok, nil
}

func (s *Storage) ListGamesForIdentity(ctx context.Context, id model.IdentityID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := []*model.Game{}
	for _, game := range s.games {
		if game.IsParticipant(id) {
			games = append(games, game.Clone())
		}
	}
	model.SortGames(games)
	return games, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) ListPlayersByOwner(ctx context.Context, owner model.IdentityID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := []*model.Player{}
	for _, player := range s.players {
		if player.OwnerID == owner {
			players = append(players, player.Clone())
		}
	}
	model.SortPlayers(players)
	return players, nil
}

// Score entry operations

func (s *Storage) SaveScoreEntry(ctx context.Context, entry *model.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *entry
	s.scoreEntries[entry.ID] = &c
	return nil
}

func (s *Storage) GetScoreEntry(ctx context.Context, id model.ScoreEntryID) (*model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.scoreEntries[id]
	if !ok {
		return nil, model.ErrScoreEntryNotFound
	}
	c := *entry
	return &c, nil
}

func (s *Storage) DeleteScoreEntry(ctx context.Context, id model.ScoreEntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scoreEntries, id)
	return nil
}

func (s *Storage) ListScoreEntriesByGame(ctx context.Context, gameID model.GameID) ([]*model.ScoreEntry, error) {
	return s.filterScoreEntries(func(e *model.ScoreEntry) bool { return e.GameID == gameID }), nil
}

func (s *Storage) ListScoreEntriesByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.ScoreEntry, error) {
	return s.filterScoreEntries(func(e *model.ScoreEntry) bool { return e.PlayerID == playerID }), nil
}

func (s *Storage) filterScoreEntries(keep func(*model.ScoreEntry) bool) []*model.ScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := []*model.ScoreEntry{}
	for _, entry := range s.scoreEntries {
		if keep(entry) {
			c := *entry
			entries = append(entries, &c)
		}
	}
	model.SortScoreEntries(entries)
	return entries
}

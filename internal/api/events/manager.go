package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/games"
)

// SSE event names
const (
	EventGameUpdated = "game-updated"
	EventGameDeleted = "game-deleted"
)

// HubManager owns one hub per watched game and forwards game changes to it
type HubManager struct {
	hubs   map[model.GameID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// Ensure HubManager can subscribe to game changes
var _ games.Listener = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a game, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubLocked(gameID)
}

// Subscribe registers client with the game's hub, creating the hub if needed.
// Lookup and registration share the manager lock, so CleanupEmptyHubs cannot
// close the hub in between.
func (m *HubManager) Subscribe(gameID model.GameID, client *Client) (*Hub, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub := m.hubLocked(gameID)
	if hub.Register(client) {
		return hub, true
	}
	// The mapped hub was closed directly; replace it
	delete(m.hubs, gameID)
	hub = m.hubLocked(gameID)
	return hub, hub.Register(client)
}

func (m *HubManager) hubLocked(gameID model.GameID) *Hub {
	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}
	hub := NewHub(gameID, m.logger)
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a game, or nil if nobody is watching it
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Run cleans up empty hubs every interval until ctx is cancelled, then closes all hubs
func (m *HubManager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			m.closeAll()
			return nil
		}
	}
}

func (m *HubManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

// GameChanged pushes the new game state to anyone watching it
func (m *HubManager) GameChanged(ctx context.Context, event games.Event) {
	hub := m.GetHub(event.Game.ID)
	if hub == nil {
		return
	}

	if event.Kind == games.EventDeleted {
		m.mu.Lock()
		delete(m.hubs, event.Game.ID)
		m.mu.Unlock()
		data, _ := json.Marshal(map[string]string{"id": string(event.Game.ID)})
		hub.CloseWithEvent(EventGameDeleted, string(data))
		return
	}

	data, err := json.Marshal(response.GameFromModel(event.Game))
	if err != nil {
		m.logger.Error("failed to encode game event", slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventGameUpdated, string(data))
}

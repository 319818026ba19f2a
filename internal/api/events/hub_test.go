package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/games"
	"github.com/mcoot/scorekeeper/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{"single line data", "game-updated", `{"id":"g1"}`, "event: game-updated\ndata: {\"id\":\"g1\"}\n\n"},
		{"multi-line data", "test", "line1\nline2", "event: test\ndata: line1\ndata: line2\n\n"},
		{"empty data", "ping", "", "event: ping\ndata: \n\n"},
		{"carriage returns", "test", "line1\r\nline2\r\n", "event: test\ndata: line1\ndata: line2\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func receive(t *testing.T, c *Client) (string, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return string(msg), ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return "", false
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub("game-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("alice")
	require.True(t, hub.Register(client))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("hello", "world")

	msg, ok := receive(t, client)
	require.True(t, ok)
	assert.Equal(t, "event: hello\ndata: world\n\n", msg)

	hub.Unregister(client)
	_, ok = receive(t, client)
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubCloseWithEventDeliversThenDisconnects(t *testing.T) {
	hub := NewHub("game-1", testutil.NopLogger())
	go hub.Run()

	client := NewClient("alice")
	require.True(t, hub.Register(client))

	hub.CloseWithEvent("bye", "now")

	msg, ok := receive(t, client)
	require.True(t, ok)
	assert.Contains(t, msg, "event: bye")

	_, ok = receive(t, client)
	assert.False(t, ok)

	assert.False(t, hub.Register(NewClient("late")))
	hub.Unregister(client)
}

func TestManagerForwardsGameChanges(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	game := &model.Game{ID: "game-1", Name: "Darts", OwnerID: "alice", ParticipantIDs: []model.IdentityID{"alice"}}

	// Nobody watching: nothing to do
	manager.GameChanged(context.Background(), games.Event{Kind: games.EventRenamed, Game: game})
	assert.Nil(t, manager.GetHub("game-1"))

	hub := manager.GetOrCreateHub("game-1")
	client := NewClient("alice")
	require.True(t, hub.Register(client))

	manager.GameChanged(context.Background(), games.Event{Kind: games.EventRenamed, Game: game})

	msg, ok := receive(t, client)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(msg, "event: game-updated\ndata: "))

	payload := strings.TrimSuffix(strings.TrimPrefix(msg, "event: game-updated\ndata: "), "\n\n")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "Darts", decoded["name"])

	manager.GameChanged(context.Background(), games.Event{Kind: games.EventDeleted, Game: game})

	msg, ok = receive(t, client)
	require.True(t, ok)
	assert.Contains(t, msg, "event: game-deleted")
	_, ok = receive(t, client)
	assert.False(t, ok)
	assert.Nil(t, manager.GetHub("game-1"))
}

func TestManagerCleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	manager.GetOrCreateHub("empty")
	busy := manager.GetOrCreateHub("busy")
	require.True(t, busy.Register(NewClient("alice")))
	require.Eventually(t, func() bool { return busy.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	manager.CleanupEmptyHubs()

	assert.Nil(t, manager.GetHub("empty"))
	assert.NotNil(t, manager.GetHub("busy"))
	manager.RemoveHub("busy")
}

func TestRegisterCountsImmediately(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.closeAll()

	hub, ok := manager.Subscribe("game-1", NewClient("alice"))
	require.True(t, ok)
	assert.Equal(t, 1, hub.ClientCount())

	manager.CleanupEmptyHubs()
	assert.Same(t, hub, manager.GetHub("game-1"))
	assert.False(t, hub.IsClosed())
}

func TestSubscribeSurvivesConcurrentCleanup(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.closeAll()

	stop := make(chan struct{})
	var cleaner sync.WaitGroup
	cleaner.Add(1)
	go func() {
		defer cleaner.Done()
		for {
			select {
			case <-stop:
				return
			default:
				manager.CleanupEmptyHubs()
			}
		}
	}()

	var watchers sync.WaitGroup
	for i := range 50 {
		watchers.Add(1)
		go func() {
			defer watchers.Done()
			gameID := model.GameID(fmt.Sprintf("game-%d", i%5))
			hub, ok := manager.Subscribe(gameID, NewClient("watcher"))
			assert.True(t, ok)
			assert.False(t, hub.IsClosed())
		}()
	}
	watchers.Wait()
	close(stop)
	cleaner.Wait()

	for i := range 5 {
		hub := manager.GetHub(model.GameID(fmt.Sprintf("game-%d", i)))
		require.NotNil(t, hub)
		assert.Equal(t, 10, hub.ClientCount())
	}
}

func TestSubscribeReplacesClosedHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.closeAll()

	stale := manager.GetOrCreateHub("game-1")
	stale.Close()

	hub, ok := manager.Subscribe("game-1", NewClient("alice"))
	require.True(t, ok)
	assert.NotSame(t, stale, hub)
	assert.Same(t, hub, manager.GetHub("game-1"))
}

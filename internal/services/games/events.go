package games

import (
	"context"

	"github.com/mcoot/scorekeeper/internal/model"
)

// EventKind describes what changed in a game
type EventKind string

const (
	EventCreated         EventKind = "created"
	EventJoined          EventKind = "joined"
	EventLeft            EventKind = "left"
	EventRenamed         EventKind = "renamed"
	EventMetadataUpdated EventKind = "metadata_updated"
	EventActiveChanged   EventKind = "active_changed"
	EventDeleted         EventKind = "deleted"
	EventRosterAdded     EventKind = "roster_added"
	EventScoreSet        EventKind = "score_set"
	EventRosterRemoved   EventKind = "roster_removed"
)

// Event is published after a game change has been persisted.
// Game is a private copy; for EventDeleted it is the game as it was before deletion.
type Event struct {
	Kind EventKind
	Game *model.Game
}

// Listener receives game events synchronously on the request goroutine,
// so implementations must not block.
type Listener interface {
	GameChanged(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(ctx context.Context, event Event)

// GameChanged calls f(ctx, event)
func (f ListenerFunc) GameChanged(ctx context.Context, event Event) {
	f(ctx, event)
}

// Package access decides who may perform each game operation.
// Every operation maps to exactly one capability; services call Check
// instead of comparing identities themselves.
package access

import (
	"fmt"

	"github.com/mcoot/scorekeeper/internal/model"
)

// Operation names something an identity can do to a game
type Operation string

const (
	ViewGame          Operation = "view_game"
	RenameGame        Operation = "rename_game"
	UpdateMetadata    Operation = "update_metadata"
	SetActive         Operation = "set_active"
	DeleteGame        Operation = "delete_game"
	LeaveGame         Operation = "leave_game"
	AddRosterEntry    Operation = "add_roster_entry"
	SetRosterScore    Operation = "set_roster_score"
	RemoveRosterEntry Operation = "remove_roster_entry"
	WatchGame         Operation = "watch_game"
	RecordScores      Operation = "record_scores"
)

// Capability is the relationship to a game an operation requires
type Capability int

const (
	Participant Capability = iota
	Owner
)

func (c Capability) String() string {
	switch c {
	case Owner:
		return "owner"
	default:
		return "participant"
	}
}

var requirements = map[Operation]Capability{
	ViewGame:          Participant,
	RenameGame:        Owner,
	UpdateMetadata:    Owner,
	SetActive:         Owner,
	DeleteGame:        Owner,
	LeaveGame:         Participant,
	AddRosterEntry:    Participant,
	SetRosterScore:    Participant,
	RemoveRosterEntry: Participant,
	WatchGame:         Participant,
	RecordScores:      Owner,
}

// Required returns the capability an operation needs
func Required(op Operation) Capability {
	c, ok := requirements[op]
	if !ok {
		panic(fmt.Sprintf("access: no capability registered for %q", op))
	}
	return c
}

// Check returns nil if id may perform op on game, otherwise
// model.ErrNotOwner or model.ErrNotParticipant
func Check(op Operation, game *model.Game, id model.IdentityID) error {
	switch Required(op) {
	case Owner:
		if !game.IsOwner(id) {
			return model.ErrNotOwner
		}
	case Participant:
		if !game.IsParticipant(id) {
			return model.ErrNotParticipant
		}
	}
	return nil
}

// Operations lists every registered operation
func Operations() []Operation {
	ops := make([]Operation, 0, len(requirements))
	for op := range requirements {
		ops = append(ops, op)
	}
	return ops
}

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/scorekeeper/internal/model"
)

func TestCheck(t *testing.T) {
	game := &model.Game{OwnerID: "owner", ParticipantIDs: []model.IdentityID{"owner", "guest"}}

	tests := []struct {
		name string
		op   Operation
		id   model.IdentityID
		want error
	}{
		{"owner can rename", RenameGame, "owner", nil},
		{"participant cannot rename", RenameGame, "guest", model.ErrNotOwner},
		{"participant cannot delete", DeleteGame, "guest", model.ErrNotOwner},
		{"participant cannot close", SetActive, "guest", model.ErrNotOwner},
		{"participant can view", ViewGame, "guest", nil},
		{"participant can score", SetRosterScore, "guest", nil},
		{"owner can add roster", AddRosterEntry, "owner", nil},
		{"stranger cannot view", ViewGame, "stranger", model.ErrNotParticipant},
		{"stranger cannot remove roster", RemoveRosterEntry, "stranger", model.ErrNotParticipant},
		{"stranger cannot rename", RenameGame, "stranger", model.ErrNotOwner},
		{"participant cannot record ledger scores", RecordScores, "guest", model.ErrNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.op, game, tt.id)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestEveryOperationHasCapability(t *testing.T) {
	for _, op := range Operations() {
		assert.NotPanics(t, func() { Required(op) }, op)
	}
}

func TestUnknownOperationPanics(t *testing.T) {
	assert.Panics(t, func() { Required("bogus") })
}

package redis

import (
	"fmt"

	"github.com/mcoot/scorekeeper/internal/model"
)

// Key prefix for all scorekeeper data
const keyPrefix = "scorekeeper"

// Record keys

func identityKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

func credentialKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, id)
}

func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

func scoreEntryKey(id model.ScoreEntryID) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, id)
}

// Index keys

// emailIndexKey maps a lower-cased email to an identity ID
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// joinCodeIndexKey maps a join code to a game ID
func joinCodeIndexKey(code model.JoinCode) string {
	return fmt.Sprintf("%s:idx:join_code:%s", keyPrefix, code)
}

// gamesForIdentityIndexKey is the SET of game keys an identity has belonged to
func gamesForIdentityIndexKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:idx:games_for_identity:%s", keyPrefix, id)
}

// playersForOwnerIndexKey is the SET of player keys an identity owns
func playersForOwnerIndexKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:idx:players_for_owner:%s", keyPrefix, id)
}

// scoresForGameIndexKey is the SET of score entry keys recorded in a game
func scoresForGameIndexKey(id model.GameID) string {
	return fmt.Sprintf("%s:idx:scores_for_game:%s", keyPrefix, id)
}

// scoresForPlayerIndexKey is the SET of score entry keys recorded for a player
func scoresForPlayerIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:scores_for_player:%s", keyPrefix, id)
}

package model

import (
	"cmp"
	"slices"
	"time"
)

// ScoreEntryID uniquely identifies a score entry
type ScoreEntryID string

// ScoreEntry is a single score recorded for a player in a game
type ScoreEntry struct {
	ID         ScoreEntryID
	PlayerID   PlayerID
	GameID     GameID
	Value      int
	RecordedAt time.Time
	UpdatedAt  time.Time
}

// SortScoreEntries orders entries most recent first, breaking ties by ID descending
func SortScoreEntries(entries []*ScoreEntry) {
	slices.SortStableFunc(entries, func(a, b *ScoreEntry) int {
		if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// SumScores totals the values of the given entries
func SumScores(entries []*ScoreEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Value
	}
	return total
}

// Package ranking keeps the leaderboard of finished sessions.
package ranking

import (
	"sort"
	"sync"

	"github.com/nathoo/quizshot/types"
)

// Capacity is the number of entries kept.
const Capacity = 10

// Board is a score-ordered leaderboard, safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	entries []types.RankingEntry
}

// NewBoard returns a board seeded with entries, normalized to the board's
// order and capacity.
func NewBoard(entries []types.RankingEntry) *Board {
	b := &Board{}
	b.entries = normalize(append([]types.RankingEntry(nil), entries...))
	return b
}

// Add records a finished session and returns the updated entries.
// Among equal scores, earlier entries stay ahead.
func (b *Board) Add(e types.RankingEntry) []types.RankingEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = normalize(append(b.entries, e))
	return append([]types.RankingEntry(nil), b.entries...)
}

// Entries returns a copy of the leaderboard, best first.
func (b *Board) Entries() []types.RankingEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.RankingEntry(nil), b.entries...)
}

// Reset empties the board.
func (b *Board) Reset() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

func normalize(entries []types.RankingEntry) []types.RankingEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return entries
}

package ranking

import (
	"math/rand"
	"testing"

	"github.com/nathoo/quizshot/types"
)

func TestAdd_SortsDescending(t *testing.T) {
	b := NewBoard(nil)
	b.Add(types.RankingEntry{Name: "a", Score: 100})
	b.Add(types.RankingEntry{Name: "b", Score: 900})
	got := b.Add(types.RankingEntry{Name: "c", Score: 400})

	want := []string{"b", "c", "a"}
	for i, e := range got {
		if e.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Name, want[i])
		}
	}
}

func TestAdd_TiesKeepInsertionOrder(t *testing.T) {
	b := NewBoard(nil)
	b.Add(types.RankingEntry{Name: "first", Score: 250})
	got := b.Add(types.RankingEntry{Name: "second", Score: 250})
	if got[0].Name != "first" || got[1].Name != "second" {
		t.Errorf("got %q, %q", got[0].Name, got[1].Name)
	}
}

func TestAdd_BoundedAndNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	b := NewBoard(nil)
	for i := 0; i < 100; i++ {
		got := b.Add(types.RankingEntry{Name: "p", Score: rng.Intn(5000)})
		if len(got) > Capacity {
			t.Fatalf("after %d adds: %d entries", i+1, len(got))
		}
		for j := 1; j < len(got); j++ {
			if got[j].Score > got[j-1].Score {
				t.Fatalf("after %d adds: entry %d (%d) > entry %d (%d)", i+1, j, got[j].Score, j-1, got[j-1].Score)
			}
		}
	}
	if n := len(b.Entries()); n != Capacity {
		t.Errorf("Entries = %d, want %d", n, Capacity)
	}
}

func TestAdd_LowScoreDroppedWhenFull(t *testing.T) {
	var seed []types.RankingEntry
	for i := 0; i < Capacity; i++ {
		seed = append(seed, types.RankingEntry{Name: "x", Score: 1000})
	}
	b := NewBoard(seed)
	got := b.Add(types.RankingEntry{Name: "low", Score: 5})
	for _, e := range got {
		if e.Name == "low" {
			t.Error("low score kept on a full board")
		}
	}
}

func TestNewBoard_NormalizesSeed(t *testing.T) {
	var seed []types.RankingEntry
	for i := 0; i < 15; i++ {
		seed = append(seed, types.RankingEntry{Score: i})
	}
	got := NewBoard(seed).Entries()
	if len(got) != Capacity || got[0].Score != 14 || got[9].Score != 5 {
		t.Errorf("got %d entries, first %d, last %d", len(got), got[0].Score, got[len(got)-1].Score)
	}
	if seed[0].Score != 0 {
		t.Error("NewBoard reordered the caller's slice")
	}
}

func TestReset(t *testing.T) {
	b := NewBoard([]types.RankingEntry{{Name: "a", Score: 1}})
	b.Reset()
	if len(b.Entries()) != 0 {
		t.Errorf("Entries = %v", b.Entries())
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	b := NewBoard([]types.RankingEntry{{Name: "a", Score: 1}})
	b.Entries()[0].Name = "changed"
	if b.Entries()[0].Name != "a" {
		t.Error("Entries exposed internal slice")
	}
}

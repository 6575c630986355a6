package engine

import (
	"testing"

	"github.com/nathoo/quizshot/engine/effects"
	"github.com/nathoo/quizshot/types"
)

func TestDamage(t *testing.T) {
	tests := []struct {
		part types.Part
		want int
	}{
		{types.PartHead, 40},
		{types.PartBody, 25},
		{types.PartLeftArm, 15},
		{types.PartRightArm, 15},
		{types.PartLeftLeg, 15},
		{types.PartRightLeg, 15},
	}
	for _, tt := range tests {
		if got := Damage(tt.part); got != tt.want {
			t.Errorf("Damage(%q) = %d, want %d", tt.part, got, tt.want)
		}
	}
}

func effectTypes(effs []types.Effect) []string {
	var out []string
	for _, e := range effs {
		out = append(out, e.Type)
	}
	return out
}

func TestOutcomeEffects(t *testing.T) {
	e, _ := newTestEngine(t, manyQuestions(3)...)
	e.Shoot(types.PartHead)

	e.Session.Round.Correct = true
	got := effectTypes(e.outcomeEffects())
	if len(got) != 2 || got[0] != effects.Damage || got[1] != effects.AddScore {
		t.Errorf("plain hit = %v", got)
	}
	if score := e.outcomeEffects()[1].Params["amount"]; score != 400 {
		t.Errorf("score = %v, want 400", score)
	}

	e.Roster.Current().HP = 40
	got = effectTypes(e.outcomeEffects())
	if len(got) != 4 || got[2] != effects.Kill || got[3] != effects.StartDying {
		t.Errorf("exact kill = %v", got)
	}

	e.Session.Round.Correct = false
	got = effectTypes(e.outcomeEffects())
	if len(got) != 1 || got[0] != effects.IncWrong {
		t.Errorf("first wrong = %v", got)
	}

	e.Session.Wrong = 1
	got = effectTypes(e.outcomeEffects())
	if len(got) != 2 || got[1] != effects.EndSession {
		t.Errorf("second wrong = %v", got)
	}
}

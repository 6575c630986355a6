package engine

import (
	"github.com/nathoo/quizshot/engine/effects"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/types"
)

// Damage per part. Parts not listed deal limbDamage.
var damageTable = map[types.Part]int{
	types.PartHead: 40,
	types.PartBody: 25,
}

const limbDamage = 15

// ScorePerDamage converts damage dealt into score.
const ScorePerDamage = 10

// Damage returns the damage a correct answer deals to part.
func Damage(part types.Part) int {
	if d, ok := damageTable[part]; ok {
		return d
	}
	return limbDamage
}

// LevelFor returns the question level drawn for a shot at part: head shots
// ask application questions, body shots comprehension, limbs recall.
func LevelFor(part types.Part) types.Level {
	switch part {
	case types.PartHead:
		return types.LevelApplication
	case types.PartBody:
		return types.LevelComprehension
	default:
		return types.LevelRecall
	}
}

// outcomeEffects decides what a graded round does to the session and the
// current robot.
func (e *Engine) outcomeEffects() []types.Effect {
	s := e.Session
	tgt := e.Roster.Current()

	if !s.Round.Correct {
		effs := []types.Effect{{Type: effects.IncWrong}}
		if s.Wrong+1 >= state.MaxWrong {
			effs = append(effs, types.Effect{Type: effects.EndSession, Params: map[string]any{"won": false}})
		}
		return effs
	}

	dmg := Damage(s.Round.Part)
	effs := []types.Effect{
		{Type: effects.Damage, Params: map[string]any{"part": s.Round.Part, "amount": dmg}},
		{Type: effects.AddScore, Params: map[string]any{"amount": dmg * ScorePerDamage}},
	}
	if tgt.HP-dmg > 0 {
		return effs
	}

	effs = append(effs, types.Effect{Type: effects.Kill})
	if e.Bank.HasUnusedQuestions() {
		return append(effs, types.Effect{Type: effects.StartDying})
	}
	return append(effs, types.Effect{Type: effects.EndSession, Params: map[string]any{"won": true}})
}

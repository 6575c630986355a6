// Package effects applies the outcome of a round to the session and the
// current target. Every effect type is one atomic mutation; deciding which
// effects apply is the engine's job.
package effects

import (
	"fmt"

	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/types"
)

// Effect types.
const (
	Damage     = "damage"
	AddScore   = "add_score"
	IncWrong   = "inc_wrong"
	Kill       = "kill"
	StartDying = "start_dying"
	EndSession = "end_session"
	Say        = "say"
)

// partNames are the feed labels for each target part.
var partNames = map[types.Part]string{
	types.PartHead:     "Head",
	types.PartBody:     "Body",
	types.PartLeftArm:  "Left arm",
	types.PartRightArm: "Right arm",
	types.PartLeftLeg:  "Left leg",
	types.PartRightLeg: "Right leg",
}

// PartName returns a display label for part.
func PartName(p types.Part) string {
	if n, ok := partNames[p]; ok {
		return n
	}
	return string(p)
}

// Apply applies effects in order. It returns the events emitted and the
// feed lines produced.
func Apply(s *types.Session, tgt *target.Target, effs []types.Effect) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effs {
		switch eff.Type {
		case Damage:
			part, _ := eff.Params["part"].(types.Part)
			amount := toInt(eff.Params["amount"])
			hp := tgt.TakeDamage(amount)
			events = append(events, types.Event{
				Type: types.EventTargetDamaged,
				Data: map[string]any{"part": part, "amount": amount, "hp": hp},
			})
			output = append(output, fmt.Sprintf("%s hit! -%d HP", PartName(part), amount))

		case AddScore:
			s.Score += toInt(eff.Params["amount"])

		case IncWrong:
			s.Wrong++
			events = append(events, types.Event{
				Type: types.EventAnswerWrong,
				Data: map[string]any{"wrong": s.Wrong},
			})
			output = append(output, fmt.Sprintf("Wrong answer (%d/%d)", s.Wrong, state.MaxWrong))

		case Kill:
			s.Kills++
			events = append(events, types.Event{
				Type: types.EventTargetKilled,
				Data: map[string]any{"kind": string(tgt.Kind), "kills": s.Kills},
			})
			output = append(output, fmt.Sprintf("Robot destroyed! (%d)", s.Kills))

		case StartDying:
			tgt.StartDying()

		case EndSession:
			won, _ := eff.Params["won"].(bool)
			s.Over = true
			s.Won = won
			events = append(events, types.Event{
				Type: types.EventSessionEnded,
				Data: map[string]any{"won": won, "score": s.Score, "kills": s.Kills},
			})
			if won {
				output = append(output, "Victory! Every question answered.")
			} else {
				output = append(output, "Game over.")
			}

		case Say:
			text, _ := eff.Params["text"].(string)
			output = append(output, text)
		}
	}

	return events, output
}

// toInt converts an any value to int, handling common numeric types.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

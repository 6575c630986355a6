package engine

import (
	"time"

	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/types"
)

// trigger is what moves a round from one phase to the next.
type trigger string

const (
	onShoot   trigger = "shoot"
	onSubmit  trigger = "submit"
	onTimeout trigger = "timeout"
	onResolve trigger = "resolve"
)

type transitionKey struct {
	from types.Phase
	on   trigger
}

// transitions is the round state machine. Pairs not listed are ignored.
var transitions = map[transitionKey]types.Phase{
	{types.PhaseAwaitingTarget, onShoot}:    types.PhaseAwaitingAnswer,
	{types.PhaseAwaitingAnswer, onSubmit}:   types.PhaseShowingFeedback,
	{types.PhaseShowingFeedback, onTimeout}: types.PhasePendingShot,
	{types.PhasePendingShot, onTimeout}:     types.PhaseOutcomeReady,
	{types.PhaseOutcomeReady, onResolve}:    types.PhaseAwaitingTarget,
}

// phaseTimers holds the duration of each timed phase.
var phaseTimers = map[types.Phase]time.Duration{
	types.PhaseShowingFeedback: FeedbackDuration,
	types.PhasePendingShot:     ShotDelay,
}

func timed(p types.Phase) bool {
	_, ok := phaseTimers[p]
	return ok
}

// fire applies trigger on to the current round. It reports whether the
// trigger was valid in the current phase.
func (e *Engine) fire(on trigger) bool {
	r := &e.Session.Round
	next, ok := transitions[transitionKey{r.Phase, on}]
	if !ok {
		return false
	}
	if next == types.PhaseAwaitingTarget {
		state.ClearRound(e.Session)
		return true
	}
	r.Phase = next
	r.Timer = phaseTimers[next]
	return true
}

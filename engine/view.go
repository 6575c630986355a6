package engine

import (
	"time"

	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/types"
)

// TargetView is the render-facing state of the current robot.
type TargetView struct {
	Kind     target.Kind
	HP       int
	MaxHP    int
	State    types.TargetState
	Progress float64 // 0..1 through Dying or Spawning, 1 when active
}

// View is a snapshot for front ends. Question shares its answer slices
// with the engine and must not be modified.
type View struct {
	Active    bool // a session has been started
	Player    string
	Phase     types.Phase
	Question  *types.Question
	Options   []string
	Part      types.Part
	Selection types.Selection
	Correct   bool
	Feedback  bool // feedback panel visible
	Timer     time.Duration
	CanSubmit bool

	Target TargetView

	Score int
	Wrong int
	Kills int
	Over  bool
	Won   bool

	Feed []string
}

// View returns a snapshot of the current session.
func (e *Engine) View() View {
	tgt := e.Roster.Current()
	v := View{
		Target: TargetView{
			Kind:     tgt.Kind,
			HP:       tgt.HP,
			MaxHP:    target.MaxHP,
			State:    tgt.State,
			Progress: tgt.Progress(),
		},
		Feed: e.feed.Lines(),
	}
	s := e.Session
	if s == nil {
		return v
	}

	r := s.Round
	v.Active = true
	v.Player = s.Player
	v.Phase = r.Phase
	v.Part = r.Part
	v.Correct = r.Correct
	v.Feedback = r.Phase == types.PhaseShowingFeedback
	v.Timer = r.Timer
	v.CanSubmit = e.CanSubmit()
	v.Score, v.Wrong, v.Kills = s.Score, s.Wrong, s.Kills
	v.Over, v.Won = s.Over, s.Won

	v.Selection = types.Selection{
		Choice:  r.Selection.Choice,
		Toggled: append([]int(nil), r.Selection.Toggled...),
		Typed:   r.Selection.Typed,
	}
	if r.Question != nil {
		q := *r.Question
		v.Question = &q
		v.Options = append([]string(nil), state.Options(r.Question)...)
	}
	return v
}

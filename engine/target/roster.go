package target

import (
	"time"

	"github.com/nathoo/quizshot/types"
)

// Transition reports a step of the dying/spawning sequence.
type Transition int

const (
	// Spawned means the dying robot was replaced and the next one is fading in.
	Spawned Transition = iota + 1
	// Ready means the new robot finished fading in and can be shot.
	Ready
)

// Roster cycles through the robot kinds, one robot per kill.
type Roster struct {
	targets []*Target
	index   int
}

// NewRoster creates one robot per kind, in order.
func NewRoster() *Roster {
	r := &Roster{}
	for _, k := range Kinds {
		r.targets = append(r.targets, New(k))
	}
	return r
}

// Current returns the robot on screen.
func (r *Roster) Current() *Target {
	return r.targets[r.index%len(r.targets)]
}

// Index returns how many robots have been replaced since the last reset.
func (r *Roster) Index() int {
	return r.index
}

// Advance moves to the next robot and starts its fade-in.
func (r *Roster) Advance() *Target {
	r.index++
	t := r.Current()
	t.StartSpawning()
	return t
}

// ResetAll returns to the first robot and restores every robot.
func (r *Roster) ResetAll() {
	r.index = 0
	for _, t := range r.targets {
		t.Reset()
	}
}

// Busy reports whether a transition is playing.
func (r *Roster) Busy() bool {
	return r.Current().State != types.TargetActive
}

// Update advances the dying/spawning sequence by dt and returns the steps
// that completed, in order. Leftover time from a finished fade-out carries
// into the fade-in.
func (r *Roster) Update(dt time.Duration) []Transition {
	var out []Transition
	for {
		cur := r.Current()
		switch cur.State {
		case types.TargetDying:
			rest, expired := cur.Update(dt)
			if !expired {
				return out
			}
			cur.State = types.TargetActive
			r.Advance()
			out = append(out, Spawned)
			dt = rest
		case types.TargetSpawning:
			_, expired := cur.Update(dt)
			if !expired {
				return out
			}
			cur.State = types.TargetActive
			return append(out, Ready)
		default:
			return out
		}
	}
}

// Package target models the robots the player shoots at: hit points, part
// hitboxes, and the dying/spawning transition played between robots.
package target

import (
	"time"

	"github.com/nathoo/quizshot/types"
)

// MaxHP is the hit points of a fresh robot.
const MaxHP = 100

// Transition timings.
const (
	DyingDuration    = 800 * time.Millisecond
	SpawningDuration = 300 * time.Millisecond
)

// Kind names a robot model. Front ends pick art and colours by kind.
type Kind string

const (
	KindTitan   Kind = "titan"
	KindStealth Kind = "stealth"
	KindPlasma  Kind = "plasma"
	KindWar     Kind = "war"
	KindNano    Kind = "nano"
	KindMech    Kind = "mech"
	KindCyber   Kind = "cyber"
)

// Kinds is the roster order.
var Kinds = []Kind{KindTitan, KindStealth, KindPlasma, KindWar, KindNano, KindMech, KindCyber}

// Hitbox is a part's box, centred at (DX, DY) from the robot's centre.
type Hitbox struct {
	Part   types.Part
	DX, DY float64
	W, H   float64
}

// Hitboxes in hit-test priority order. Head overlaps body; head wins.
var Hitboxes = []Hitbox{
	{types.PartHead, 0, -120, 120, 140},
	{types.PartBody, 0, 0, 100, 120},
	{types.PartLeftArm, -100, 10, 40, 100},
	{types.PartRightArm, 100, 10, 40, 100},
	{types.PartLeftLeg, -30, 120, 35, 110},
	{types.PartRightLeg, 30, 120, 35, 110},
}

// Contains reports whether (x, y), relative to the robot centre, falls in
// the box. Edges count as inside.
func (h Hitbox) Contains(x, y float64) bool {
	return x >= h.DX-h.W/2 && x <= h.DX+h.W/2 &&
		y >= h.DY-h.H/2 && y <= h.DY+h.H/2
}

// Target is one robot.
type Target struct {
	Kind  Kind
	HP    int
	State types.TargetState
	Timer time.Duration // remaining time in Dying or Spawning
}

// New returns an active robot at full health.
func New(kind Kind) *Target {
	return &Target{Kind: kind, HP: MaxHP, State: types.TargetActive}
}

// HitTest returns the part under (x, y), relative to the robot centre, or
// PartNone for a miss.
func (t *Target) HitTest(x, y float64) types.Part {
	for _, h := range Hitboxes {
		if h.Contains(x, y) {
			return h.Part
		}
	}
	return types.PartNone
}

// TakeDamage lowers HP by n, not below zero, and returns the new HP.
func (t *Target) TakeDamage(n int) int {
	t.HP -= n
	if t.HP < 0 {
		t.HP = 0
	}
	return t.HP
}

// Alive reports whether the robot has hit points left.
func (t *Target) Alive() bool {
	return t.HP > 0
}

// Reset restores full health and the active state.
func (t *Target) Reset() {
	t.HP = MaxHP
	t.State = types.TargetActive
	t.Timer = 0
}

// StartDying begins the fade-out.
func (t *Target) StartDying() {
	t.State = types.TargetDying
	t.Timer = DyingDuration
}

// StartSpawning resets health and begins the fade-in.
func (t *Target) StartSpawning() {
	t.HP = MaxHP
	t.State = types.TargetSpawning
	t.Timer = SpawningDuration
}

// Update runs the transition timer. When it runs out, expired is true and
// rest is the part of dt left over. Active robots ignore dt.
func (t *Target) Update(dt time.Duration) (rest time.Duration, expired bool) {
	if t.State == types.TargetActive {
		return dt, false
	}
	t.Timer -= dt
	if t.Timer > 0 {
		return 0, false
	}
	rest = -t.Timer
	t.Timer = 0
	return rest, true
}

// Progress returns how far through its transition the robot is, from 0
// to 1. Active robots report 1.
func (t *Target) Progress() float64 {
	var total time.Duration
	switch t.State {
	case types.TargetDying:
		total = DyingDuration
	case types.TargetSpawning:
		total = SpawningDuration
	default:
		return 1
	}
	return 1 - float64(t.Timer)/float64(total)
}

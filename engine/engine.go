// Package engine runs one play session of the quiz shooter: picking a
// target part, answering the drawn question, the timed feedback and shot
// delay, and applying damage, score and kills until the session ends.
//
// The engine is frame driven. Input methods mutate state immediately;
// Update advances every timer and performs the timed transitions.
package engine

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nathoo/quizshot/clock"
	"github.com/nathoo/quizshot/engine/bank"
	"github.com/nathoo/quizshot/engine/effects"
	"github.com/nathoo/quizshot/engine/events"
	"github.com/nathoo/quizshot/engine/ranking"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

// Phase timings.
const (
	FeedbackDuration = 1500 * time.Millisecond
	ShotDelay        = 280 * time.Millisecond
)

// MaxNameLength is the longest accepted player name, in characters.
const MaxNameLength = 20

// RankingSaver persists the leaderboard after each session.
type RankingSaver interface {
	SaveRankings([]types.RankingEntry) error
}

// Options configures an Engine. All fields are optional.
type Options struct {
	Rankings RankingSaver
	Clock    clock.Clock
	Logger   *slog.Logger
	RNG      *RNG // the bank's RNG, reported when a session ends
}

// Engine holds the question bank, the leaderboard and the current session.
type Engine struct {
	Bank    *bank.Bank
	Board   *ranking.Board
	Roster  *target.Roster
	Events  *events.Dispatcher
	Session *types.Session // nil until Start

	feed     *Feed
	pending  types.Result
	rankings RankingSaver
	clock    clock.Clock
	log      *slog.Logger
	rng      *RNG
}

// New creates an engine over a bank and a leaderboard.
func New(b *bank.Bank, board *ranking.Board, opts Options) *Engine {
	e := &Engine{
		Bank:     b,
		Board:    board,
		Roster:   target.NewRoster(),
		Events:   events.NewDispatcher(),
		feed:     NewFeed(FeedSize),
		rankings: opts.Rankings,
		clock:    opts.Clock,
		log:      opts.Logger,
		rng:      opts.RNG,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Start begins a new session, discarding any session in progress.
func (e *Engine) Start(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.InvalidArgument("player name is empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.InvalidArgumentf("player name is longer than %d characters", MaxNameLength)
	}
	if e.Bank.Len() == 0 {
		return errors.FailedPrecondition("no questions loaded; upload a question file first")
	}

	e.Session = state.NewSession(name)
	e.Roster.ResetAll()
	e.Bank.ResetSession()
	e.feed.Clear()
	e.pending = types.Result{}

	e.log.Info("session started", "player", name, "questions", e.Bank.Len())
	return nil
}

// Playing reports whether a session is running and not over.
func (e *Engine) Playing() bool {
	return e.Session != nil && !e.Session.Over
}

// accepting reports whether input for phase is allowed right now.
func (e *Engine) accepting(phase types.Phase) bool {
	return e.Playing() && e.Session.Round.Phase == phase
}

// Shoot aims at part of the current robot and draws a question for it.
// It is ignored unless the engine is waiting for a target and the robot is
// fully on screen.
func (e *Engine) Shoot(part types.Part) bool {
	if part == types.PartNone || !e.accepting(types.PhaseAwaitingTarget) || e.Roster.Busy() {
		return false
	}

	level := LevelFor(part)
	q, ok := e.Bank.Draw(level)
	if !ok {
		return false
	}

	r := &e.Session.Round
	r.Question = &q
	r.Part = part
	e.fire(onShoot)

	e.emit(types.Event{
		Type: types.EventQuestionDrawn,
		Data: map[string]any{"id": q.ID, "kind": string(q.Kind()), "level": string(level), "part": part},
	})
	e.log.Debug("question drawn", "part", part, "level", level, "kind", q.Kind())
	return true
}

// Choose picks answer i of a multiple-choice question.
func (e *Engine) Choose(i int) bool {
	if !e.accepting(types.PhaseAwaitingAnswer) {
		return false
	}
	return state.Choose(&e.Session.Round, i)
}

// Toggle flips statement i of a true/false question.
func (e *Engine) Toggle(i int) bool {
	if !e.accepting(types.PhaseAwaitingAnswer) {
		return false
	}
	return state.Toggle(&e.Session.Round, i)
}

// TypeRune appends c to a short answer.
func (e *Engine) TypeRune(c rune) bool {
	if !e.accepting(types.PhaseAwaitingAnswer) {
		return false
	}
	return state.TypeRune(&e.Session.Round, c)
}

// Erase deletes the last character of a short answer.
func (e *Engine) Erase() bool {
	if !e.accepting(types.PhaseAwaitingAnswer) {
		return false
	}
	return state.Erase(&e.Session.Round)
}

// CanSubmit reports whether Submit would be accepted.
func (e *Engine) CanSubmit() bool {
	return e.accepting(types.PhaseAwaitingAnswer) && state.CanSubmit(e.Session.Round)
}

// Submit grades the selection and starts the feedback timer. An incomplete
// selection is ignored.
func (e *Engine) Submit() bool {
	if !e.CanSubmit() {
		return false
	}

	r := &e.Session.Round
	r.Correct = state.Grade(*r.Question, r.Selection)
	e.fire(onSubmit)

	e.emit(types.Event{
		Type: types.EventAnswerGraded,
		Data: map[string]any{"correct": r.Correct},
	})
	if r.Correct {
		e.say("Correct!")
	} else if want := state.CorrectText(*r.Question); want != "" {
		e.say("Wrong! Answer: " + want)
	} else {
		e.say("Wrong!")
	}
	return true
}

// Update advances the session by dt. Time left over when a timed phase
// ends carries into the next one, so a long frame can run several
// transitions. Events and feed lines produced since the last Update are
// returned and dispatched.
func (e *Engine) Update(dt time.Duration) types.Result {
	res := e.pending
	e.pending = types.Result{}
	if e.Session == nil {
		return res
	}

	rest := dt
	for !e.Session.Over {
		r := &e.Session.Round
		if r.Phase == types.PhaseOutcomeReady {
			e.resolveOutcome(&res)
			continue
		}
		if !timed(r.Phase) {
			break
		}
		if rest < r.Timer {
			r.Timer -= rest
			rest = 0
			break
		}
		rest -= r.Timer
		r.Timer = 0
		if r.Phase == types.PhasePendingShot && r.Correct {
			e.record(&res, types.Event{Type: types.EventShotFired, Data: map[string]any{"part": r.Part}})
		}
		e.fire(onTimeout)
	}

	for _, tr := range e.Roster.Update(rest) {
		tgt := e.Roster.Current()
		switch tr {
		case target.Spawned:
			e.record(&res, types.Event{Type: types.EventTargetSpawning, Data: map[string]any{"kind": string(tgt.Kind)}})
		case target.Ready:
			e.record(&res, types.Event{Type: types.EventTargetReady, Data: map[string]any{"kind": string(tgt.Kind)}})
		}
	}

	return res
}

// resolveOutcome applies the round's effects once and either ends the
// session or waits for the next target.
func (e *Engine) resolveOutcome(res *types.Result) {
	effs := e.outcomeEffects()
	evs, out := effects.Apply(e.Session, e.Roster.Current(), effs)
	res.Effects = append(res.Effects, effs...)
	for _, ev := range evs {
		e.record(res, ev)
	}
	e.feed.Push(out...)
	res.Output = append(res.Output, out...)

	if e.Session.Over {
		e.endSession()
		return
	}
	e.fire(onResolve)
}

// endSession records the finished session on the leaderboard and saves it.
func (e *Engine) endSession() {
	s := e.Session
	entries := e.Board.Add(types.RankingEntry{
		Name:  s.Player,
		Score: s.Score,
		Won:   s.Won,
		Kills: s.Kills,
		At:    e.clock.Now(),
	})
	attrs := []any{"player", s.Player, "score", s.Score, "won", s.Won, "kills", s.Kills}
	if e.rng != nil {
		attrs = append(attrs, "seed", e.rng.Seed(), "rng_position", e.rng.Position())
	}
	e.log.Info("session ended", attrs...)

	if e.rankings == nil {
		return
	}
	if err := e.rankings.SaveRankings(entries); err != nil {
		e.log.Error("saving rankings", "error", err)
	}
}

// ResetRankings clears the leaderboard and saves the empty board.
func (e *Engine) ResetRankings() error {
	e.Board.Reset()
	e.log.Info("rankings reset")
	if e.rankings == nil {
		return nil
	}
	return e.rankings.SaveRankings(nil)
}

// Feed returns the recent activity lines, oldest first.
func (e *Engine) Feed() []string {
	return e.feed.Lines()
}

// emit dispatches an event produced by an input method and queues it for
// the next Update result.
func (e *Engine) emit(ev types.Event) {
	e.pending.Events = append(e.pending.Events, ev)
	e.Events.Dispatch([]types.Event{ev})
}

// record dispatches an event produced during Update and adds it to res.
func (e *Engine) record(res *types.Result, ev types.Event) {
	res.Events = append(res.Events, ev)
	e.Events.Dispatch([]types.Event{ev})
}

// say adds a feed line and queues it for the next Update result.
func (e *Engine) say(line string) {
	e.feed.Push(line)
	e.pending.Output = append(e.pending.Output, line)
}

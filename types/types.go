// Package types defines the shared data structures for the quiz shooter.
// Apart from the tags that identify question variants, it holds no logic.
package types

import "time"

// Level is the difficulty of a question. Values match the persisted bank format.
type Level string

const (
	LevelAny           Level = ""          // no restriction when drawing
	LevelRecall        Level = "nhanbiet"  // "nhận biết"
	LevelComprehension Level = "thonghieu" // "thông hiểu"
	LevelApplication   Level = "vandung"   // "vận dụng"
)

// Kind identifies which answer variant a question carries.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindShortAnswer    Kind = "short_answer"
)

// NoAnswer marks an unset answer index.
const NoAnswer = -1

// Body is the kind-specific part of a question: MultipleChoice, TrueFalse or ShortAnswer.
type Body interface {
	Kind() Kind
}

// MultipleChoice has one correct option. Correct is NoAnswer when the
// source never marked one.
type MultipleChoice struct {
	Options []string
	Correct int
}

// TrueFalse has two or more correct statements. Primary is the first
// correct position, kept for consumers that expect a single index.
type TrueFalse struct {
	Statements []string
	Correct    []int
	Primary    int
}

// ShortAnswer is graded by trimmed, case-insensitive comparison.
type ShortAnswer struct {
	Expected string
}

func (MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (TrueFalse) Kind() Kind      { return KindTrueFalse }
func (ShortAnswer) Kind() Kind    { return KindShortAnswer }

// Question is one parsed question. The bank owns the originals; draws hand
// out shuffled copies.
type Question struct {
	ID      string
	Text    string
	Context string // quoted excerpt shown above the prompt, may be empty
	Level   Level
	Body    Body
}

// Kind returns the variant tag of the question body.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return KindMultipleChoice
	}
	return q.Body.Kind()
}

// SourceFile records one upload. Entries are index-aligned with contiguous
// runs of the bank's questions in upload order.
type SourceFile struct {
	Name          string
	Path          string
	QuestionCount int
	UploadedAt    time.Time
}

// RankingEntry is one finished session on the leaderboard.
type RankingEntry struct {
	Name  string
	Score int
	Won   bool
	Kills int
	At    time.Time
}

// Part is the region of the target that was shot.
type Part string

const (
	PartNone     Part = ""
	PartHead     Part = "head"
	PartBody     Part = "body"
	PartLeftArm  Part = "left_arm"
	PartRightArm Part = "right_arm"
	PartLeftLeg  Part = "left_leg"
	PartRightLeg Part = "right_leg"
)

// Phase is the step of the round state machine.
type Phase string

const (
	PhaseAwaitingTarget  Phase = "awaiting_target"
	PhaseAwaitingAnswer  Phase = "awaiting_answer"
	PhaseShowingFeedback Phase = "showing_feedback"
	PhasePendingShot     Phase = "pending_shot"
	PhaseOutcomeReady    Phase = "outcome_ready"
)

// TargetState is the target transition sub-state.
type TargetState string

const (
	TargetActive   TargetState = "active"
	TargetDying    TargetState = "dying"
	TargetSpawning TargetState = "spawning"
)

// Selection is the player's in-progress answer.
type Selection struct {
	Choice  int    // multiple choice, NoAnswer until picked
	Toggled []int  // true/false, in toggle order
	Typed   string // short answer
}

// Round is the per-question state.
type Round struct {
	Phase     Phase
	Question  *Question // drawn, shuffled copy; nil when no question is open
	Part      Part
	Selection Selection
	Correct   bool
	Timer     time.Duration // time left in a timed phase
}

// Session is the state of one play session.
type Session struct {
	Player string
	Score  int
	Wrong  int
	Kills  int
	Round  Round
	Over   bool
	Won    bool
}

// Effect is a single atomic mutation produced when a round resolves.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted as the session advances.
type Event struct {
	Type string
	Data map[string]any
}

// Event types.
const (
	EventQuestionDrawn  = "question_drawn"
	EventAnswerGraded   = "answer_graded"
	EventShotFired      = "shot_fired"
	EventTargetDamaged  = "target_damaged"
	EventAnswerWrong    = "answer_wrong"
	EventTargetKilled   = "target_killed"
	EventTargetSpawning = "target_spawning"
	EventTargetReady    = "target_ready"
	EventSessionEnded   = "session_ended"
)

// Result is the output of one engine call.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
}

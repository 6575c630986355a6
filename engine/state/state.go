// Package state holds the session and round helpers: creating a fresh
// session, editing the player's selection, and grading a submission.
package state

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/quizshot/types"
)

// MaxTyped is the longest short answer accepted, in characters.
const MaxTyped = 50

// MaxWrong is the number of wrong answers that ends a session.
const MaxWrong = 2

// NewSession creates a fresh session for player, waiting for a target.
func NewSession(player string) *types.Session {
	s := &types.Session{Player: player}
	ClearRound(s)
	return s
}

// ClearRound drops the current question and selection and waits for the
// next target.
func ClearRound(s *types.Session) {
	s.Round = types.Round{
		Phase:     types.PhaseAwaitingTarget,
		Selection: types.Selection{Choice: types.NoAnswer},
	}
}

// OptionCount returns the number of answers the player can pick from.
func OptionCount(q *types.Question) int {
	if q == nil {
		return 0
	}
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		return len(body.Options)
	case types.TrueFalse:
		return len(body.Statements)
	}
	return 0
}

// Problems lists why q cannot be played: a question needs text, a
// multiple choice needs options, a true/false question needs statements
// with every true position among them, and a short answer needs an
// expected answer. A multiple choice with no marked answer is playable.
func Problems(q types.Question) []string {
	var problems []string
	if strings.TrimSpace(q.Text) == "" {
		problems = append(problems, "text is required")
	}
	switch b := q.Body.(type) {
	case types.MultipleChoice:
		if len(b.Options) == 0 {
			problems = append(problems, "answers must not be empty")
		} else if b.Correct != types.NoAnswer && (b.Correct < 0 || b.Correct >= len(b.Options)) {
			problems = append(problems, fmt.Sprintf("correct answer %d is out of range", b.Correct+1))
		}

	case types.TrueFalse:
		if len(b.Statements) == 0 {
			problems = append(problems, "statements must not be empty")
		}
		for _, c := range b.Correct {
			if c < 0 || c >= len(b.Statements) {
				problems = append(problems, fmt.Sprintf("true statement %d is out of range", c+1))
			}
		}

	case types.ShortAnswer:
		if strings.TrimSpace(b.Expected) == "" {
			problems = append(problems, "answer is required")
		}

	default:
		problems = append(problems, "missing answer body")
	}
	return problems
}

// Options returns the answer texts shown to the player, nil for short answer.
func Options(q *types.Question) []string {
	if q == nil {
		return nil
	}
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		return body.Options
	case types.TrueFalse:
		return body.Statements
	}
	return nil
}

// Choose replaces the multiple-choice pick. It reports whether the
// selection changed.
func Choose(r *types.Round, i int) bool {
	if r.Question == nil || r.Question.Kind() != types.KindMultipleChoice {
		return false
	}
	if i < 0 || i >= OptionCount(r.Question) {
		return false
	}
	r.Selection.Choice = i
	return true
}

// Toggle adds or removes a true/false statement from the selection.
func Toggle(r *types.Round, i int) bool {
	if r.Question == nil || r.Question.Kind() != types.KindTrueFalse {
		return false
	}
	if i < 0 || i >= OptionCount(r.Question) {
		return false
	}
	for k, v := range r.Selection.Toggled {
		if v == i {
			r.Selection.Toggled = append(r.Selection.Toggled[:k], r.Selection.Toggled[k+1:]...)
			return true
		}
	}
	r.Selection.Toggled = append(r.Selection.Toggled, i)
	return true
}

// IsToggled reports whether statement i is selected.
func IsToggled(sel types.Selection, i int) bool {
	for _, v := range sel.Toggled {
		if v == i {
			return true
		}
	}
	return false
}

// TypeRune appends a printable character to a short answer, up to MaxTyped.
func TypeRune(r *types.Round, c rune) bool {
	if r.Question == nil || r.Question.Kind() != types.KindShortAnswer {
		return false
	}
	if !unicode.IsPrint(c) || utf8.RuneCountInString(r.Selection.Typed) >= MaxTyped {
		return false
	}
	r.Selection.Typed += string(c)
	return true
}

// Erase removes the last typed character.
func Erase(r *types.Round) bool {
	if r.Question == nil || r.Question.Kind() != types.KindShortAnswer || r.Selection.Typed == "" {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(r.Selection.Typed)
	r.Selection.Typed = r.Selection.Typed[:len(r.Selection.Typed)-size]
	return true
}

// CanSubmit reports whether the selection meets the minimum for its kind:
// one pick, at least one toggle, or non-blank text.
func CanSubmit(r types.Round) bool {
	if r.Question == nil {
		return false
	}
	switch r.Question.Kind() {
	case types.KindMultipleChoice:
		return r.Selection.Choice != types.NoAnswer
	case types.KindTrueFalse:
		return len(r.Selection.Toggled) > 0
	case types.KindShortAnswer:
		return strings.TrimSpace(r.Selection.Typed) != ""
	}
	return false
}

// Grade reports whether sel answers q correctly.
func Grade(q types.Question, sel types.Selection) bool {
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		return body.Correct != types.NoAnswer && sel.Choice == body.Correct
	case types.TrueFalse:
		return sameSet(sel.Toggled, body.Correct)
	case types.ShortAnswer:
		return foldAnswer(sel.Typed) == foldAnswer(body.Expected)
	}
	return false
}

// CorrectText returns the correct answer as shown after a wrong submission.
func CorrectText(q types.Question) string {
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		if body.Correct == types.NoAnswer {
			return ""
		}
		return body.Options[body.Correct]
	case types.TrueFalse:
		var parts []string
		for _, i := range body.Correct {
			parts = append(parts, body.Statements[i])
		}
		return strings.Join(parts, "; ")
	case types.ShortAnswer:
		return body.Expected
	}
	return ""
}

func sameSet(a, b []int) bool {
	as := make(map[int]bool, len(a))
	for _, v := range a {
		as[v] = true
	}
	bs := make(map[int]bool, len(b))
	for _, v := range b {
		bs[v] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if !bs[v] {
			return false
		}
	}
	return true
}

func foldAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/types"
)

// ValidationError collects every problem found in a bank.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks compiled questions against the question invariants.
func validate(qs []types.Question) error {
	ve := &ValidationError{}

	for i, q := range qs {
		name := fmt.Sprintf("question %d", i+1)
		if q.Text != "" {
			name = fmt.Sprintf("question %d (%s)", i+1, shorten(q.Text, 30))
		}

		switch q.Level {
		case types.LevelRecall, types.LevelComprehension, types.LevelApplication:
		default:
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: invalid level %q", name, q.Level))
		}

		problems := append(state.Problems(q), scriptProblems(q.Body)...)
		for _, p := range problems {
			ve.Errors = append(ve.Errors, name+": "+p)
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// scriptProblems holds the rules script banks must meet on top of the
// ones every playable question meets.
func scriptProblems(body types.Body) []string {
	var problems []string
	switch b := body.(type) {
	case types.MultipleChoice:
		for i, o := range b.Options {
			if o == "" {
				problems = append(problems, fmt.Sprintf("answer %d is empty", i+1))
			}
		}
		if b.Correct == types.NoAnswer {
			problems = append(problems, "correct is required")
		}

	case types.TrueFalse:
		if len(b.Correct) < 2 {
			problems = append(problems, fmt.Sprintf(
				"needs at least two true statements, has %d", len(b.Correct)))
		}
		for i, s := range b.Statements {
			if s == "" {
				problems = append(problems, fmt.Sprintf("statement %d is empty", i+1))
			}
		}
	}
	return problems
}

// shorten truncates s to n runes for messages.
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

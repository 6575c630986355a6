// Package resolve maps the words a player types to target parts and
// answer positions.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/quizshot/engine/parser"
	"github.com/nathoo/quizshot/types"
)

// AmbiguityError indicates a word matched more than one part.
type AmbiguityError struct {
	Name       string
	Candidates []types.Part
}

func (e *AmbiguityError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = strings.ReplaceAll(string(c), "_", " ")
	}
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(names, ", "))
}

// NotFoundError indicates a word matched nothing.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("there is no %q to aim at", e.Name)
}

// RangeError indicates an answer label outside the shown answers.
type RangeError struct {
	Label string
	Count int
}

func (e *RangeError) Error() string {
	if e.Count == 0 {
		return "there are no answers to pick"
	}
	return fmt.Sprintf("%q is not one of the %d answers", e.Label, e.Count)
}

// partAliases lists folded names for each part, English and Vietnamese.
var partAliases = []struct {
	part    types.Part
	aliases []string
}{
	{types.PartHead, []string{"head", "dau"}},
	{types.PartBody, []string{"body", "torso", "chest", "than", "nguc"}},
	{types.PartLeftArm, []string{"left arm", "tay trai"}},
	{types.PartRightArm, []string{"right arm", "tay phai"}},
	{types.PartLeftLeg, []string{"left leg", "chan trai"}},
	{types.PartRightLeg, []string{"right leg", "chan phai"}},
}

// Part resolves a part name. Exact names and aliases win; otherwise a
// single word matching one word of a part name ("arm") must be unambiguous.
func Part(name string) (types.Part, error) {
	q := normalize(name)
	if q == "" {
		return types.PartNone, &NotFoundError{Name: name}
	}

	for _, pa := range partAliases {
		if q == normalize(string(pa.part)) {
			return pa.part, nil
		}
		for _, a := range pa.aliases {
			if q == a {
				return pa.part, nil
			}
		}
	}

	var matches []types.Part
	for _, pa := range partAliases {
		if matchesWord(pa.aliases, q) {
			matches = append(matches, pa.part)
		}
	}
	switch len(matches) {
	case 0:
		return types.PartNone, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return types.PartNone, &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesWord reports whether q equals one word of any alias.
func matchesWord(aliases []string, q string) bool {
	for _, a := range aliases {
		for _, word := range strings.Fields(a) {
			if word == q {
				return true
			}
		}
	}
	return false
}

// normalize folds case and diacritics and treats underscores as spaces.
func normalize(s string) string {
	s = strings.ReplaceAll(parser.Fold(s), "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// AnswerIndex resolves an answer label to a zero-based index among count
// answers. Letters count from "a" and numbers from "1"; a trailing '.' or
// ')' is allowed.
func AnswerIndex(label string, count int) (int, error) {
	l := strings.TrimRight(strings.TrimSpace(label), ".)")
	l = strings.TrimLeft(l, "(")

	idx := -1
	if n, err := strconv.Atoi(l); err == nil {
		idx = n - 1
	} else if r := []rune(strings.ToLower(l)); len(r) == 1 && r[0] >= 'a' && r[0] <= 'z' {
		idx = int(r[0] - 'a')
	}

	if idx < 0 || idx >= count {
		return 0, &RangeError{Label: label, Count: count}
	}
	return idx, nil
}

// Label returns the letter shown for answer i ("A", "B", ...).
func Label(i int) string {
	if i < 0 || i >= 26 {
		return strconv.Itoa(i + 1)
	}
	return string(rune('A' + i))
}

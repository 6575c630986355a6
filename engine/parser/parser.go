// Package parser converts loosely formatted question-bank text into typed
// questions. It never fails: lines it cannot classify are skipped and
// blocks that end up invalid are dropped.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/quizshot/types"
)

// Word forms that open a question ("Câu 1: ...").
var questionWords = []string{"Câu", "Cau"}

// Suffix markers on answer lines. Checked after the label is stripped.
var (
	correctSuffixes   = []string{" Đ", " đ", " D", " d"}
	incorrectSuffixes = []string{" S", " s"}
)

// inlineMarker matches "(Đúng)" and its unaccented spellings in any case.
var inlineMarker = regexp.MustCompile(`(?i)\((đúng|dung)\)`)

// block accumulates one question while its lines are read.
type block struct {
	text      string
	context   string
	kind      types.Kind
	answers   []string
	correct   []int
	primary   int
	expected  string
	level     types.Level
	inContext bool
}

func newBlock(text string) *block {
	return &block{
		text:    text,
		kind:    types.KindMultipleChoice,
		primary: types.NoAnswer,
		level:   types.LevelComprehension,
	}
}

// Parse converts raw text into questions, in source order.
func Parse(text string) []types.Question {
	text = norm.NFC.String(text)

	var questions []types.Question
	var cur *block
	var contextBuf strings.Builder
	inContext := false

	flush := func() {
		if cur == nil {
			return
		}
		if q, ok := cur.finish(); ok {
			questions = append(questions, q)
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case isQuestionStart(line):
			flush()
			cur = newBlock(promptText(line))
			inContext = false
			contextBuf.Reset()

		case isQuote(firstRune(line)) || inContext:
			inContext = true
			contextBuf.WriteString(line)
			contextBuf.WriteString(" ")
			if cur != nil {
				cur.context = strings.TrimSpace(contextBuf.String())
			}
			if isQuote(lastRune(line)) {
				inContext = false
			}

		case strings.HasPrefix(line, "*") && cur != nil:
			cur.kind = types.KindShortAnswer
			cur.expected = strings.TrimSpace(line[1:])
			cur.answers = nil

		case isAnswerLine(line):
			if cur != nil && cur.kind != types.KindShortAnswer {
				cur.addAnswer(line)
			}

		case isLevelTag(line):
			if cur != nil {
				if lvl, ok := levelOf(line); ok {
					cur.level = lvl
				}
			}

		case isAnswerKey(line):
			if cur != nil {
				if idx, ok := answerKeyIndex(line); ok {
					cur.primary = idx
				}
			}
		}
	}
	flush()

	return questions
}

// finish applies the acceptance rules to a completed block.
func (b *block) finish() (types.Question, bool) {
	if b.text == "" {
		return types.Question{}, false
	}

	kind := b.kind
	if len(b.correct) > 1 {
		kind = types.KindTrueFalse
	}

	q := types.Question{
		Text:    b.text,
		Context: b.context,
		Level:   b.level,
	}

	switch kind {
	case types.KindTrueFalse:
		primary := b.primary
		if primary == types.NoAnswer && len(b.correct) > 0 {
			primary = b.correct[0]
		}
		q.Body = types.TrueFalse{
			Statements: append([]string(nil), b.answers...),
			Correct:    append([]int(nil), b.correct...),
			Primary:    primary,
		}
	case types.KindShortAnswer:
		if b.expected == "" {
			return types.Question{}, false
		}
		q.Body = types.ShortAnswer{Expected: b.expected}
	default:
		if len(b.answers) == 0 {
			return types.Question{}, false
		}
		correct := b.primary
		if correct >= len(b.answers) {
			correct = types.NoAnswer
		}
		q.Body = types.MultipleChoice{
			Options: append([]string(nil), b.answers...),
			Correct: correct,
		}
	}
	return q, true
}

// addAnswer strips the label and correctness markers from an answer line
// and records it.
func (b *block) addAnswer(line string) {
	r := []rune(line)
	var text string
	if len(r) > 2 {
		text = strings.TrimSpace(string(r[2:]))
	} else {
		text = strings.TrimSpace(string(r[1:]))
	}

	markedBySuffix := false
	if hasAnySuffix(text, correctSuffixes) {
		markedBySuffix = true
		text = strings.TrimSpace(dropLastRunes(text, 2))
	} else if hasAnySuffix(text, incorrectSuffixes) {
		text = strings.TrimSpace(dropLastRunes(text, 2))
	}

	markedInline := strings.Contains(text, "*") || inlineMarker.MatchString(text)
	text = strings.ReplaceAll(text, "*", "")
	text = strings.TrimSpace(inlineMarker.ReplaceAllString(text, ""))

	b.answers = append(b.answers, text)
	if markedBySuffix || markedInline {
		idx := len(b.answers) - 1
		b.correct = append(b.correct, idx)
		if b.primary == types.NoAnswer {
			b.primary = idx
		}
	}
}

// isQuestionStart reports whether the line opens a new question: the word
// "Câu"/"Cau", or a leading digit with a '.' in the first five characters.
func isQuestionStart(line string) bool {
	for _, w := range questionWords {
		if strings.HasPrefix(line, w) {
			return true
		}
	}
	r := []rune(line)
	if !unicode.IsDigit(r[0]) {
		return false
	}
	head := r
	if len(head) > 5 {
		head = head[:5]
	}
	return strings.ContainsRune(string(head), '.')
}

// promptText returns the text after the first separator, or the line itself.
func promptText(line string) string {
	sep := "."
	for _, w := range questionWords {
		if strings.HasPrefix(line, w) {
			sep = ":"
			break
		}
	}
	if _, after, ok := strings.Cut(line, sep); ok {
		return strings.TrimSpace(after)
	}
	return line
}

// isAnswerLine reports whether the line starts with a/b/c/d followed by
// '.', ')' or a space.
func isAnswerLine(line string) bool {
	r := []rune(line)
	if len(r) < 2 {
		return false
	}
	switch unicode.ToLower(r[0]) {
	case 'a', 'b', 'c', 'd':
	default:
		return false
	}
	return r[1] == '.' || r[1] == ')' || r[1] == ' '
}

func isQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”'
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func dropLastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return ""
	}
	return string(r[:len(r)-n])
}

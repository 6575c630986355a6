package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/quizshot/types"
)

// Tag keys, already folded (lowercase, no diacritics).
var (
	levelKeys     = []string{"muc:", "do kho:"}
	answerKeyKeys = []string{"dap an:"}
)

// levelNames maps folded level names to levels, checked in order.
var levelNames = []struct {
	name  string
	level types.Level
}{
	{"nhan biet", types.LevelRecall},
	{"thong hieu", types.LevelComprehension},
	{"van dung", types.LevelApplication},
}

// foldRune lowercases r and strips its diacritics. 'đ' has no decomposition
// and is mapped by hand.
func foldRune(r rune) rune {
	switch r {
	case 'đ', 'Đ':
		return 'd'
	}
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, string(r))
	if err != nil || s == "" {
		return unicode.ToLower(r)
	}
	base, _ := utf8.DecodeRuneInString(s)
	return unicode.ToLower(base)
}

// fold returns s lowercased without diacritics. It maps rune for rune, so
// indexes into the result line up with []rune(s).
func fold(s string) []rune {
	in := []rune(s)
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = foldRune(r)
	}
	return out
}

// Fold returns s lowercased with diacritics removed, so "Đầu" and "dau"
// compare equal.
func Fold(s string) string {
	return string(fold(norm.NFC.String(s)))
}

func containsAny(folded string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// isLevelTag reports whether the line is a "Mức:"/"Độ khó:" tag.
func isLevelTag(line string) bool {
	return containsAny(string(fold(line)), levelKeys)
}

// levelOf returns the level named on a tag line.
func levelOf(line string) (types.Level, bool) {
	folded := string(fold(line))
	for _, ln := range levelNames {
		if strings.Contains(folded, ln.name) {
			return ln.level, true
		}
	}
	return types.LevelAny, false
}

// isAnswerKey reports whether the line is a "Đáp án:" key.
func isAnswerKey(line string) bool {
	return containsAny(string(fold(line)), answerKeyKeys)
}

// answerKeyIndex returns the zero-based index of the first A-D letter after
// the "Đáp án:" key.
func answerKeyIndex(line string) (int, bool) {
	orig := []rune(line)
	folded := fold(line)

	start := -1
	for _, k := range answerKeyKeys {
		if i := runeIndex(folded, []rune(k)); i >= 0 {
			start = i + utf8.RuneCountInString(k)
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	for _, r := range orig[start:] {
		u := unicode.ToUpper(r)
		if u >= 'A' && u <= 'D' {
			return int(u - 'A'), true
		}
	}
	return 0, false
}

// runeIndex returns the index of needle in hay, or -1.
func runeIndex(hay, needle []rune) int {
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

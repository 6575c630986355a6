package loader

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/quizshot/engine/parser"
	"github.com/nathoo/quizshot/engine/resolve"
	"github.com/nathoo/quizshot/types"
)

// rawQuestion holds a constructor table before compilation.
type rawQuestion struct {
	kind  types.Kind
	table *lua.LTable
	order int
}

func (r rawQuestion) label() string {
	return fmt.Sprintf("%s #%d", r.kind, r.order)
}

// levelNames maps folded level spellings to levels.
var levelNames = map[string]types.Level{
	"":              types.LevelComprehension,
	"nhanbiet":      types.LevelRecall,
	"nhan biet":     types.LevelRecall,
	"recall":        types.LevelRecall,
	"thonghieu":     types.LevelComprehension,
	"thong hieu":    types.LevelComprehension,
	"comprehension": types.LevelComprehension,
	"vandung":       types.LevelApplication,
	"van dung":      types.LevelApplication,
	"application":   types.LevelApplication,
}

// compile converts the collected tables into questions. Shape problems
// (wrong field types, unknown levels, out-of-range keys) are gathered into
// a single *ValidationError.
func compile(coll *collector) ([]types.Question, error) {
	ve := &ValidationError{}
	qs := make([]types.Question, 0, len(coll.questions))

	for _, raw := range coll.questions {
		q, problems := compileQuestion(raw)
		for _, p := range problems {
			ve.Errors = append(ve.Errors, raw.label()+": "+p)
		}
		if len(problems) == 0 {
			qs = append(qs, q)
		}
	}

	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return qs, nil
}

func compileQuestion(raw rawQuestion) (types.Question, []string) {
	tbl := raw.table
	var problems []string
	fail := func(err error) {
		problems = append(problems, err.Error())
	}

	level, err := parseLevel(getString(tbl, "level"))
	if err != nil {
		fail(err)
	}
	q := types.Question{
		Text:    strings.TrimSpace(getString(tbl, "text")),
		Context: strings.TrimSpace(getString(tbl, "context")),
		Level:   level,
	}

	switch raw.kind {
	case types.KindMultipleChoice:
		opts, err := getStrings(tbl, "answers")
		if err != nil {
			fail(err)
		}
		correct, err := correctIndex(tbl.RawGetString("correct"), len(opts))
		if err != nil {
			fail(err)
		}
		q.Body = types.MultipleChoice{Options: opts, Correct: correct}

	case types.KindTrueFalse:
		tf, err := compileStatements(getTable(tbl, "statements"))
		if err != nil {
			fail(err)
		}
		q.Body = tf

	case types.KindShortAnswer:
		q.Body = types.ShortAnswer{Expected: strings.TrimSpace(getString(tbl, "answer"))}
	}

	return q, problems
}

// parseLevel accepts the stored level names, their Vietnamese spellings
// with or without diacritics, and the English names. Empty means
// Comprehension.
func parseLevel(s string) (types.Level, error) {
	folded := strings.Join(strings.Fields(parser.Fold(s)), " ")
	if lvl, ok := levelNames[folded]; ok {
		return lvl, nil
	}
	return types.LevelComprehension, fmt.Errorf("unknown level %q", s)
}

// correctIndex converts the "correct" field of a Question table: a 1-based
// number or an answer letter. A missing field yields NoAnswer.
func correctIndex(v lua.LValue, count int) (int, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return types.NoAnswer, nil
	case lua.LNumber:
		n := int(val)
		if float64(n) != float64(val) {
			return types.NoAnswer, fmt.Errorf("correct = %v is not a whole number", float64(val))
		}
		if n < 1 || n > count {
			return types.NoAnswer, fmt.Errorf("correct = %d is outside 1..%d", n, count)
		}
		return n - 1, nil
	case lua.LString:
		idx, err := resolve.AnswerIndex(string(val), count)
		if err != nil {
			return types.NoAnswer, fmt.Errorf("correct: %w", err)
		}
		return idx, nil
	default:
		return types.NoAnswer, fmt.Errorf("correct must be a number or a letter, got %s", v.Type())
	}
}

// compileStatements reads a statements list. Each entry is either
// {"text", true} or {text = "...", correct = true}.
func compileStatements(tbl *lua.LTable) (types.TrueFalse, error) {
	tf := types.TrueFalse{Primary: types.NoAnswer}
	if tbl == nil {
		return tf, nil
	}

	for i := 1; i <= tbl.MaxN(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return tf, fmt.Errorf("statement %d must be a table", i)
		}

		text := getString(entry, "text")
		if s, ok := entry.RawGetInt(1).(lua.LString); ok {
			text = string(s)
		}
		correct := getBool(entry, "correct", false)
		if b, ok := entry.RawGetInt(2).(lua.LBool); ok {
			correct = bool(b)
		}

		tf.Statements = append(tf.Statements, strings.TrimSpace(text))
		if correct {
			tf.Correct = append(tf.Correct, i-1)
		}
	}

	if len(tf.Correct) > 0 {
		tf.Primary = tf.Correct[0]
	}
	return tf, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as trimmed strings.
func getStrings(tbl *lua.LTable, key string) ([]string, error) {
	list := getTable(tbl, key)
	if list == nil {
		return nil, nil
	}
	out := make([]string, 0, list.MaxN())
	for i := 1; i <= list.MaxN(); i++ {
		s, ok := list.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, strings.TrimSpace(string(s)))
	}
	return out, nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/engine/effects"
	"github.com/nathoo/quizshot/engine/resolve"
	"github.com/nathoo/quizshot/engine/save"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/types"
)

// printQuestion shows the drawn question and how to answer it.
func (c *CLI) printQuestion(v engine.View) {
	q := v.Question
	if q == nil {
		return
	}
	c.printLine("")
	c.printLine(fmt.Sprintf("[%s | %s]", effects.PartName(v.Part), levelName(q.Level)))
	if q.Context != "" {
		c.printLine(q.Context)
	}
	c.printLine(q.Text)

	switch q.Kind() {
	case types.KindMultipleChoice:
		for i, o := range v.Options {
			mark := " "
			if v.Selection.Choice == i {
				mark = ">"
			}
			c.printLine(fmt.Sprintf("%s %s. %s", mark, resolve.Label(i), o))
		}
		c.printLine("Pick an answer, then submit.")
	case types.KindTrueFalse:
		c.printStatements(v)
		c.printLine("Toggle every true statement, then submit.")
	case types.KindShortAnswer:
		c.printLine("Type your answer, then submit.")
	}
}

// printStatements lists true/false statements with their toggle marks.
func (c *CLI) printStatements(v engine.View) {
	for i, s := range v.Options {
		mark := "[ ]"
		if state.IsToggled(v.Selection, i) {
			mark = "[x]"
		}
		c.printLine(fmt.Sprintf("%s %s. %s", mark, resolve.Label(i), s))
	}
}

// printResultScreen summarizes a finished session.
func (c *CLI) printResultScreen(v engine.View) {
	c.printLine("")
	if v.Won {
		c.printLine("=== VICTORY ===")
	} else {
		c.printLine("=== GAME OVER ===")
	}
	c.printLine(fmt.Sprintf("Player: %s", v.Player))
	c.printLine(fmt.Sprintf("Score: %d", v.Score))
	c.printLine(fmt.Sprintf("Wrong answers: %d/%d", v.Wrong, state.MaxWrong))
	c.printLine(fmt.Sprintf("Robots destroyed: %d", v.Kills))
	c.printLine(fmt.Sprintf("Robot HP left: %d/%d", v.Target.HP, v.Target.MaxHP))
	c.printLine("Type /start <name> to play again or /rankings to see the leaderboard.")
}

// RankingLines formats the leaderboard, best first.
func RankingLines(entries []types.RankingEntry) []string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("%-3s %-20s %6s %5s %-7s %s", "#", "Name", "Score", "Kills", "Result", "Date"))
	for i, e := range entries {
		result := "lost"
		if e.Won {
			result = "won"
		}
		lines = append(lines, fmt.Sprintf("%-3d %-20s %6d %5d %-7s %s",
			i+1, e.Name, e.Score, e.Kills, result, e.At.Format(save.DateLayout)))
	}
	return lines
}

// FileLines formats the uploaded-file manifest with 1-based numbers.
func FileLines(sources []types.SourceFile) []string {
	lines := make([]string, 0, len(sources))
	for i, s := range sources {
		lines = append(lines, fmt.Sprintf("%d. %s (%d questions, %s)",
			i+1, s.Name, s.QuestionCount, s.UploadedAt.Format(save.DateLayout)))
	}
	return lines
}

func levelName(l types.Level) string {
	switch l {
	case types.LevelRecall:
		return "Recall"
	case types.LevelComprehension:
		return "Comprehension"
	case types.LevelApplication:
		return "Application"
	}
	return string(l)
}

func partName(v any) string {
	switch p := v.(type) {
	case types.Part:
		return strings.ToLower(effects.PartName(p))
	case string:
		return strings.ToLower(effects.PartName(types.Part(p)))
	}
	return "?"
}

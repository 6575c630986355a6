package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/engine/effects"
	"github.com/nathoo/quizshot/engine/resolve"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/types"
)

// partOrder lists the parts in aim-key order.
var partOrder = []types.Part{
	types.PartHead,
	types.PartBody,
	types.PartLeftArm,
	types.PartRightArm,
	types.PartLeftLeg,
	types.PartRightLeg,
}

// One terminal cell covers cellW×cellH units of robot space. The robot is
// drawn over the rows and columns below, centred on (0, 0).
const (
	cellW       = 10.0
	cellH       = 20.0
	robotRowMin = -9
	robotRowMax = 8
	robotColMin = -12
	robotColMax = 12
	robotRows   = robotRowMax - robotRowMin + 1
	hpBarWidth  = 20
	feedLines   = 3
)

type regionKind int

const (
	regionOption regionKind = iota + 1
	regionSubmit
)

// region is a clickable screen row below the robot.
type region struct {
	row   int
	kind  regionKind
	index int
}

// gameLayout is one rendered frame of the game screen together with the
// places that react to clicks.
type gameLayout struct {
	lines    []string
	robotTop int // screen row of robot row robotRowMin
	robotCol int // screen column of the robot centre
	regions  []region
}

func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.screen = screenMenu
		m.setStatus("Game abandoned.", false)
		return m, nil
	}

	v := m.engine.View()
	if !m.engine.Playing() {
		return m, nil
	}

	switch v.Phase {
	case types.PhaseAwaitingTarget:
		if i, ok := aimKeys[msg.String()]; ok {
			m.shoot(partOrder[i])
		}

	case types.PhaseAwaitingAnswer:
		m.answerKey(msg, v)
	}
	return m, nil
}

func (m *Model) shoot(part types.Part) {
	if m.engine.Shoot(part) {
		m.setStatus("", false)
		return
	}
	if m.engine.Roster.Busy() {
		m.setStatus("The next robot is not in range yet.", false)
	}
}

// answerKey edits the selection for the open question or submits it.
func (m *Model) answerKey(msg tea.KeyMsg, v engine.View) {
	if key.Matches(msg, m.keys.Select) {
		m.engine.Submit()
		return
	}
	if v.Question == nil {
		return
	}

	switch v.Question.Kind() {
	case types.KindShortAnswer:
		switch {
		case key.Matches(msg, m.keys.Erase):
			m.engine.Erase()
		case msg.Type == tea.KeySpace:
			m.engine.TypeRune(' ')
		case msg.Type == tea.KeyRunes:
			for _, r := range msg.Runes {
				m.engine.TypeRune(r)
			}
		}

	case types.KindMultipleChoice:
		n := len(v.Options)
		if n == 0 {
			return
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.engine.Choose((max(v.Selection.Choice, 0) + n - 1) % n)
		case key.Matches(msg, m.keys.Down):
			m.engine.Choose((v.Selection.Choice + 1) % n)
		case msg.Type == tea.KeyRunes:
			if i, err := resolve.AnswerIndex(string(msg.Runes), n); err == nil {
				m.engine.Choose(i)
			}
		}

	case types.KindTrueFalse:
		if msg.Type == tea.KeyRunes {
			if i, err := resolve.AnswerIndex(string(msg.Runes), len(v.Options)); err == nil {
				m.engine.Toggle(i)
			}
		}
	}
}

// clickGame maps a left click to a robot part, an answer or the submit
// button.
func (m Model) clickGame(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	v := m.engine.View()
	if !m.engine.Playing() {
		return m, nil
	}
	l := m.layout(v)

	if row := msg.Y - l.robotTop; row >= 0 && row < robotRows {
		if v.Phase != types.PhaseAwaitingTarget {
			return m, nil
		}
		x := float64(msg.X-l.robotCol) * cellW
		y := float64(row+robotRowMin) * cellH
		if part := m.engine.Roster.Current().HitTest(x, y); part != types.PartNone {
			m.shoot(part)
		}
		return m, nil
	}

	for _, r := range l.regions {
		if r.row != msg.Y {
			continue
		}
		switch r.kind {
		case regionOption:
			if v.Question.Kind() == types.KindTrueFalse {
				m.engine.Toggle(r.index)
			} else {
				m.engine.Choose(r.index)
			}
		case regionSubmit:
			m.engine.Submit()
		}
	}
	return m, nil
}

func (m Model) viewGame() string {
	return strings.Join(m.layout(m.engine.View()).lines, "\n")
}

// layout renders the game screen line by line, recording where the robot
// and the clickable rows land.
func (m Model) layout(v engine.View) gameLayout {
	l := gameLayout{robotCol: max(m.width/2, robotColMax+1)}
	add := func(s ...string) {
		for _, block := range s {
			l.lines = append(l.lines, strings.Split(block, "\n")...)
		}
	}
	width := max(m.width, 20)
	wrap := lipgloss.NewStyle().Width(width)

	add(m.renderStatusBar(v), "")

	l.robotTop = len(l.lines)
	add(m.renderRobot(v, l.robotCol)...)
	add(center(renderHPBar(v.Target), l.robotCol), "")

	switch v.Phase {
	case types.PhaseAwaitingTarget:
		switch {
		case v.Target.State == types.TargetDying:
			add(styleCorrect.Render("Robot destroyed!"))
		case v.Target.State == types.TargetSpawning:
			add(styleSystem.Render("A new robot approaches..."))
		default:
			add(styleSystem.Render("Aim: click a part, or press 1 head, 2 body, 3/4 arms, 5/6 legs."))
		}

	case types.PhaseAwaitingAnswer, types.PhaseShowingFeedback:
		q := v.Question
		if q == nil {
			add(renderFeedback(v))
			break
		}
		add(styleSystem.Render(fmt.Sprintf("[%s | %s]", effects.PartName(v.Part), levelName(q.Level))))
		if q.Context != "" {
			add(styleContext.Inherit(wrap).Render(q.Context))
		}
		add(styleQuestion.Inherit(wrap).Render(q.Text))

		for i, o := range v.Options {
			l.regions = append(l.regions, region{row: len(l.lines), kind: regionOption, index: i})
			add(renderOption(v, i, o, width))
		}
		if q.Kind() == types.KindShortAnswer {
			cursor := ""
			if v.Phase == types.PhaseAwaitingAnswer {
				cursor = "█"
			}
			add(styleInputPrompt.Render("Answer: ") + v.Selection.Typed + cursor)
		}
		add("")

		if v.Phase == types.PhaseAwaitingAnswer {
			l.regions = append(l.regions, region{row: len(l.lines), kind: regionSubmit})
			if v.CanSubmit {
				add(styleButton.Render("FIRE"))
			} else {
				add(styleButtonDisabled.Render("FIRE"))
			}
		} else {
			add(renderFeedback(v))
		}

	default:
		add(renderFeedback(v))
	}

	add("")
	feed := v.Feed
	if len(feed) > feedLines {
		feed = feed[len(feed)-feedLines:]
	}
	for _, line := range feed {
		add(styleFeed.Render(line))
	}
	if s := m.renderStatus(); s != "" {
		add(s)
	}
	add(styleHelp.Render(gameHelp(v)))
	return l
}

// renderRobot draws the current robot from its hitboxes, so what is drawn
// is exactly what can be hit.
func (m Model) renderRobot(v engine.View, centerCol int) []string {
	tgt := m.engine.Roster.Current()
	faded := v.Target.State != types.TargetActive
	base := robotStyle(v.Target.Kind, faded)

	hidden := 0
	shown := robotRows
	switch v.Target.State {
	case types.TargetDying:
		hidden = int(v.Target.Progress * robotRows)
	case types.TargetSpawning:
		shown = int(v.Target.Progress*robotRows) + 1
	}

	pad := strings.Repeat(" ", max(centerCol+robotColMin, 0))
	rows := make([]string, 0, robotRows)
	for i := 0; i < robotRows; i++ {
		r := robotRowMin + i
		visible := i >= hidden && robotRows-i <= shown
		if !visible {
			rows = append(rows, "")
			continue
		}

		var b strings.Builder
		b.WriteString(pad)
		for c := robotColMin; c <= robotColMax; c++ {
			part := tgt.HitTest(float64(c)*cellW, float64(r)*cellH)
			if part == types.PartNone {
				b.WriteString(" ")
				continue
			}
			style := base
			if m.pulse.left > 0 && part == m.pulse.part {
				style = styleShot
			}
			b.WriteString(style.Render(partGlyphs[part]))
		}
		rows = append(rows, b.String())
	}
	return rows
}

func renderHPBar(t engine.TargetView) string {
	filled := 0
	if t.MaxHP > 0 {
		filled = t.HP * hpBarWidth / t.MaxHP
	}
	style := styleHPFull
	if t.HP*100 <= t.MaxHP*30 {
		style = styleHPLow
	}
	bar := style.Render(strings.Repeat("█", filled)) +
		styleHPEmpty.Render(strings.Repeat("░", hpBarWidth-filled))
	return fmt.Sprintf("%s %3d/%d", bar, t.HP, t.MaxHP)
}

func renderOption(v engine.View, i int, text string, width int) string {
	var mark string
	picked := false
	if v.Question.Kind() == types.KindTrueFalse {
		picked = state.IsToggled(v.Selection, i)
		mark = "[ ]"
		if picked {
			mark = "[x]"
		}
	} else {
		picked = v.Selection.Choice == i
		mark = "( )"
		if picked {
			mark = "(•)"
		}
	}
	line := fmt.Sprintf("%s %s. %s", mark, resolve.Label(i), text)
	if r := []rune(line); len(r) > width {
		line = string(r[:max(width-1, 1)]) + "…"
	}
	if picked {
		return styleOptionPicked.Render(line)
	}
	return styleOption.Render(line)
}

func renderFeedback(v engine.View) string {
	if v.Correct {
		return styleCorrect.Render("Correct!")
	}
	if v.Question != nil {
		if want := state.CorrectText(*v.Question); want != "" {
			return styleWrong.Render("Wrong! Answer: " + want)
		}
	}
	return styleWrong.Render("Wrong!")
}

func gameHelp(v engine.View) string {
	if v.Phase != types.PhaseAwaitingAnswer || v.Question == nil {
		return "esc menu"
	}
	switch v.Question.Kind() {
	case types.KindShortAnswer:
		return "type answer • ⌫ erase • enter fire • esc menu"
	case types.KindTrueFalse:
		return "a-d toggle true statements • enter fire • esc menu"
	default:
		return "a-d or ↑/↓ pick • enter fire • esc menu"
	}
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

// center pads s so its middle lands on column col.
func center(s string, col int) string {
	pad := col - lipgloss.Width(s)/2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// robotLabel is the display name of a robot kind.
func robotLabel(k target.Kind) string {
	return strings.ToUpper(string(k))
}

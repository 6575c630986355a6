package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/quizshot/engine/save"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/errors"
)

// menuItems are the main menu entries, in display order.
var menuItems = []string{
	"Start game",
	"Question files",
	"Rankings",
	"Quit",
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menu = (m.menu + len(menuItems) - 1) % len(menuItems)
	case key.Matches(msg, m.keys.Down):
		m.menu = (m.menu + 1) % len(menuItems)
	case key.Matches(msg, m.keys.Select):
		return m.chooseMenu(m.menu)
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(menuItems) {
			return m.chooseMenu(int(s[0] - '1'))
		}
	}
	return m, nil
}

func (m Model) chooseMenu(i int) (tea.Model, tea.Cmd) {
	m.menu = i
	m.setStatus("", false)
	switch i {
	case 0:
		if m.engine.Bank.Len() == 0 {
			m.setStatus("No questions loaded. Upload a question file first.", true)
			return m, nil
		}
		m.screen = screenName
		m.name.SetValue("")
		return m, m.name.Focus()
	case 1:
		m.screen = screenFiles
		m.fileSel = 0
	case 2:
		m.screen = screenRankings
		m.confirmReset = false
		m.viewport.SetContent(m.rankingsContent())
		m.viewport.GotoTop()
	default:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("QUIZSHOT") + "\n")
	b.WriteString(styleSystem.Render("Answer questions to shoot down the robots.") + "\n\n")
	for i, item := range menuItems {
		label := fmt.Sprintf("%d. %s", i+1, item)
		if i == m.menu {
			b.WriteString(styleMenuCursor.Render("> "+label) + "\n")
		} else {
			b.WriteString(styleMenuItem.Render("  "+label) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styleSystem.Render(fmt.Sprintf("%d question(s) in %d file(s)",
		m.engine.Bank.Len(), len(m.engine.Bank.Sources()))) + "\n")
	if s := m.renderStatus(); s != "" {
		b.WriteString(s + "\n")
	}
	b.WriteString(styleHelp.Render("↑/↓ move • enter select • esc quit"))
	return b.String()
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.name.Blur()
		m.screen = screenMenu
		return m, nil
	case tea.KeyEnter:
		if strings.TrimSpace(m.name.Value()) == "" {
			return m, nil
		}
		if err := m.engine.Start(m.name.Value()); err != nil {
			m.setStatus(startError(err), true)
			m.name.Blur()
			m.screen = screenMenu
			return m, nil
		}
		m.name.Blur()
		m.setStatus("", false)
		m.screen = screenGame
		m.lastTick = time.Time{}
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func startError(err error) string {
	if errors.CodeOf(err) == errors.CodeFailedPrecondition {
		return "No questions loaded. Upload a question file first."
	}
	return fmt.Sprintf("Cannot start: %v", err)
}

func (m Model) viewName() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Who is playing?") + "\n\n")
	b.WriteString(m.name.View() + "\n\n")
	b.WriteString(styleHelp.Render("enter start • esc back"))
	return b.String()
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
	case key.Matches(msg, m.keys.Reset):
		return m.chooseMenu(2)
	}
	return m, nil
}

func (m Model) viewResult() string {
	v := m.engine.View()
	var b strings.Builder
	if v.Won {
		b.WriteString(styleCorrect.Render("VICTORY!") + "\n")
		b.WriteString("Every question answered.\n\n")
	} else {
		b.WriteString(styleWrong.Render("GAME OVER") + "\n\n")
	}
	rows := [][2]string{
		{"Player", v.Player},
		{"Score", fmt.Sprint(v.Score)},
		{"Wrong answers", fmt.Sprintf("%d/%d", v.Wrong, state.MaxWrong)},
		{"Robots destroyed", fmt.Sprint(v.Kills)},
		{"Robot HP left", fmt.Sprintf("%d/%d", v.Target.HP, v.Target.MaxHP)},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-17s %s\n", r[0]+":", r[1]))
	}
	b.WriteString("\n" + styleHelp.Render("enter menu • r rankings"))
	return b.String()
}

func (m Model) updateRankings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
		m.confirmReset = false
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		if !m.confirmReset {
			m.confirmReset = true
			m.setStatus("Press r again to clear the rankings.", false)
			return m, nil
		}
		m.confirmReset = false
		if err := m.engine.ResetRankings(); err != nil {
			m.setStatus(fmt.Sprintf("Rankings cleared but not saved: %v", err), true)
		} else {
			m.setStatus("Rankings cleared.", false)
		}
		m.viewport.SetContent(m.rankingsContent())
		return m, nil
	}
	m.confirmReset = false
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) rankingsContent() string {
	entries := m.engine.Board.Entries()
	if len(entries) == 0 {
		return styleSystem.Render("No rankings yet.")
	}
	lines := []string{styleTitle.Render(fmt.Sprintf("%-3s %-20s %6s %5s  %-6s %s",
		"#", "Name", "Score", "Kills", "Result", "Date"))}
	for i, e := range entries {
		result := styleWrong.Render("lost  ")
		if e.Won {
			result = styleCorrect.Render("won   ")
		}
		lines = append(lines, fmt.Sprintf("%-3d %-20s %6d %5d  %s %s",
			i+1, e.Name, e.Score, e.Kills, result, e.At.Format(save.DateLayout)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRankings() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("RANKINGS") + "\n\n")
	b.WriteString(m.viewport.View() + "\n")
	if s := m.renderStatus(); s != "" {
		b.WriteString(s + "\n")
	}
	b.WriteString(styleHelp.Render("esc back • r reset"))
	return b.String()
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.path.Focused() {
		return m.updatePath(msg)
	}

	sources := m.engine.Bank.Sources()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
	case key.Matches(msg, m.keys.Up):
		if m.fileSel > 0 {
			m.fileSel--
		}
	case key.Matches(msg, m.keys.Down):
		if m.fileSel < len(sources)-1 {
			m.fileSel++
		}
	case key.Matches(msg, m.keys.Upload):
		m.path.SetValue("")
		m.setStatus("", false)
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.Delete):
		if len(sources) == 0 {
			return m, nil
		}
		removed, err := m.app.Delete(m.fileSel)
		if err != nil {
			m.setStatus(fmt.Sprintf("Delete failed: %v", err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Deleted %s (%d questions).", removed.Name, removed.QuestionCount), false)
		if m.fileSel >= len(sources)-1 && m.fileSel > 0 {
			m.fileSel--
		}
	}
	return m, nil
}

// updatePath handles the upload path field. Up and down walk previously
// entered paths.
func (m Model) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.path.Blur()
		m.history.ResetCursor()
		return m, nil
	case tea.KeyUp:
		if prev, ok := m.history.Prev(); ok {
			m.path.SetValue(prev)
			m.path.CursorEnd()
		}
		return m, nil
	case tea.KeyDown:
		if next, ok := m.history.Next(); ok {
			m.path.SetValue(next)
			m.path.CursorEnd()
		} else {
			m.path.SetValue("")
		}
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.path.Value())
		m.path.Blur()
		if input == "" {
			return m, nil
		}
		m.history.Push(input)
		m.history.ResetCursor()

		n, err := m.app.Upload(input)
		if err != nil {
			m.setStatus(fmt.Sprintf("0 questions loaded: %v", err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%d question(s) loaded from %s.", n, input), n == 0)
		m.fileSel = max(len(m.engine.Bank.Sources())-1, 0)
		return m, nil
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) viewFiles() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("QUESTION FILES") + "\n\n")

	sources := m.engine.Bank.Sources()
	if len(sources) == 0 {
		b.WriteString(styleSystem.Render("No files uploaded.") + "\n")
	}
	for i, s := range sources {
		line := fmt.Sprintf("%d. %s  (%d questions, %s)",
			i+1, s.Name, s.QuestionCount, s.UploadedAt.Format(save.DateLayout))
		if i == m.fileSel {
			b.WriteString(styleMenuCursor.Render("> "+line) + "\n")
		} else {
			b.WriteString(styleMenuItem.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	if m.path.Focused() {
		b.WriteString(m.path.View() + "\n")
		b.WriteString(styleHelp.Render("enter load • ↑/↓ previous paths • esc cancel") + "\n")
	}
	if s := m.renderStatus(); s != "" {
		b.WriteString(lipgloss.NewStyle().Width(max(m.width, 20)).Render(s) + "\n")
	}
	b.WriteString(styleHelp.Render("u upload • d delete • ↑/↓ select • esc back"))
	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// player, score, wrong answers and kills on the left and the robot on the
// right.
func (m Model) renderStatusBar(v engine.View) string {
	left := fmt.Sprintf(" %s | Score %d | Wrong %d/%d | Kills %d",
		v.Player, v.Score, v.Wrong, state.MaxWrong, v.Kills)
	right := fmt.Sprintf("%s %d/%d HP ", robotLabel(v.Target.Kind), v.Target.HP, v.Target.MaxHP)

	// Show the shot marker if it fits.
	if m.pulse.left > 0 {
		candidate := "BANG! | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

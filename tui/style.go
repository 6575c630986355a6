package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleMenuItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleMenuCursor = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleQuestion = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	styleContext = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")).
			Italic(true)

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleOptionPicked = lipgloss.NewStyle().
				Foreground(lipgloss.Color("16")).
				Background(lipgloss.Color("39"))

	styleButton = lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("34")).
			Bold(true).
			Padding(0, 2)

	styleButtonDisabled = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	styleCorrect = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	styleWrong = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleFeed = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	styleHPFull = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	styleHPLow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleHPEmpty = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	styleShot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// robotColors gives each robot kind its body colour.
var robotColors = map[target.Kind]lipgloss.Color{
	target.KindTitan:   lipgloss.Color("166"),
	target.KindStealth: lipgloss.Color("60"),
	target.KindPlasma:  lipgloss.Color("129"),
	target.KindWar:     lipgloss.Color("124"),
	target.KindNano:    lipgloss.Color("37"),
	target.KindMech:    lipgloss.Color("244"),
	target.KindCyber:   lipgloss.Color("33"),
}

// partGlyphs draws each part with its own texture.
var partGlyphs = map[types.Part]string{
	types.PartHead:     "▓",
	types.PartBody:     "█",
	types.PartLeftArm:  "▒",
	types.PartRightArm: "▒",
	types.PartLeftLeg:  "░",
	types.PartRightLeg: "░",
}

// robotStyle returns the style for kind, dimmed while it fades.
func robotStyle(kind target.Kind, faded bool) lipgloss.Style {
	c, ok := robotColors[kind]
	if !ok {
		c = lipgloss.Color("250")
	}
	s := lipgloss.NewStyle().Foreground(c)
	if faded {
		s = s.Faint(true)
	}
	return s
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

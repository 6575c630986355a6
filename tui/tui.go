package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/quizshot/app"
	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/types"
)

// screen is the page the TUI is showing.
type screen int

const (
	screenMenu screen = iota
	screenName
	screenGame
	screenResult
	screenRankings
	screenFiles
)

// maxFrame caps a single frame step, so a suspended terminal does not
// fast-forward a whole round on resume.
const maxFrame = 250 * time.Millisecond

// pulseDuration is how long a fired shot stays highlighted.
const pulseDuration = 200 * time.Millisecond

// tickMsg drives the frame loop.
type tickMsg time.Time

// shotPulse is shared between the model copies and the engine's event
// handler.
type shotPulse struct {
	part types.Part
	left time.Duration
}

// Model is the Bubble Tea model for the quiz shooter.
type Model struct {
	app    *app.App
	engine *engine.Engine
	keys   keyMap

	screen   screen
	menu     int
	fileSel  int
	name     textinput.Model
	path     textinput.Model
	history  *History
	viewport viewport.Model

	pulse        *shotPulse
	frame        time.Duration
	lastTick     time.Time
	status       string
	statusErr    bool
	confirmReset bool

	width    int
	height   int
	quitting bool
}

// New creates a TUI model wired to the given app. frameRate is in frames
// per second.
func New(a *app.App, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 60
	}

	name := textinput.New()
	name.Prompt = "Name: "
	name.PromptStyle = styleInputPrompt
	name.CharLimit = engine.MaxNameLength
	name.Placeholder = "your name"

	path := textinput.New()
	path.Prompt = "File: "
	path.PromptStyle = styleInputPrompt
	path.CharLimit = 1024
	path.Placeholder = "path to a .txt or .lua question file"

	vp := viewport.New(80, 20)
	vp.KeyMap = viewportKeyMap()

	m := Model{
		app:      a,
		engine:   a.Engine,
		keys:     defaultKeyMap(),
		name:     name,
		path:     path,
		history:  NewHistory(50),
		viewport: vp,
		pulse:    &shotPulse{},
		frame:    time.Second / time.Duration(frameRate),
		width:    80,
		height:   24,
	}

	pulse := m.pulse
	m.engine.Events.On(types.EventShotFired, func(ev types.Event) {
		if p, ok := ev.Data["part"].(types.Part); ok {
			pulse.part = p
		}
		pulse.left = pulseDuration
	})
	return m
}

// Run starts the Bubble Tea program.
func Run(a *app.App, frameRate int) error {
	m := New(a, frameRate)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages (key presses, mouse, window resize, frames).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		return m, nil

	case tickMsg:
		m = m.advance(time.Time(msg))
		return m, m.tick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenName:
			return m.updateName(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenResult:
			return m.updateResult(msg)
		case screenRankings:
			return m.updateRankings(msg)
		case screenFiles:
			return m.updateFiles(msg)
		}

	case tea.MouseMsg:
		if m.screen == screenGame {
			return m.clickGame(msg)
		}
	}

	return m, nil
}

// advance runs one frame of the engine while a game is on screen.
func (m Model) advance(now time.Time) Model {
	dt := time.Duration(0)
	if !m.lastTick.IsZero() {
		dt = min(now.Sub(m.lastTick), maxFrame)
	}
	m.lastTick = now

	if m.pulse.left > 0 {
		m.pulse.left = max(m.pulse.left-dt, 0)
	}
	if m.screen != screenGame {
		return m
	}

	m.engine.Update(dt)
	if v := m.engine.View(); v.Over {
		m.screen = screenResult
	}
	return m
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenName:
		return m.viewName()
	case screenGame:
		return m.viewGame()
	case screenResult:
		return m.viewResult()
	case screenRankings:
		return m.viewRankings()
	case screenFiles:
		return m.viewFiles()
	default:
		return m.viewMenu()
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return styleError.Render(m.status)
	}
	return styledSystemMsg(m.status)
}

package tui

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/quizshot/app"
	"github.com/nathoo/quizshot/config"
	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/types"
)

// --- History tests ---

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("a.txt")
	h.Push("b.txt")
	h.Push("c.lua")

	for _, want := range []string{"c.lua", "b.txt", "a.txt", "a.txt"} {
		got, ok := h.Prev()
		if !ok || got != want {
			t.Errorf("Prev() = %q, %v; want %q", got, ok, want)
		}
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("a.txt")
	h.Push("b.txt")

	h.Prev()
	h.Prev()
	if got, ok := h.Next(); !ok || got != "b.txt" {
		t.Errorf("Next() = %q, %v; want b.txt", got, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("Next() past the newest path should report false")
	}
	if _, ok := h.Next(); ok {
		t.Error("Next() when not browsing should report false")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("Prev() on empty history should report false")
	}
	h.Push("")
	if h.Len() != 0 {
		t.Errorf("Len() = %d after pushing an empty path", h.Len())
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	h.Prev()
	if got, _ := h.Prev(); got != "b" {
		t.Errorf("oldest = %q, want b", got)
	}
}

func TestHistory_RepeatMovesToNewest(t *testing.T) {
	h := NewHistory(5)
	h.Push("a")
	h.Push("b")
	h.Push("a")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if got, _ := h.Prev(); got != "a" {
		t.Errorf("newest = %q, want a", got)
	}
	if got, _ := h.Prev(); got != "b" {
		t.Errorf("older = %q, want b", got)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("a")
	h.Push("b")
	h.Prev()
	h.Prev()
	h.ResetCursor()
	if got, _ := h.Prev(); got != "b" {
		t.Errorf("after reset Prev() = %q, want b", got)
	}
}

// --- Model tests ---

const capitals = "Câu 1: Capital of Vietnam?\n*Hanoi\n" +
	"Câu 2: Capital of France?\n*Paris\n" +
	"Câu 3: Capital of Japan?\n*Tokyo\n"

var answers = map[string]string{
	"Capital of Vietnam?": "Hanoi",
	"Capital of France?":  "Paris",
	"Capital of Japan?":   "Tokyo",
}

func writeBank(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestModel(t *testing.T, bank string) Model {
	t.Helper()
	cfg := config.Config{DataDir: t.TempDir(), Store: config.StoreJSON, LogLevel: "info", Seed: 1}
	config.Normalize(&cfg)
	a, err := app.New(cfg, app.Options{LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	if bank != "" {
		if _, err := a.Upload(writeBank(t, bank)); err != nil {
			t.Fatalf("Upload: %v", err)
		}
	}
	return New(a, 60)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// startGame walks the menu and the name screen into a running game.
func startGame(t *testing.T, m Model) Model {
	t.Helper()
	m = send(t, m, runes("1"))
	if m.screen != screenName {
		t.Fatalf("screen = %v after choosing Start, want name screen", m.screen)
	}
	m = send(t, m, runes("L"), runes("a"), runes("n"), enter)
	if m.screen != screenGame {
		t.Fatalf("screen = %v after entering a name, want game (status %q)", m.screen, m.status)
	}
	return m
}

// settle feeds frames until the engine is waiting for a shot again or the
// session has ended.
func settle(t *testing.T, m Model, now *time.Time) Model {
	t.Helper()
	m = send(t, m, tickMsg(*now))
	for i := 0; i < 40; i++ {
		*now = now.Add(maxFrame)
		m = send(t, m, tickMsg(*now))
		v := m.engine.View()
		if v.Over || (v.Phase == types.PhaseAwaitingTarget && v.Target.State == types.TargetActive) {
			return m
		}
	}
	t.Fatal("round never settled")
	return m
}

func TestModel_StartWithEmptyBank(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, runes("1"))

	if m.screen != screenMenu {
		t.Errorf("screen = %v, want menu", m.screen)
	}
	if !m.statusErr || !strings.Contains(m.status, "No questions loaded") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestModel_WinByKeyboard(t *testing.T) {
	m := newTestModel(t, capitals)
	m = startGame(t, m)
	now := time.Unix(1000, 0)

	for round := 0; round < 3; round++ {
		m = send(t, m, runes("1"))
		v := m.engine.View()
		if v.Phase != types.PhaseAwaitingAnswer || v.Part != types.PartHead {
			t.Fatalf("round %d: phase %s part %s after aiming", round, v.Phase, v.Part)
		}
		m = send(t, m, runes(answers[v.Question.Text]), enter)
		m = settle(t, m, &now)
	}

	v := m.engine.View()
	if !v.Over || !v.Won {
		t.Fatalf("Over=%v Won=%v, want a win", v.Over, v.Won)
	}
	if m.screen != screenResult {
		t.Errorf("screen = %v, want result", m.screen)
	}
	if !strings.Contains(m.View(), "VICTORY!") {
		t.Errorf("result view:\n%s", m.View())
	}
	if n := len(m.engine.Board.Entries()); n != 1 {
		t.Errorf("rankings = %d entries, want 1", n)
	}

	m = send(t, m, enter)
	if m.screen != screenMenu {
		t.Errorf("screen = %v after result, want menu", m.screen)
	}
}

func TestModel_ShortAnswerEditing(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	m = send(t, m, runes("2"), runes("ab"), tea.KeyMsg{Type: tea.KeySpace}, runes("c"),
		tea.KeyMsg{Type: tea.KeyBackspace})

	if got := m.engine.View().Selection.Typed; got != "ab " {
		t.Errorf("Typed = %q, want %q", got, "ab ")
	}
	if !strings.Contains(m.View(), "Answer: ab") {
		t.Errorf("game view missing typed answer:\n%s", m.View())
	}
}

func TestModel_ClickRobotHead(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	l := m.layout(m.engine.View())

	m = send(t, m, tea.MouseMsg{
		X:      l.robotCol,
		Y:      l.robotTop + (-6 - robotRowMin),
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})

	v := m.engine.View()
	if v.Phase != types.PhaseAwaitingAnswer || v.Part != types.PartHead {
		t.Errorf("phase %s part %s after clicking the head", v.Phase, v.Part)
	}
}

func TestModel_ClickEmptySpaceDoesNothing(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	l := m.layout(m.engine.View())

	m = send(t, m, tea.MouseMsg{
		X:      l.robotCol + robotColMax,
		Y:      l.robotTop,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})

	if v := m.engine.View(); v.Phase != types.PhaseAwaitingTarget {
		t.Errorf("phase = %s after a miss, want awaiting target", v.Phase)
	}
}

func TestModel_ClickOptionAndFire(t *testing.T) {
	m := startGame(t, newTestModel(t, "Câu 1: Pick one\nA. red\nB. green*\nC. blue\n"))
	m = send(t, m, runes("2"))

	l := m.layout(m.engine.View())
	var option, submit *region
	for i := range l.regions {
		r := &l.regions[i]
		switch {
		case r.kind == regionOption && r.index == 1:
			option = r
		case r.kind == regionSubmit:
			submit = r
		}
	}
	if option == nil || submit == nil {
		t.Fatalf("regions = %+v", l.regions)
	}

	click := func(y int) tea.MouseMsg {
		return tea.MouseMsg{Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	}
	m = send(t, m, click(option.row))
	if got := m.engine.View().Selection.Choice; got != 1 {
		t.Fatalf("Choice = %d, want 1", got)
	}

	m = send(t, m, click(submit.row))
	if v := m.engine.View(); v.Phase != types.PhaseShowingFeedback {
		t.Errorf("phase = %s after clicking FIRE, want feedback", v.Phase)
	}
}

func TestModel_MultipleChoiceKeys(t *testing.T) {
	m := startGame(t, newTestModel(t, "Câu 1: Pick one\nA. red\nB. green*\nC. blue\n"))
	m = send(t, m, runes("3"), runes("c"))
	if got := m.engine.View().Selection.Choice; got != 2 {
		t.Fatalf("Choice = %d after c, want 2", got)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.engine.View().Selection.Choice; got != 0 {
		t.Errorf("Choice = %d after down, want wrap to 0", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.engine.View().Selection.Choice; got != 2 {
		t.Errorf("Choice = %d after up, want wrap to 2", got)
	}
}

func TestModel_MultipleChoiceWithNoOptions(t *testing.T) {
	m := newTestModel(t, "")
	empty := types.Question{
		Text:  "Pick nothing",
		Level: types.LevelRecall,
		Body:  types.MultipleChoice{Correct: types.NoAnswer},
	}
	if _, err := m.app.Bank.Ingest("empty.txt", "/empty.txt", []types.Question{empty}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	m = startGame(t, m)
	m = send(t, m, runes("1"))
	if v := m.engine.View(); v.Phase != types.PhaseAwaitingAnswer || len(v.Options) != 0 {
		t.Fatalf("phase = %s, options = %v", v.Phase, v.Options)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyUp}, runes("a"))
	if got := m.engine.View().Selection.Choice; got != types.NoAnswer {
		t.Errorf("Choice = %d, want none", got)
	}
	_ = m.View()
}

func TestModel_TrueFalseKeys(t *testing.T) {
	m := startGame(t, newTestModel(t, "Câu 1: Which hold?\nA. one Đ\nB. two S\nC. three Đ\n"))
	m = send(t, m, runes("2"), runes("a"), runes("c"), runes("c"))

	if got := m.engine.View().Selection.Toggled; len(got) != 1 || got[0] != 0 {
		t.Errorf("Toggled = %v, want [0]", got)
	}
	if !strings.Contains(m.View(), "[x] A.") {
		t.Errorf("game view:\n%s", m.View())
	}
}

func TestModel_ShotPulse(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	m = send(t, m, runes("1"))
	m = send(t, m, runes(answers[m.engine.View().Question.Text]), enter)

	now := time.Unix(1000, 0)
	m = send(t, m, tickMsg(now))
	for i := 0; i < 20 && m.pulse.left == 0; i++ {
		now = now.Add(maxFrame)
		m = send(t, m, tickMsg(now))
	}
	if m.pulse.left == 0 || m.pulse.part != types.PartHead {
		t.Fatalf("pulse = %+v, want a head pulse", *m.pulse)
	}
	if !strings.Contains(m.View(), "BANG!") {
		t.Errorf("status bar missing shot marker:\n%s", m.View())
	}
}

func TestModel_EscAbandonsGame(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu {
		t.Errorf("screen = %v, want menu", m.screen)
	}
}

func TestModel_StatusBar(t *testing.T) {
	m := startGame(t, newTestModel(t, capitals))
	view := m.View()
	for _, want := range []string{"Lan", "Score 0", "Wrong 0/2", "Kills 0", "100/100 HP"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in game view:\n%s", want, view)
		}
	}
}

func TestModel_UploadAndDeleteFiles(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, runes("2"))
	if m.screen != screenFiles {
		t.Fatalf("screen = %v, want files", m.screen)
	}

	path := writeBank(t, capitals)
	m = send(t, m, runes("u"), runes(path), enter)
	if m.engine.Bank.Len() != 3 {
		t.Fatalf("bank has %d questions after upload (status %q)", m.engine.Bank.Len(), m.status)
	}
	if !strings.Contains(m.status, "3 question(s) loaded") {
		t.Errorf("status = %q", m.status)
	}
	if m.history.Len() != 1 {
		t.Errorf("history = %d paths, want 1", m.history.Len())
	}

	m = send(t, m, runes("d"))
	if m.engine.Bank.Len() != 0 || !strings.Contains(m.status, "Deleted bank.txt") {
		t.Errorf("after delete: %d questions, status %q", m.engine.Bank.Len(), m.status)
	}
}

func TestModel_RankingsResetNeedsConfirm(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, runes("3"))
	if m.screen != screenRankings {
		t.Fatalf("screen = %v, want rankings", m.screen)
	}
	m = send(t, m, runes("r"))
	if !m.confirmReset {
		t.Fatal("first r should ask for confirmation")
	}
	m = send(t, m, runes("r"))
	if m.confirmReset || m.status != "Rankings cleared." {
		t.Errorf("confirm=%v status=%q", m.confirmReset, m.status)
	}
}

func TestViewportKeyMap(t *testing.T) {
	km := viewportKeyMap()
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"page down", tea.KeyMsg{Type: tea.KeyPgDown}, km.PageDown},
		{"page up", tea.KeyMsg{Type: tea.KeyPgUp}, km.PageUp},
		{"half page down", tea.KeyMsg{Type: tea.KeyCtrlD}, km.HalfPageDown},
		{"half page up", tea.KeyMsg{Type: tea.KeyCtrlU}, km.HalfPageUp},
		{"line up", tea.KeyMsg{Type: tea.KeyUp}, km.Up},
		{"line up vi", runes("k"), km.Up},
		{"line down", tea.KeyMsg{Type: tea.KeyDown}, km.Down},
		{"line down vi", runes("j"), km.Down},
	}
	for _, tt := range tests {
		if !key.Matches(tt.msg, tt.binding) {
			t.Errorf("%s: %q does not match", tt.name, tt.msg.String())
		}
	}
}

func TestHPBar(t *testing.T) {
	bar := renderHPBar(engine.TargetView{HP: 40, MaxHP: 100})
	if !strings.Contains(bar, " 40/100") {
		t.Errorf("renderHPBar = %q", bar)
	}
	if got := strings.Count(bar, "█"); got != 8 {
		t.Errorf("filled cells = %d, want 8", got)
	}
}

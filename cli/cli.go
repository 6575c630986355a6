// Package cli provides the plain-text front end: line-oriented commands,
// script playback and meta-command dispatch for the quiz shooter.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/quizshot/app"
	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/engine/resolve"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/engine/target"
	"github.com/nathoo/quizshot/types"
)

// settleTime covers feedback, the shot delay and a full robot swap, so one
// Update after a submit always reaches the next target or the end.
const settleTime = engine.FeedbackDuration + engine.ShotDelay +
	target.DyingDuration + target.SpawningDuration

// CLI handles terminal interaction with the player.
type CLI struct {
	App       *app.App
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given app.
func New(a *app.App) *CLI {
	c := &CLI{
		App:    a,
		Engine: a.Engine,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	c.Engine.Events.On(types.EventShotFired, func(ev types.Event) {
		c.printLine(fmt.Sprintf("*BANG* (%s)", partName(ev.Data["part"])))
	})
	return c
}

// Run loops: prompt → input → dispatch → output, until /quit or end of
// input.
func (c *CLI) Run() {
	c.printLine("QuizShot. Answer questions to shoot down the robots.")
	c.printLine(fmt.Sprintf("%d question(s) loaded. Type /start <name> to play, /help for commands.",
		c.Engine.Bank.Len()))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.handleGame(input)
	}
}

// handleMeta dispatches meta-commands. Returns true if the program should exit.
func (c *CLI) handleMeta(input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/start":
		c.cmdStart(arg)

	case "/rankings":
		if arg == "reset" {
			c.cmdResetRankings()
		} else {
			c.cmdRankings()
		}

	case "/files":
		c.cmdFiles()

	case "/upload":
		c.cmdUpload(arg)

	case "/delete":
		c.cmdDelete(arg)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// handleGame runs one in-session command.
func (c *CLI) handleGame(input string) {
	if !c.Engine.Playing() {
		c.printSystem("No game running. Type /start <name> to play.")
		return
	}

	verb, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "shoot", "aim", "s":
		c.cmdShoot(arg)
	case "pick", "choose", "p":
		c.cmdPick(arg)
	case "toggle", "t":
		c.cmdToggle(arg)
	case "type":
		c.cmdType(arg)
	case "erase":
		c.cmdErase()
	case "submit", "fire":
		c.cmdSubmit()
	case "wait", "z":
		c.cmdWait(arg)
	case "status":
		c.cmdStatus()
	default:
		c.printLine(fmt.Sprintf("I don't know how to %q. Type /help for commands.", verb))
	}
}

func (c *CLI) cmdStart(name string) {
	if err := c.Engine.Start(name); err != nil {
		c.printSystem(fmt.Sprintf("Cannot start: %v", err))
		return
	}
	v := c.Engine.View()
	c.printLine(fmt.Sprintf("Good luck, %s! A %s robot approaches.", v.Player, v.Target.Kind))
	c.printLine("Shoot a part: head, body, left arm, right arm, left leg, right leg.")
}

func (c *CLI) cmdShoot(arg string) {
	part, err := resolve.Part(arg)
	if err != nil {
		c.printLine(capitalize(err.Error()) + ".")
		return
	}
	if !c.Engine.Shoot(part) {
		c.printLine(c.busyReason())
		return
	}
	c.step(0)
	c.printQuestion(c.Engine.View())
}

func (c *CLI) cmdPick(arg string) {
	v := c.Engine.View()
	if v.Question == nil || v.Question.Kind() != types.KindMultipleChoice {
		c.printLine("There is no multiple-choice question to pick from.")
		return
	}
	i, err := resolve.AnswerIndex(arg, len(v.Options))
	if err != nil {
		c.printLine(capitalize(err.Error()) + ".")
		return
	}
	if c.Engine.Choose(i) {
		c.printLine(fmt.Sprintf("Picked %s. %s", resolve.Label(i), v.Options[i]))
	}
}

func (c *CLI) cmdToggle(arg string) {
	v := c.Engine.View()
	if v.Question == nil || v.Question.Kind() != types.KindTrueFalse {
		c.printLine("There is no true/false question to toggle.")
		return
	}
	for _, label := range strings.Fields(arg) {
		i, err := resolve.AnswerIndex(label, len(v.Options))
		if err != nil {
			c.printLine(capitalize(err.Error()) + ".")
			return
		}
		c.Engine.Toggle(i)
	}
	c.printStatements(c.Engine.View())
}

func (c *CLI) cmdType(text string) {
	v := c.Engine.View()
	if v.Question == nil || v.Question.Kind() != types.KindShortAnswer {
		c.printLine("There is no short-answer question to type into.")
		return
	}
	for v.Selection.Typed != "" && c.Engine.Erase() {
		v = c.Engine.View()
	}
	for _, r := range text {
		if !c.Engine.TypeRune(r) {
			break
		}
	}
	c.printLine(fmt.Sprintf("Answer: %q", c.Engine.View().Selection.Typed))
}

func (c *CLI) cmdErase() {
	if !c.Engine.Erase() {
		c.printLine("Nothing to erase.")
		return
	}
	c.printLine(fmt.Sprintf("Answer: %q", c.Engine.View().Selection.Typed))
}

func (c *CLI) cmdSubmit() {
	if !c.Engine.Submit() {
		if c.Engine.View().Phase == types.PhaseAwaitingAnswer {
			c.printLine("Choose an answer before submitting.")
		} else {
			c.printLine("There is nothing to submit.")
		}
		return
	}
	c.step(settleTime)
	c.afterRound()
}

func (c *CLI) cmdWait(arg string) {
	d, err := parseWait(arg)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	c.step(d)
	c.afterRound()
}

func (c *CLI) cmdStatus() {
	v := c.Engine.View()
	c.printLine(fmt.Sprintf("%s | Score %d | Wrong %d/%d | Kills %d",
		v.Player, v.Score, v.Wrong, state.MaxWrong, v.Kills))
	c.printLine(fmt.Sprintf("Robot: %s %d/%d HP (%s)", v.Target.Kind, v.Target.HP, v.Target.MaxHP, v.Target.State))
	c.printLine("Phase: " + strings.ReplaceAll(string(v.Phase), "_", " "))
	if v.Question != nil && v.Phase == types.PhaseAwaitingAnswer {
		c.printQuestion(v)
	}
}

func (c *CLI) cmdRankings() {
	entries := c.Engine.Board.Entries()
	if len(entries) == 0 {
		c.printSystem("No rankings yet.")
		return
	}
	for _, line := range RankingLines(entries) {
		c.printLine(line)
	}
}

func (c *CLI) cmdResetRankings() {
	if err := c.Engine.ResetRankings(); err != nil {
		c.printSystem(fmt.Sprintf("Rankings cleared but not saved: %v", err))
		return
	}
	c.printSystem("Rankings cleared.")
}

func (c *CLI) cmdFiles() {
	sources := c.Engine.Bank.Sources()
	if len(sources) == 0 {
		c.printSystem("No files uploaded.")
		return
	}
	for _, line := range FileLines(sources) {
		c.printLine(line)
	}
}

func (c *CLI) cmdUpload(path string) {
	if c.App == nil {
		c.printSystem("Uploading is not available.")
		return
	}
	n, err := c.App.Upload(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("0 questions loaded: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("%d question(s) loaded.", n))
}

func (c *CLI) cmdDelete(arg string) {
	if c.App == nil {
		c.printSystem("Deleting is not available.")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		c.printSystem("Usage: /delete <number from /files>")
		return
	}
	removed, err := c.App.Delete(n - 1)
	if err != nil {
		c.printSystem(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Deleted %s (%d questions).", removed.Name, removed.QuestionCount))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /start <name>     Start a new game",
		"  /rankings [reset] Show or clear the leaderboard",
		"  /files            List uploaded question files",
		"  /upload <path>    Load a question file (.txt or .lua)",
		"  /delete <n>       Remove file n and its questions",
		"  /trace            Toggle debug trace output",
		"  /help             Show this help",
		"  /quit             Exit",
		"",
		"Game commands:",
		"  shoot <part>      Aim at head, body, left arm, right arm, left leg or right leg",
		"  pick <a-d|1-n>    Choose a multiple-choice answer",
		"  toggle <a b ...>  Mark or unmark true statements",
		"  type <text>       Set a short answer",
		"  erase             Delete the last typed character",
		"  submit            Grade the answer and fire",
		"  wait <duration>   Let time pass (500ms, 1.5s; bare numbers are milliseconds)",
		"  status            Show score, robot and question",
		"  again (g)         Repeat the last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// step advances the engine and prints what happened.
func (c *CLI) step(d time.Duration) {
	res := c.Engine.Update(d)
	for _, line := range res.Output {
		c.printLine(line)
	}
	if c.Trace {
		c.printTrace(res)
	}
}

// afterRound prints the end-of-session summary or the next prompt.
func (c *CLI) afterRound() {
	v := c.Engine.View()
	switch {
	case v.Over:
		c.printResultScreen(v)
	case v.Phase == types.PhaseAwaitingTarget && v.Target.State == types.TargetActive:
		c.printLine(fmt.Sprintf("Robot: %s %d/%d HP. Pick your next shot.", v.Target.Kind, v.Target.HP, v.Target.MaxHP))
	}
}

func (c *CLI) busyReason() string {
	v := c.Engine.View()
	switch {
	case v.Target.State != types.TargetActive:
		return "The robot is not in range yet."
	case v.Phase == types.PhaseAwaitingAnswer:
		return "Answer the current question first."
	case v.Phase != types.PhaseAwaitingTarget:
		return "Wait for the shot to land."
	default:
		return "No questions left to draw."
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

// parseWait accepts Go durations and bare millisecond counts.
func parseWait(arg string) (time.Duration, error) {
	if arg == "" {
		return 0, fmt.Errorf("Usage: wait <duration>")
	}
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if n < 0 || n > math.MaxInt64/int64(time.Millisecond) {
			return 0, fmt.Errorf("%q is out of range", arg)
		}
		return time.Duration(n) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(arg)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%q is not a duration", arg)
	}
	return d, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

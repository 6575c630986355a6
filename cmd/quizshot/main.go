// QuizShot is a quiz game: answer questions correctly to shoot down robots.
// Usage: quizshot [--plain] [--script <file>] [--trace] [--config <file>]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nathoo/quizshot/app"
	"github.com/nathoo/quizshot/cli"
	"github.com/nathoo/quizshot/config"
	"github.com/nathoo/quizshot/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	logStderr  bool
	plain      bool
	trace      bool
	scriptFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "quizshot",
		Short:         "Answer questions to shoot down robots",
		Long:          `QuizShot loads question banks from text or Lua files and turns them into a shooting game with a persistent leaderboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(opts)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("quizshot %s (commit %s, built %s)\n", version, commit, date))

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.quizshot/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.logStderr, "log-stderr", false, "write logs to stderr instead of the log file")
	root.Flags().BoolVar(&opts.plain, "plain", false, "use the line-based interface even on a terminal")
	root.Flags().BoolVar(&opts.trace, "trace", false, "print engine events after each command")
	root.Flags().StringVar(&opts.scriptFile, "script", "", "play commands from a file and echo them")

	root.AddCommand(
		newUploadCmd(opts),
		newFilesCmd(opts),
		newDeleteCmd(opts),
		newRankingsCmd(opts),
		newParseCmd(),
	)
	return root
}

// openApp loads the config and starts the app over the stored data.
func openApp(opts *options) (*app.App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	var appOpts app.Options
	if opts.logStderr {
		appOpts.LogWriter = os.Stderr
	}
	return app.New(cfg, appOpts)
}

func play(opts *options) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	// Script mode: read commands from the file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		c := cli.New(a)
		c.In = f
		c.EchoInput = true
		c.Trace = opts.trace
		c.Run()
		return nil
	}

	// Use the plain CLI if asked to or when not attached to a terminal.
	if opts.plain || !isTerminal() {
		c := cli.New(a)
		c.Trace = opts.trace
		c.Run()
		return nil
	}

	return tui.Run(a, a.Config.FrameRate)
}

// isTerminal reports whether both stdin and stdout are terminals.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

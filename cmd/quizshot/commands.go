package main

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/quizshot/app"
	"github.com/nathoo/quizshot/cli"
	"github.com/nathoo/quizshot/engine/resolve"
	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/loader"
	"github.com/nathoo/quizshot/types"
)

// withApp runs fn against an opened app and closes it afterwards.
func withApp(opts *options, fn func(a *app.App) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Add question files to the bank",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App) error {
				var errs []error
				for _, path := range args {
					n, err := a.Upload(path)
					if err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", path, err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d question(s) loaded\n", path, n)
				}
				return stderrors.Join(errs...)
			})
		},
	}
}

func newFilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List uploaded question files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App) error {
				sources := a.Bank.Sources()
				if len(sources) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files uploaded.")
					return nil
				}
				for _, line := range cli.FileLines(sources) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <n>",
		Short: "Remove an uploaded file and its questions (n as listed by files)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.InvalidArgumentf("%q is not a file number", args[0])
			}
			return withApp(opts, func(a *app.App) error {
				removed, err := a.Delete(n - 1)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d questions).\n", removed.Name, removed.QuestionCount)
				return nil
			})
		},
	}
}

func newRankingsCmd(opts *options) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app.App) error {
				if reset {
					if err := a.Engine.ResetRankings(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Rankings cleared.")
					return nil
				}
				entries := a.Board.Entries()
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No rankings yet.")
					return nil
				}
				for _, line := range cli.RankingLines(entries) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the leaderboard")
	return cmd
}

// questionDoc is the YAML form printed by the parse command.
type questionDoc struct {
	Kind    types.Kind  `yaml:"kind"`
	Level   types.Level `yaml:"level"`
	Text    string      `yaml:"text"`
	Context string      `yaml:"context,omitempty"`
	Options []string    `yaml:"options,omitempty"`
	Correct []string    `yaml:"correct,omitempty"`
	Answer  string      `yaml:"answer,omitempty"`
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a question file and print the result as YAML",
		Long:  `Parse reads a question file the same way upload does, without adding it to the bank, and prints what was understood.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loader.Load(app.CleanPath(args[0]))
			if err != nil {
				return err
			}
			docs := make([]questionDoc, len(qs))
			for i, q := range qs {
				docs[i] = toDoc(q)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(docs); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func toDoc(q types.Question) questionDoc {
	d := questionDoc{Kind: q.Kind(), Level: q.Level, Text: q.Text, Context: q.Context}
	switch b := q.Body.(type) {
	case types.MultipleChoice:
		d.Options = b.Options
		if b.Correct != types.NoAnswer {
			d.Correct = []string{resolve.Label(b.Correct)}
		}
	case types.TrueFalse:
		d.Options = b.Statements
		for _, i := range b.Correct {
			d.Correct = append(d.Correct, resolve.Label(i))
		}
	case types.ShortAnswer:
		d.Answer = b.Expected
	}
	return d
}

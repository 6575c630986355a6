// Package app wires configuration, logging, persistence, the question bank
// and the engine into one value shared by the front ends.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/quizshot/clock"
	"github.com/nathoo/quizshot/config"
	"github.com/nathoo/quizshot/engine"
	"github.com/nathoo/quizshot/engine/bank"
	"github.com/nathoo/quizshot/engine/ranking"
	"github.com/nathoo/quizshot/engine/save"
	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/loader"
	"github.com/nathoo/quizshot/types"
)

// Options overrides parts of the wiring. All fields are optional.
type Options struct {
	LogWriter io.Writer // replaces the log file
	Clock     clock.Clock
}

// App is the assembled program state.
type App struct {
	Config config.Config
	Log    *slog.Logger
	Store  save.Store
	Bank   *bank.Bank
	Board  *ranking.Board
	Engine *engine.Engine

	logFile io.Closer
}

// New opens the store named by cfg, restores the saved bank and rankings
// and builds the engine. Missing or unreadable saved data is logged and
// the program starts empty.
func New(cfg config.Config, opts Options) (*App, error) {
	log, logFile, err := newLogger(cfg, opts.LogWriter)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := engine.NewRNG(seed)
	b := bank.New(bank.Options{
		Rand:   rng,
		Store:  store,
		Clock:  clk,
		Logger: log,
	})
	if data, err := store.LoadBank(); err != nil {
		logLoadFailure(log, "question bank", err)
	} else {
		dropped := b.Restore(data)
		log.Info("question bank loaded", "questions", b.Len(), "files", len(data.Files), "dropped", dropped)
	}

	entries, err := store.LoadRankings()
	if err != nil {
		logLoadFailure(log, "rankings", err)
	}
	board := ranking.NewBoard(entries)

	eng := engine.New(b, board, engine.Options{
		Rankings: store,
		Clock:    clk,
		Logger:   log,
		RNG:      rng,
	})

	log.Info("started", "store", cfg.Store, "data_dir", cfg.DataDir, "seed", seed)
	return &App{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Bank:    b,
		Board:   board,
		Engine:  eng,
		logFile: logFile,
	}, nil
}

// OpenStore opens the persistence backend named by cfg.Store.
func OpenStore(cfg config.Config) (save.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, errors.FromFS(err, "creating data directory")
		}
		s, err := save.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreJSON, "":
		s, err := save.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.InvalidArgumentf("unknown store %q", cfg.Store)
	}
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	var closer io.Closer
	if w == nil {
		if cfg.LogFile == "" {
			return slog.New(slog.DiscardHandler), nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, errors.FromFS(err, "creating log directory")
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.FromFS(err, "opening log file")
		}
		w, closer = f, f
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()})
	return slog.New(h), closer, nil
}

func logLoadFailure(log *slog.Logger, what string, err error) {
	switch {
	case errors.IsNotFound(err):
		log.Debug("no saved "+what+"; starting empty", "error", err)
	case errors.IsMalformed(err):
		log.Warn("saved "+what+" is corrupt; starting empty", "error", err)
	default:
		log.Warn("saved "+what+" is unreadable; starting empty", "error", err, "code", errors.CodeOf(err))
	}
}

// Upload loads the question file at path and adds its questions to the
// bank. It returns how many questions were added.
func (a *App) Upload(path string) (int, error) {
	path = CleanPath(path)
	if path == "" {
		return 0, errors.InvalidArgument("no file given")
	}

	qs, err := loader.Load(path)
	if err != nil {
		a.Log.Warn("upload failed", "path", path, "error", err)
		return 0, err
	}

	n, err := a.Bank.Ingest(filepath.Base(path), path, qs)
	if err != nil {
		return n, err
	}
	a.Log.Info("uploaded", "path", path, "questions", n)
	return n, nil
}

// Delete removes the i-th uploaded file (zero-based) and its questions.
func (a *App) Delete(i int) (types.SourceFile, error) {
	sources := a.Bank.Sources()
	if i < 0 || i >= len(sources) {
		return types.SourceFile{}, errors.InvalidArgumentf("no file #%d; %d file(s) uploaded", i+1, len(sources))
	}
	if err := a.Bank.DeleteSource(i); err != nil {
		return types.SourceFile{}, err
	}
	a.Log.Info("file deleted", "name", sources[i].Name, "questions", sources[i].QuestionCount)
	return sources[i], nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	err := a.Store.Close()
	if a.logFile != nil {
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	return nil
}

// CleanPath trims whitespace and the quotes terminals add to dropped
// paths, and expands a leading "~".
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 {
		if (path[0] == '"' && path[len(path)-1] == '"') || (path[0] == '\'' && path[len(path)-1] == '\'') {
			path = strings.TrimSpace(path[1 : len(path)-1])
		}
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

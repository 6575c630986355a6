// Package config loads runtime settings: defaults, then an optional YAML
// file, then a .env file and QUIZSHOT_* environment variables.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/quizshot/errors"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

const (
	defaultDirName   = ".quizshot"
	defaultFileName  = "config.yaml"
	logFileName      = "quizshot.log"
	sqliteFileName   = "quizshot.db"
	DefaultFrameRate = 60
)

// Config holds the runtime settings.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	Store     string `yaml:"store"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	Seed      int64  `yaml:"seed"`
	FrameRate int    `yaml:"frame_rate"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir(),
		Store:     StoreJSON,
		LogLevel:  "info",
		FrameRate: DefaultFrameRate,
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), defaultFileName)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// Load builds the config. An explicit path must exist; when path is empty
// the default path is read if present. The .env file in the working
// directory is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, &cfg); err != nil {
			return Config{}, err
		}
	case explicit || !stderrors.Is(err, fs.ErrNotExist):
		return Config{}, errors.FromFS(err, "read config")
	}

	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse decodes a single strict YAML document over cfg.
func parse(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.WrapWithCode(err, errors.CodeMalformedContent, "parse config")
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.MalformedContent("parse config: multiple YAML documents are not supported")
		}
		return errors.WrapWithCode(err, errors.CodeMalformedContent, "parse config")
	}
	return nil
}

// applyEnv overrides fields from QUIZSHOT_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"QUIZSHOT_DATA_DIR":  &cfg.DataDir,
		"QUIZSHOT_STORE":     &cfg.Store,
		"QUIZSHOT_LOG_FILE":  &cfg.LogFile,
		"QUIZSHOT_LOG_LEVEL": &cfg.LogLevel,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("QUIZSHOT_SEED"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.InvalidArgumentf("QUIZSHOT_SEED: %q is not an integer", v)
		}
		cfg.Seed = n
	}
	if v, ok := lookup("QUIZSHOT_FRAME_RATE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.InvalidArgumentf("QUIZSHOT_FRAME_RATE: %q is not an integer", v)
		}
		cfg.FrameRate = n
	}
	return nil
}

// SQLitePath is the database file used by the sqlite store.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, sqliteFileName)
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

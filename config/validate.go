package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Normalize trims and lowercases enumerations, expands a leading "~" and
// fills derived defaults.
func Normalize(cfg *Config) {
	cfg.DataDir = expandHome(strings.TrimSpace(cfg.DataDir))
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFile = expandHome(strings.TrimSpace(cfg.LogFile))

	if cfg.Store == "" {
		cfg.Store = StoreJSON
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFile == "" && cfg.DataDir != "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, logFileName)
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = DefaultFrameRate
	}
}

// Validate reports every invalid field at once.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, format string, args ...any) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.DataDir == "" {
		add("data_dir", "is required")
	}
	switch cfg.Store {
	case StoreJSON, StoreSQLite:
	default:
		add("store", "must be %q or %q, got %q", StoreJSON, StoreSQLite, cfg.Store)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		add("log_level", "must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	if cfg.FrameRate < 1 || cfg.FrameRate > 240 {
		add("frame_rate", "must be between 1 and 240, got %d", cfg.FrameRate)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Package logging configures the named go-log subsystem loggers used across
// the module.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	golog "github.com/ipfs/go-log/v2"

	"classical-quiz/internal/config"
)

// Setup routes every subsystem logger. When toFile is set, output goes to
// cfg.File only, so the full-screen UI keeps the terminal. Otherwise it goes
// to stderr.
func Setup(cfg config.LogConfig, toFile bool) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	out := golog.Config{
		Format: ParseFormat(cfg.Format),
		Level:  level,
		Stderr: true,
	}

	if toFile && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		out.Stderr = false
		out.File = cfg.File
	}

	golog.SetupLogging(out)
	return nil
}

func ParseLevel(level string) (golog.LogLevel, error) {
	if strings.TrimSpace(level) == "" {
		return golog.LevelInfo, nil
	}
	parsed, err := golog.LevelFromString(strings.ToLower(level))
	if err != nil {
		return golog.LevelInfo, fmt.Errorf("log level %q: %w", level, err)
	}
	return parsed, nil
}

// ParseFormat maps the configured name to a go-log output format. Unknown
// names fall back to plain text.
func ParseFormat(format string) golog.LogFormat {
	switch strings.ToLower(format) {
	case "color":
		return golog.ColorizedOutput
	case "json":
		return golog.JSONOutput
	default:
		return golog.PlaintextOutput
	}
}

// Package logger configures the tool's own structured logging. Server
// process output never goes through here; it is written by the child to its
// inherited log descriptor.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the optional diagnostics file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes the diagnostics destination. When File is set, output is
// rotated with lumberjack semantics; otherwise it goes to stderr with colors.
type Config struct {
	Level      string `mapstructure:"level"` // debug, info, warn, error
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New builds an slog.Logger from the config.
func New(c Config) *slog.Logger {
	level := parseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}

	if c.File != "" {
		var w io.Writer = &lj.Logger{
			Filename:   c.File,
			MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   c.Compress,
		}
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(NewColorTextHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

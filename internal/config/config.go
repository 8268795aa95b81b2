// Package config loads the tool's settings file. All settings are optional;
// sensible defaults apply on first run with no file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/mcpctl/internal/errdef"
	"github.com/loykin/mcpctl/internal/logger"
)

const (
	settingsFileName = "config.toml"
	logsDirName      = "logs"
)

// Settings are the tool-level knobs, persisted at <base>/config.toml.
type Settings struct {
	BaseDir       string        `mapstructure:"-"`
	StopTimeout   time.Duration `mapstructure:"stop_timeout"`
	Settle        time.Duration `mapstructure:"settle"`
	TailLines     int           `mapstructure:"tail_lines"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	HistoryDSN    string        `mapstructure:"history_dsn"` // e.g. sqlite:///home/me/.mcp/history.db
	Log           logger.Config `mapstructure:"log"`
}

// DefaultBaseDir returns the per-user state directory.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mcp"
	}
	return filepath.Join(home, ".mcp")
}

// LogsDir returns the per-user logs directory under base.
func LogsDir(base string) string { return filepath.Join(base, logsDirName) }

func defaults(base string) Settings {
	return Settings{
		BaseDir:       base,
		StopTimeout:   10 * time.Second,
		Settle:        1 * time.Second,
		TailLines:     50,
		HealthTimeout: 30 * time.Second,
	}
}

// Load reads <base>/config.toml when present and merges it over the defaults.
// A missing file is the normal first-run case; a malformed one is a
// configuration error.
func Load(base string) (Settings, error) {
	if base == "" {
		base = DefaultBaseDir()
	}
	s := defaults(base)

	path := filepath.Join(base, settingsFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errdef.Config(fmt.Errorf("stat %s: %w", path, err))
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return s, errdef.Config(fmt.Errorf("read %s: %w", path, err))
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, errdef.Config(fmt.Errorf("parse %s: %w", path, err))
	}
	s.BaseDir = base
	if s.StopTimeout <= 0 {
		s.StopTimeout = 10 * time.Second
	}
	if s.Settle <= 0 {
		s.Settle = 1 * time.Second
	}
	if s.TailLines <= 0 {
		s.TailLines = 50
	}
	if s.HealthTimeout <= 0 {
		s.HealthTimeout = 30 * time.Second
	}
	return s, nil
}

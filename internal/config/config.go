// Package config provides configuration management for gshcomp.
// Settings are read from a TOML file and may be overridden by environment
// variables; anything left unset falls back to DefaultConfig.
package config

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxResults is the hard upper bound on the number of completions returned.
const MaxResults = 20

// Config holds all gshcomp settings.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	// MaxResults caps the final completion list. Clamped to [1, MaxResults].
	MaxResults int `toml:"max_results"`

	// SourceLimit caps how many candidates a single source may contribute.
	SourceLimit int `toml:"source_limit"`

	// ContextTTLSeconds is how long git/project detection is cached per directory.
	ContextTTLSeconds int `toml:"context_ttl_seconds"`

	// HistoryLimit caps how many history lines are considered.
	HistoryLimit int `toml:"history_limit"`

	// HistoryFiles lists shell history files to import, "~" is expanded.
	HistoryFiles []string `toml:"history_files"`

	// Colors enables colored output when stdout is a terminal.
	Colors bool `toml:"colors"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		MaxResults:        MaxResults,
		SourceLimit:       50,
		ContextTTLSeconds: 5,
		HistoryLimit:      1000,
		HistoryFiles:      []string{"~/.bash_history", "~/.zsh_history"},
		Colors:            true,
	}
}

// ContextTTL returns the context cache TTL as a duration.
func (c *Config) ContextTTL() time.Duration {
	return time.Duration(c.ContextTTLSeconds) * time.Second
}

// ZapLevel parses LogLevel, defaulting to info for unknown values.
func (c *Config) ZapLevel() zap.AtomicLevel {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}

// normalize clamps out-of-range values back into their valid ranges.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.MaxResults < 1 || c.MaxResults > MaxResults {
		c.MaxResults = MaxResults
	}
	if c.SourceLimit < 1 {
		c.SourceLimit = defaults.SourceLimit
	}
	if c.ContextTTLSeconds < 0 {
		c.ContextTTLSeconds = defaults.ContextTTLSeconds
	}
	if c.HistoryLimit < 1 {
		c.HistoryLimit = defaults.HistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

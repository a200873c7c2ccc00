package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

const (
	// ConfigEnvVar points at an alternative config file.
	ConfigEnvVar = "GSHCOMP_CONFIG"
	// LogLevelEnvVar overrides log_level.
	LogLevelEnvVar = "GSHCOMP_LOG_LEVEL"
)

// Loader reads configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// ResolvePath returns the config path from the environment, or fallback.
func ResolvePath(fallback string) string {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path
	}
	return fallback
}

// LoadFromFile loads configuration from a TOML file.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		l.logger.Debug("config file not found, using defaults", zap.String("path", path))
		cfg.applyEnv()
		cfg.normalize()
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		l.logger.Warn("unknown config key", zap.String("key", key.String()))
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// LoadFromString decodes configuration from TOML text.
func (l *Loader) LoadFromString(source string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(source, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv(LogLevelEnvVar); level != "" {
		c.LogLevel = level
	}
}

// Package config loads seeker configuration from YAML files, the
// environment, and CLI flags, merged in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the search-run history store.
type HistoryConfig struct {
	// Enabled records each search run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents seeker configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// MaxDepth bounds recursion depth (0 = unbounded)
	MaxDepth int `yaml:"max_depth"`

	// Exclude lists subtrees pruned from every search
	Exclude []string `yaml:"exclude"`

	// History contains history store configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		MaxDepth: 0, // Unbounded
		Exclude:  nil,
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".seeker", "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// Environment variables (optionally loaded from a .env file) override the
// file; CLI flags are merged on top by the caller via MergeWithFlags.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, fall through to env overrides.
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Unmarshalling over the defaults loses them for keys set to the zero
	// value on purpose, so backfill only what YAML cannot distinguish.
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = DefaultConfig().History.DBPath
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadConfigFromDir loads configuration from .seeker/config.yaml in the
// specified directory. A missing directory or file yields the defaults.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".seeker", "config.yaml"))
}

// applyEnv overlays SEEKER_* environment variables. A .env file in the
// working directory is loaded first if present; real environment variables
// still win over .env entries (godotenv never overwrites existing vars).
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SEEKER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SEEKER_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := os.Getenv("SEEKER_HISTORY_DB"); v != "" {
		c.History.DBPath = v
	}
	if v := os.Getenv("SEEKER_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.History.Enabled = b
		}
	}
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, so CLI flags take
// precedence over both the config file and the environment.
func (c *Config) MergeWithFlags(logLevel *string, maxDepth *int, exclude *[]string, noHistory *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if maxDepth != nil {
		c.MaxDepth = *maxDepth
	}
	if exclude != nil && len(*exclude) > 0 {
		// Flag exclusions extend the configured set rather than replacing
		// it, so a config default like .git keeps applying.
		c.Exclude = append(c.Exclude, *exclude...)
	}
	if noHistory != nil && *noHistory {
		c.History.Enabled = false
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

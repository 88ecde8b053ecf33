// Package config provides YAML-based configuration loading for gym2048,
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Seed     uint64       `yaml:"seed"`      // 0 = time-based
	DBPath   string       `yaml:"db_path"`   // SQLite path, ~ expanded
	LogLevel string       `yaml:"log_level"` // debug, info, warn, error
	Runner   RunnerConfig `yaml:"runner"`
	Watch    WatchConfig  `yaml:"watch"`
}

// RunnerConfig controls the random-action episode driver.
type RunnerConfig struct {
	Env      string `yaml:"env"`       // registry ID
	Episodes int    `yaml:"episodes"`  // episodes to play
	Workers  int    `yaml:"workers"`   // environments played in parallel
	MaxMoves int    `yaml:"max_moves"` // 0 = until the game ends
}

// WatchConfig controls the terminal renderer.
type WatchConfig struct {
	DelayMS  int  `yaml:"delay_ms"` // autoplay delay between moves
	Autoplay bool `yaml:"autoplay"` // play starts with random actions running
}

// Delay returns the autoplay delay as a duration.
func (w WatchConfig) Delay() time.Duration {
	return time.Duration(w.DelayMS) * time.Millisecond
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Runner.Env == "" {
		errs = append(errs, errors.New("runner.env must not be empty"))
	}
	if c.Runner.Episodes < 1 {
		errs = append(errs, fmt.Errorf("runner.episodes must be at least 1, got %d", c.Runner.Episodes))
	}
	if c.Runner.Workers < 1 {
		errs = append(errs, fmt.Errorf("runner.workers must be at least 1, got %d", c.Runner.Workers))
	}
	if c.Runner.MaxMoves < 0 {
		errs = append(errs, fmt.Errorf("runner.max_moves must not be negative, got %d", c.Runner.MaxMoves))
	}
	if c.Watch.DelayMS < 0 {
		errs = append(errs, fmt.Errorf("watch.delay_ms must not be negative, got %d", c.Watch.DelayMS))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

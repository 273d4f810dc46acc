// Package config provides YAML-based configuration loading for the
// Logic Reflect player and server.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config contains all tunable settings.
type Config struct {
	TickIntervalMs  int    `yaml:"tick_interval_ms"`
	TeleportDelayMs int    `yaml:"teleport_delay_ms"`
	Pace            Pace   `yaml:"pace,omitempty"`
	DBPath          string `yaml:"db_path"`
	LevelsDir       string `yaml:"levels_dir"`
	LogLevel        string `yaml:"log_level"`
	RankingSize     int    `yaml:"ranking_size"`
}

// TickInterval returns the tick cadence as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// TeleportDelay returns the teleport suspension as a duration.
func (c Config) TeleportDelay() time.Duration {
	return time.Duration(c.TeleportDelayMs) * time.Millisecond
}

// Validation errors.
var (
	ErrTickInterval  = errors.New("tick_interval_ms must be positive")
	ErrTeleportDelay = errors.New("teleport_delay_ms must not be negative")
	ErrRankingSize   = errors.New("ranking_size must be positive")
)

// Validate rejects settings the run controller cannot use.
func (c Config) Validate() error {
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("%w: %d", ErrTickInterval, c.TickIntervalMs)
	}
	if c.TeleportDelayMs < 0 {
		return fmt.Errorf("%w: %d", ErrTeleportDelay, c.TeleportDelayMs)
	}
	if c.RankingSize <= 0 {
		return fmt.Errorf("%w: %d", ErrRankingSize, c.RankingSize)
	}
	if c.Pace != "" && !c.Pace.Valid() {
		return fmt.Errorf("unknown pace %q", c.Pace)
	}
	return nil
}

// Pace represents a named tick speed.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceNormal Pace = "normal"
	PaceFast   Pace = "fast"
)

// Valid reports whether p is a known preset.
func (p Pace) Valid() bool {
	switch p {
	case PaceSlow, PaceNormal, PaceFast:
		return true
	default:
		return false
	}
}

// TickIntervalForPace returns the tick interval in milliseconds for a preset.
func TickIntervalForPace(p Pace) int {
	switch p {
	case PaceSlow:
		return 500
	case PaceFast:
		return 150
	default:
		return 300
	}
}

// ApplyPace modifies the config based on a pace preset.
func ApplyPace(cfg *Config, p Pace) {
	cfg.Pace = p
	cfg.TickIntervalMs = TickIntervalForPace(p)
}

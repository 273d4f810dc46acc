package config

import (
	_ "embed"
)

//go:embed defaults/reflect.yaml
var defaultYAML []byte

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		TickIntervalMs:  300,
		TeleportDelayMs: 500,
		Pace:            PaceNormal,
		DBPath:          "~/.reflect/reflect.db",
		LevelsDir:       "~/.reflect/levels",
		LogLevel:        "info",
		RankingSize:     10,
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

package config

import (
	_ "embed"
)

//go:embed defaults/gym2048.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration. It mirrors
// defaults/gym2048.yaml and is used if the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Seed:     0,
		DBPath:   "~/.gym2048/gym2048.db",
		LogLevel: "info",
		Runner: RunnerConfig{
			Env:      "2048-v0",
			Episodes: 1,
			Workers:  1,
			MaxMoves: 0,
		},
		Watch: WatchConfig{
			DelayMS:  500,
			Autoplay: false,
		},
	}
}

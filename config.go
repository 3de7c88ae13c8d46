package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/jshorfjr/veloce/hw/apu"
)

// Config is the optional TOML configuration of the headless runner.
type Config struct {
	Emulation struct {
		Frames int `toml:"frames"`
	} `toml:"emulation"`

	Audio struct {
		// "average" (boxcar + low-pass, the default) or "blip"
		// (band-limited synthesis).
		Sync string `toml:"sync"`
	} `toml:"audio"`

	Input struct {
		// Scripted input, same syntax as --press: "Start:30-40".
		Press []string `toml:"press"`
	} `toml:"input"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) syncMode() (apu.SyncMode, error) {
	switch cfg.Audio.Sync {
	case "", "average":
		return apu.SyncAverage, nil
	case "blip":
		return apu.SyncBlip, nil
	}
	return 0, fmt.Errorf("unknown audio sync mode %q", cfg.Audio.Sync)
}

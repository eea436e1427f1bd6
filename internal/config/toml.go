// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Timing    TimingConfig    `toml:"timing"`
	Storage   StorageConfig   `toml:"storage"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Rounds        *int    `toml:"rounds"`
	RetryOnMiss   *bool   `toml:"retry-on-miss"`
	RequireOnTime *bool   `toml:"require-on-time"`
	MaxOperand    *int    `toml:"max-operand"`
	MinResult     *int    `toml:"min-result"`
	MaxResult     *int    `toml:"max-result"`
	Ops           *string `toml:"ops"`
	Sentences     *string `toml:"sentences"`
	MaxWords      *int    `toml:"max-words"`
	Format        *string `toml:"format"`
	FocusWeak     *bool   `toml:"focus-weak"`
	WeakTop       *int    `toml:"weak-top"`
	WeakWindow    *int    `toml:"weak-window"`
}

// SchedulerConfig maps item selection settings.
type SchedulerConfig struct {
	Width         *int     `toml:"width"`
	Jitter        *float64 `toml:"jitter"`
	RecencyWeight *float64 `toml:"recency-weight"`
	Seed          *int64   `toml:"seed"`
}

// TimingConfig maps time budgets and rewards.
type TimingConfig struct {
	CharsPerSecond *float64 `toml:"chars-per-second"`
	BaseSeconds    *float64 `toml:"base-seconds"`
	RewardOnTime   *float64 `toml:"reward-on-time"`
	RewardSlow     *float64 `toml:"reward-slow"`
	RewardTooSlow  *float64 `toml:"reward-too-slow"`
}

// StorageConfig maps persistence settings.
type StorageConfig struct {
	Backend  *string `toml:"backend"`
	DBPath   *string `toml:"db"`
	PerfPath *string `toml:"performance"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

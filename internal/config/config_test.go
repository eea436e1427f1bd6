package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config must not fail: %v", err)
	}
	if cfg.Practice.Rounds != nil || cfg.Storage.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
rounds = 12
retry-on-miss = true
ops = "*/"

[scheduler]
width = 6
jitter = 0.05
seed = 42

[timing]
chars-per-second = 2.5

[storage]
backend = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.Rounds == nil || *cfg.Practice.Rounds != 12 {
		t.Fatalf("unexpected rounds %v", cfg.Practice.Rounds)
	}
	if cfg.Practice.RetryOnMiss == nil || !*cfg.Practice.RetryOnMiss {
		t.Fatalf("expected retry-on-miss")
	}
	if cfg.Practice.MaxOperand != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if cfg.Scheduler.Width == nil || *cfg.Scheduler.Width != 6 || *cfg.Scheduler.Seed != 42 {
		t.Fatalf("unexpected scheduler section %+v", cfg.Scheduler)
	}
	if *cfg.Timing.CharsPerSecond != 2.5 || *cfg.Storage.Backend != "json" {
		t.Fatalf("unexpected timing/storage sections")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "drill", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "drill", "drill.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultPerfPath(); got != filepath.Join("/data", "drill", "performance.json") {
		t.Fatalf("unexpected performance path %q", got)
	}
	if got := DefaultSentencesPath(); got != filepath.Join("/cfg", "drill", "sentences.txt") {
		t.Fatalf("unexpected sentences path %q", got)
	}
}

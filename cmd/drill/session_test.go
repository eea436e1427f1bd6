package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/drill/internal/drill"
	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/perf"
	"github.com/verte-zerg/drill/internal/store"
)

func testConfig(t *testing.T, mode model.Mode) model.Config {
	t.Helper()
	dir := t.TempDir()
	return model.Config{
		Mode:           mode,
		Rounds:         2,
		Width:          defaultWidth,
		Jitter:         defaultJitter,
		RecencyWeight:  defaultRecencyWeight,
		Seed:           3,
		Format:         "plain",
		MaxOperand:     2,
		MinResult:      4,
		MaxResult:      4,
		Ops:            "*",
		CharsPerSecond: defaultCharsPerSecond,
		BaseSeconds:    defaultBaseSeconds,
		RewardOnTime:   defaultRewardOnTime,
		RewardSlow:     defaultRewardSlow,
		RewardTooSlow:  defaultRewardTooSlow,
		WeakTop:        defaultWeakTop,
		WeakWindow:     defaultWeakWindow,
		PerfBackend:    "sqlite",
		PerfPath:       filepath.Join(dir, "performance.json"),
		DBPath:         filepath.Join(dir, "drill.db"),
	}
}

func TestMathSession(t *testing.T) {
	cfg := testConfig(t, model.ModeMath)
	items, err := buildMathPool(cfg)
	if err != nil {
		t.Fatalf("buildMathPool: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only 2 x 2, got %d items", len(items))
	}

	var out bytes.Buffer
	if err := runSession(context.Background(), cfg, items, strings.NewReader("4\n5\n"), &out); err != nil {
		t.Fatalf("runSession: %v", err)
	}
	text := out.String()
	for _, want := range []string{"[1] 2 x 2", "correct", "[2] 2 x 2", "[wrong: 2 x 2 = 4]", "Answered 2: 1 correct, 1 missed"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, model.StatsConfig{Mode: model.ModeMath})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Attempts != 2 || sessions[0].Correct != 1 {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
	data, err := st.LoadPerformance(ctx)
	if err != nil {
		t.Fatalf("load performance: %v", err)
	}
	rec := perf.Load(data, 0).GetOrCreate(items[0].Key())
	if rec.Total != 2 || rec.Correct != 1 {
		t.Fatalf("unexpected stored record %+v", rec)
	}
}

func TestDefaultMathPoolKeepsClassicGrid(t *testing.T) {
	cfg := testConfig(t, model.ModeMath)
	cfg.MaxOperand = defaultMaxOperand
	cfg.MinResult = defaultMinResult
	cfg.MaxResult = defaultMaxResult
	items, err := buildMathPool(cfg)
	if err != nil {
		t.Fatalf("buildMathPool: %v", err)
	}
	var sawLow, sawHigh bool
	for _, it := range items {
		r := it.(*drill.ArithmeticItem).Result()
		if r < 10 || r > 50 {
			t.Fatalf("%s = %d is outside [10, 50]", it.Prompt(), r)
		}
		sawLow = sawLow || r == 10
		sawHigh = sawHigh || r == 49
	}
	if !sawLow || !sawHigh {
		t.Fatalf("expected 2 x 5 and 7 x 7 in the default pool")
	}
}

func TestSessionRetryAndQuit(t *testing.T) {
	cfg := testConfig(t, model.ModeMath)
	cfg.RetryOnMiss = true
	cfg.Rounds = 0
	cfg.PerfBackend = "json"
	items, err := buildMathPool(cfg)
	if err != nil {
		t.Fatalf("buildMathPool: %v", err)
	}

	var out bytes.Buffer
	if err := runSession(context.Background(), cfg, items, strings.NewReader("3\n4\nq\n"), &out); err != nil {
		t.Fatalf("runSession: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "[again] 2 x 2") || !strings.Contains(text, "Answered 2: 0 correct, 2 missed") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	data, err := os.ReadFile(cfg.PerfPath)
	if err != nil {
		t.Fatalf("expected json performance file: %v", err)
	}
	if rec := perf.Load(data, 0).GetOrCreate(items[0].Key()); rec.Total != 2 || rec.Correct != 0 {
		t.Fatalf("unexpected stored record %+v", rec)
	}
}

func TestReadSession(t *testing.T) {
	cfg := testConfig(t, model.ModeRead)
	cfg.Rounds = 1
	cfg.SentencesPath = filepath.Join(t.TempDir(), "sentences.txt")
	cfg.MaxWords = 3
	if err := os.WriteFile(cfg.SentencesPath, []byte("# test\nAla ma kota.\nOla i Ela mają psa.\n"), 0o644); err != nil {
		t.Fatalf("write sentences: %v", err)
	}
	items, err := buildReadPool(cfg)
	if err != nil {
		t.Fatalf("buildReadPool: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected max-words to keep one sentence, got %d", len(items))
	}

	var out bytes.Buffer
	if err := runSession(context.Background(), cfg, items, strings.NewReader("ala ma kita\n"), &out); err != nil {
		t.Fatalf("runSession: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Ala ma [kota.]") || !strings.Contains(text, "kota. -> kita") {
		t.Fatalf("unexpected output:\n%s", text)
	}
}

func TestFocusWeakFallsBackToFullPool(t *testing.T) {
	cfg := testConfig(t, model.ModeMath)
	cfg.FocusWeak = true
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	items := []drill.Item{drill.MustArithmetic(2, 2, drill.Mul), drill.MustArithmetic(3, 3, drill.Mul)}
	if got := focusWeak(context.Background(), st, cfg, items); len(got) != 2 {
		t.Fatalf("expected full pool without stats, got %d", len(got))
	}
}

func TestScoreCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"score", "--format", "html", "Ala ma kota.", "ala ma psa"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("score: %v", err)
	}
	want := "Ala ma <span style='background-color: #FF0000'>kota.</span>\n"
	if !strings.HasPrefix(out.String(), want) {
		t.Fatalf("unexpected score output %q", out.String())
	}
	if !strings.Contains(out.String(), "accuracy 0.67 (2/3)") {
		t.Fatalf("unexpected score output %q", out.String())
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := testConfig(t, model.ModeRead)
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := cfg
	bad.PerfBackend = "redis"
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected backend error")
	}
	bad = cfg
	bad.CharsPerSecond = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected chars-per-second error")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drill", "config.toml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "[storage]") {
		t.Fatalf("template misses storage section:\n%s", data)
	}
}

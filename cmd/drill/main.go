// Package main provides the CLI entrypoint for drill.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/drill/internal/config"
	"github.com/verte-zerg/drill/internal/drill"
	"github.com/verte-zerg/drill/internal/evaluate"
	"github.com/verte-zerg/drill/internal/generator"
	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/render"
	"github.com/verte-zerg/drill/internal/sentences"
	"github.com/verte-zerg/drill/internal/stats"
	"github.com/verte-zerg/drill/internal/store"
)

const (
	defaultRounds         = 20
	defaultWidth          = 4
	defaultJitter         = 0.1
	defaultRecencyWeight  = 0.1
	defaultMaxOperand     = 9
	defaultMinResult      = 10
	defaultMaxResult      = 50
	defaultOps            = "*"
	defaultCharsPerSecond = 1.5
	defaultBaseSeconds    = 6.0
	defaultRewardOnTime   = 1.0
	defaultRewardSlow     = 0.5
	defaultRewardTooSlow  = 0.0
	defaultWeakTop        = 8
	defaultWeakWindow     = 20
	defaultCurveWindow    = 20
	defaultStatsTop       = 15
	defaultFormat         = "auto"
	defaultBackend        = "sqlite"
)

var (
	practiceRounds        int
	practiceWidth         int
	practiceJitter        float64
	practiceRecency       float64
	practiceSeed          int64
	practiceRetryOnMiss   bool
	practiceRequireOnTime bool
	practiceFormat        string
	practiceFocusWeak     bool
	practiceWeakTop       int
	practiceWeakWindow    int
	practiceBackend       string

	mathMaxOperand int
	mathMinResult  int
	mathMaxResult  int
	mathOps        string

	readSentences      string
	readMaxWords       int
	readFocus          string
	readCharsPerSecond float64
	readBaseSeconds    float64

	rewardOnTime  float64
	rewardSlow    float64
	rewardTooSlow float64

	scoreFormat string

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "drill",
		Short:         "Adaptive arithmetic and dictation drills",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newMathCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&practiceRounds, "rounds", defaultRounds, "items per session (0 = until EOF or q)")
	cmd.Flags().IntVar(&practiceWidth, "width", defaultWidth, "recent outcomes kept per item")
	cmd.Flags().Float64Var(&practiceJitter, "jitter", defaultJitter, "random spread added to item fitness (negative disables)")
	cmd.Flags().Float64Var(&practiceRecency, "recency-weight", defaultRecencyWeight, "urgency growth per round an item was not shown")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed (0 = clock)")
	cmd.Flags().BoolVar(&practiceRetryOnMiss, "retry-on-miss", false, "repeat a missed item until answered correctly")
	cmd.Flags().StringVar(&practiceFormat, "format", defaultFormat, "feedback format: auto, plain, ansi, html")
	cmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "limit the pool to weak items from recent sessions")
	cmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak items to focus on")
	cmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak items")
	cmd.Flags().StringVar(&practiceBackend, "backend", defaultBackend, "performance storage: sqlite or json")
	cmd.Flags().Float64Var(&rewardOnTime, "reward-on-time", defaultRewardOnTime, "reward for an answer within the time limit")
	cmd.Flags().Float64Var(&rewardSlow, "reward-slow", defaultRewardSlow, "reward for an answer within twice the time limit")
	cmd.Flags().Float64Var(&rewardTooSlow, "reward-too-slow", defaultRewardTooSlow, "reward for a later answer")
}

func newMathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "math",
		Short: "Practice arithmetic facts",
		Args:  cobra.NoArgs,
		RunE:  runMathCmd,
	}
	addSessionFlags(cmd)
	cmd.Flags().IntVar(&mathMaxOperand, "max-operand", defaultMaxOperand, "largest operand")
	cmd.Flags().IntVar(&mathMinResult, "min-result", defaultMinResult, "smallest result")
	cmd.Flags().IntVar(&mathMaxResult, "max-result", defaultMaxResult, "largest result")
	cmd.Flags().StringVar(&mathOps, "ops", defaultOps, "operators to practice, e.g. \"*/\"")
	cmd.Flags().BoolVar(&practiceRequireOnTime, "require-on-time", false, "count slow answers as misses")
	return cmd
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Practice dictation sentences",
		Args:  cobra.NoArgs,
		RunE:  runReadCmd,
	}
	addSessionFlags(cmd)
	cmd.Flags().StringVar(&readSentences, "sentences", "", "sentence file, one per line (default: XDG config dir)")
	cmd.Flags().IntVar(&readMaxWords, "max-words", 0, "skip sentences with more words (0 = no limit)")
	cmd.Flags().StringVar(&readFocus, "focus", "", "comma-separated words; keep sentences using any of them")
	cmd.Flags().Float64Var(&readCharsPerSecond, "chars-per-second", defaultCharsPerSecond, "expected reading pace")
	cmd.Flags().Float64Var(&readBaseSeconds, "base-seconds", defaultBaseSeconds, "fixed time added to every sentence")
	return cmd
}

func loadPracticeConfig(cmd *cobra.Command, mode model.Mode) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	p := fileCfg.Practice
	applyIntConfig(cmd, "rounds", &practiceRounds, p.Rounds)
	applyBoolConfig(cmd, "retry-on-miss", &practiceRetryOnMiss, p.RetryOnMiss)
	applyBoolConfig(cmd, "require-on-time", &practiceRequireOnTime, p.RequireOnTime)
	applyStringConfig(cmd, "format", &practiceFormat, p.Format)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	applyIntConfig(cmd, "max-operand", &mathMaxOperand, p.MaxOperand)
	applyIntConfig(cmd, "min-result", &mathMinResult, p.MinResult)
	applyIntConfig(cmd, "max-result", &mathMaxResult, p.MaxResult)
	applyStringConfig(cmd, "ops", &mathOps, p.Ops)
	applyStringConfig(cmd, "sentences", &readSentences, p.Sentences)
	applyIntConfig(cmd, "max-words", &readMaxWords, p.MaxWords)

	s := fileCfg.Scheduler
	applyIntConfig(cmd, "width", &practiceWidth, s.Width)
	applyFloatConfig(cmd, "jitter", &practiceJitter, s.Jitter)
	applyFloatConfig(cmd, "recency-weight", &practiceRecency, s.RecencyWeight)
	applyInt64Config(cmd, "seed", &practiceSeed, s.Seed)

	tm := fileCfg.Timing
	applyFloatConfig(cmd, "chars-per-second", &readCharsPerSecond, tm.CharsPerSecond)
	applyFloatConfig(cmd, "base-seconds", &readBaseSeconds, tm.BaseSeconds)
	applyFloatConfig(cmd, "reward-on-time", &rewardOnTime, tm.RewardOnTime)
	applyFloatConfig(cmd, "reward-slow", &rewardSlow, tm.RewardSlow)
	applyFloatConfig(cmd, "reward-too-slow", &rewardTooSlow, tm.RewardTooSlow)

	applyStringConfig(cmd, "backend", &practiceBackend, fileCfg.Storage.Backend)
	dbPath := config.DefaultDBPath()
	if fileCfg.Storage.DBPath != nil {
		dbPath = *fileCfg.Storage.DBPath
	}
	perfPath := config.DefaultPerfPath()
	if fileCfg.Storage.PerfPath != nil {
		perfPath = *fileCfg.Storage.PerfPath
	}
	sentencesPath := readSentences
	if sentencesPath == "" {
		sentencesPath = config.DefaultSentencesPath()
	}

	cfg := model.Config{
		Mode:           mode,
		Rounds:         practiceRounds,
		Width:          practiceWidth,
		Jitter:         practiceJitter,
		RecencyWeight:  practiceRecency,
		Seed:           practiceSeed,
		RetryOnMiss:    practiceRetryOnMiss,
		RequireOnTime:  practiceRequireOnTime,
		Format:         practiceFormat,
		MaxOperand:     mathMaxOperand,
		MinResult:      mathMinResult,
		MaxResult:      mathMaxResult,
		Ops:            mathOps,
		SentencesPath:  sentencesPath,
		MaxWords:       readMaxWords,
		Focus:          splitList(readFocus),
		CharsPerSecond: readCharsPerSecond,
		BaseSeconds:    readBaseSeconds,
		RewardOnTime:   rewardOnTime,
		RewardSlow:     rewardSlow,
		RewardTooSlow:  rewardTooSlow,
		FocusWeak:      practiceFocusWeak,
		WeakTop:        practiceWeakTop,
		WeakWindow:     practiceWeakWindow,
		PerfBackend:    strings.ToLower(strings.TrimSpace(practiceBackend)),
		PerfPath:       perfPath,
		DBPath:         dbPath,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runMathCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd, model.ModeMath)
	if err != nil {
		return err
	}
	items, err := buildMathPool(cfg)
	if err != nil {
		return err
	}
	return runSession(cmd.Context(), cfg, items, cmd.InOrStdin(), cmd.OutOrStdout())
}

func runReadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd, model.ModeRead)
	if err != nil {
		return err
	}
	items, err := buildReadPool(cfg)
	if err != nil {
		return err
	}
	return runSession(cmd.Context(), cfg, items, cmd.InOrStdin(), cmd.OutOrStdout())
}

func buildMathPool(cfg model.Config) ([]drill.Item, error) {
	ops, err := generator.ParseOps(cfg.Ops)
	if err != nil {
		return nil, fmt.Errorf("invalid --ops value: %w", err)
	}
	items, err := generator.Pools(ops, generator.RangeConfig{
		MaxOperand: cfg.MaxOperand,
		MinResult:  cfg.MinResult,
		MaxResult:  cfg.MaxResult,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build arithmetic pool: %w", err)
	}
	return items, nil
}

func buildReadPool(cfg model.Config) ([]drill.Item, error) {
	loaded, err := sentences.Load(cfg.SentencesPath)
	if err != nil {
		return nil, sentencesLoadError(cfg.SentencesPath, err)
	}
	kept := sentences.Filter(loaded, sentences.MaxWords(cfg.MaxWords), sentences.Containing(cfg.Focus))
	if len(kept) == 0 {
		return nil, fmt.Errorf("no sentence in %s passes --max-words and --focus", cfg.SentencesPath)
	}
	items := make([]drill.Item, len(kept))
	for i, it := range kept {
		items[i] = it
	}
	return items, nil
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score REFERENCE ANSWER",
		Short: "Mark the words of ANSWER that do not match REFERENCE",
		Args:  cobra.ExactArgs(2),
		RunE:  runScoreCmd,
	}
	cmd.Flags().StringVar(&scoreFormat, "format", defaultFormat, "output format: auto, plain, ansi, html")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format, err := render.ParseFormat(scoreFormat, out)
	if err != nil {
		return fmt.Errorf("invalid --format value: %w", err)
	}
	it, err := drill.NewDictation(args[0])
	if err != nil {
		return fmt.Errorf("invalid reference: %w", err)
	}
	res := evaluate.New(evaluate.Config{}).ScoreSentence(it, strings.Fields(args[1]), 0)
	lines := []string{render.Sentence(res.Marked, format, render.TerminalWidth(out))}
	lines = append(lines, render.Hints(res.Marked, format)...)
	lines = append(lines, fmt.Sprintf("accuracy %.2f (%d/%d)", res.Accuracy, res.CorrectWords, res.TotalWords))
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: math or read")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of weakest items to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	mode := model.Mode(strings.ToLower(strings.TrimSpace(statsMode)))
	switch mode {
	case "", model.ModeMath, model.ModeRead:
	default:
		return fmt.Errorf("--mode must be %q or %q", model.ModeMath, model.ModeRead)
	}

	cfg := model.StatsConfig{
		Mode:        mode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	storePath := config.DefaultDBPath()
	if fileCfg.Storage.DBPath != nil {
		storePath = *fileCfg.Storage.DBPath
	}
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := report.Render(cmd.OutOrStdout(), cfg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# drill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# rounds = %d               # Items per session (0 = until EOF or q)
# retry-on-miss = false     # Repeat a missed item until answered correctly
# require-on-time = false   # Count slow arithmetic answers as misses
# format = %q           # Feedback format: auto, plain, ansi, html
# max-operand = %d           # Largest arithmetic operand
# min-result = %d           # Smallest arithmetic result
# max-result = %d           # Largest arithmetic result
# ops = %q                 # Operators: * + - /
# sentences = "/path/to/sentences.txt"
# max-words = 0             # Skip longer sentences (0 = no limit)
# focus-weak = false        # Limit the pool to weak items
# weak-top = %d              # Number of weak items to focus on
# weak-window = %d          # Number of recent sessions to compute weak items

[scheduler]
# width = %d                 # Recent outcomes kept per item
# jitter = %.2f             # Random spread added to item fitness
# recency-weight = %.2f     # Urgency growth per round an item was not shown
# seed = 0                  # Random seed (0 = clock)

[timing]
# chars-per-second = %.1f   # Expected reading pace
# base-seconds = %.1f       # Fixed time added to every sentence
# reward-on-time = %.1f
# reward-slow = %.1f
# reward-too-slow = %.1f

[storage]
# backend = %q         # sqlite or json
# db = "/path/to/drill.db"
# performance = "/path/to/performance.json"
`,
		defaultRounds,
		defaultFormat,
		defaultMaxOperand,
		defaultMinResult,
		defaultMaxResult,
		defaultOps,
		defaultWeakTop,
		defaultWeakWindow,
		defaultWidth,
		defaultJitter,
		defaultRecencyWeight,
		defaultCharsPerSecond,
		defaultBaseSeconds,
		defaultRewardOnTime,
		defaultRewardSlow,
		defaultRewardTooSlow,
		defaultBackend,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Rounds < 0 {
		return fmt.Errorf("--rounds must be >= 0")
	}
	if cfg.Width <= 0 {
		return fmt.Errorf("--width must be > 0")
	}
	if cfg.RecencyWeight < 0 {
		return fmt.Errorf("--recency-weight must be >= 0")
	}
	if cfg.Mode == model.ModeRead {
		if cfg.CharsPerSecond <= 0 {
			return fmt.Errorf("--chars-per-second must be > 0")
		}
		if cfg.BaseSeconds < 0 {
			return fmt.Errorf("--base-seconds must be >= 0")
		}
		if cfg.MaxWords < 0 {
			return fmt.Errorf("--max-words must be >= 0")
		}
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	switch cfg.PerfBackend {
	case "sqlite", "json":
	default:
		return fmt.Errorf("--backend must be \"sqlite\" or \"json\"")
	}
	return nil
}

func sentencesLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load sentences: %v", err),
		fmt.Sprintf("expected sentences at: %s", path),
		"Write one sentence per line; lines starting with # are ignored.",
	}
	if errors.Is(err, os.ErrNotExist) {
		lines = append(lines, "Pass another file with: drill read --sentences <path>")
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

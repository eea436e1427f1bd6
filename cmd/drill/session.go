package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/drill/internal/drill"
	"github.com/verte-zerg/drill/internal/engine"
	"github.com/verte-zerg/drill/internal/evaluate"
	"github.com/verte-zerg/drill/internal/generator"
	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/perf"
	"github.com/verte-zerg/drill/internal/render"
	"github.com/verte-zerg/drill/internal/scheduler"
	"github.com/verte-zerg/drill/internal/stats"
	"github.com/verte-zerg/drill/internal/store"
)

const quitAnswer = "q"

type perfBackend interface {
	engine.Persister
	LoadPerformance(ctx context.Context) ([]byte, error)
}

func openPerfBackend(cfg model.Config, st *store.Store) perfBackend {
	if cfg.PerfBackend == "json" {
		return perf.File{Path: cfg.PerfPath}
	}
	return st
}

// runSession drills items read from in until the configured number of rounds
// is answered, the learner types q, or in is exhausted.
func runSession(ctx context.Context, cfg model.Config, items []drill.Item, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := render.ParseFormat(cfg.Format, out)
	if err != nil {
		return fmt.Errorf("invalid --format value: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	backend := openPerfBackend(cfg, st)
	data, err := backend.LoadPerformance(ctx)
	if err != nil {
		return fmt.Errorf("failed to load performance: %w", err)
	}
	ps := perf.Load(data, cfg.Width)

	if cfg.FocusWeak {
		items = focusWeak(ctx, st, cfg, items)
	}

	jitter := cfg.Jitter
	if jitter == 0 {
		jitter = -1
	}
	sched := scheduler.New(ps, scheduler.Config{
		Jitter:        jitter,
		RecencyWeight: cfg.RecencyWeight,
		Seed:          cfg.Seed,
	})
	sched.Add(items...)

	evalCfg := evaluate.Config{
		Rewards: &evaluate.Rewards{
			OnTime:  cfg.RewardOnTime,
			Slow:    cfg.RewardSlow,
			TooSlow: cfg.RewardTooSlow,
		},
		RequireOnTime: cfg.RequireOnTime,
	}
	if cfg.Mode == model.ModeRead {
		evalCfg.Budget = evaluate.LinearBudget(cfg.CharsPerSecond, time.Duration(cfg.BaseSeconds*float64(time.Second)))
	}

	started := time.Now()
	sessionID, _, err := st.BeginSession(ctx, model.SessionStats{Mode: cfg.Mode, StartedAt: started})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	eng := engine.New(sched, ps, evaluate.New(evalCfg), backend, engine.Config{
		RetryOnMiss: cfg.RetryOnMiss,
		SessionID:   sessionID,
		Log:         st,
	})

	if err := drillLoop(ctx, eng, cfg, format, in, out); err != nil {
		return err
	}

	totals := eng.Totals()
	ended := time.Now()
	err = st.EndSession(ctx, sessionID, model.SessionStats{
		EndedAt:     ended,
		Attempts:    totals.Attempts,
		Correct:     totals.Correct,
		AccuracySum: totals.AccuracySum,
		RewardSum:   totals.RewardSum,
		DurationMs:  ended.Sub(started).Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return writeTotals(out, totals)
}

func drillLoop(ctx context.Context, eng *engine.Engine, cfg model.Config, format render.Format, in io.Reader, out io.Writer) error {
	framer := generator.NewFramer(cfg.Seed)
	width := render.TerminalWidth(out)
	scanner := bufio.NewScanner(in)
	for round := 0; cfg.Rounds <= 0 || round < cfg.Rounds; {
		it, err := eng.Next()
		if err != nil {
			return fmt.Errorf("failed to pick next item: %w", err)
		}
		_, retry := eng.Current()
		label := fmt.Sprintf("%d", round+1)
		if retry {
			label = "again"
		}
		prompt := framer.Prompt(it)
		if _, err := fmt.Fprintf(out, "[%s] %s\n> ", label, render.WrapText(prompt, width)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		shown := time.Now()
		if !scanner.Scan() {
			break
		}
		answer := scanner.Text()
		if strings.TrimSpace(answer) == quitAnswer {
			break
		}
		outcome, err := eng.Submit(ctx, answer, time.Since(shown))
		if err != nil {
			logErrf("%v\n", err)
		}
		if _, err := fmt.Fprintln(out, render.Outcome(outcome, prompt, format, width)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if !retry {
			round++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}
	return nil
}

func focusWeak(ctx context.Context, st *store.Store, cfg model.Config, items []drill.Item) []drill.Item {
	aggs, err := st.GetWeakItems(ctx, cfg.WeakWindow, cfg.Mode)
	if err != nil {
		logErrf("failed to load weak items: %v\n", err)
		return items
	}
	weak := stats.SelectWeakItems(aggs, cfg.WeakTop)
	var kept []drill.Item
	for _, it := range items {
		if _, ok := weak[string(it.Key())]; ok {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		logErrln("no stats available for weak-item focus yet; using the full pool")
		return items
	}
	return kept
}

func writeTotals(out io.Writer, t engine.Totals) error {
	if t.Attempts == 0 {
		_, err := fmt.Fprintln(out, "\nNo answers recorded.")
		return err
	}
	_, err := fmt.Fprintf(out, "\nAnswered %d: %d correct, %d missed, mean accuracy %.0f%%, reward %.2f\n",
		t.Attempts,
		t.Correct,
		t.Incorrect,
		t.AccuracySum/float64(t.Attempts)*100,
		t.RewardSum,
	)
	return err
}

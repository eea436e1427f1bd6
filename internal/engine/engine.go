// Package engine runs a drill session: it asks the scheduler for an item,
// scores the answer and records the outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/drill/internal/drill"
	"github.com/verte-zerg/drill/internal/evaluate"
	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/perf"
	"github.com/verte-zerg/drill/internal/scheduler"
)

var (
	// ErrAttemptPending is returned by Next while the presented item has no
	// submitted answer.
	ErrAttemptPending = errors.New("engine: attempt pending")
	// ErrNoActiveItem is returned by Submit when no item was presented.
	ErrNoActiveItem = errors.New("engine: no active item")
)

// Persister saves the serialized performance store.
type Persister interface {
	SavePerformance(ctx context.Context, data []byte) error
}

// AttemptLog receives every answered item.
type AttemptLog interface {
	RecordAttempt(ctx context.Context, a model.Attempt) error
}

// Config configures an Engine.
type Config struct {
	// RetryOnMiss presents a missed item again until it is answered
	// correctly. Retries never count as correct.
	RetryOnMiss bool
	// SessionID is copied into logged attempts.
	SessionID int64
	// Log is optional.
	Log AttemptLog
	// Now defaults to time.Now.
	Now func() time.Time
}

// Totals accumulates session results.
type Totals struct {
	Attempts    int
	Correct     int
	Incorrect   int
	AccuracySum float64
	RewardSum   float64
}

// Engine is not safe for concurrent use.
type Engine struct {
	sched     *scheduler.Scheduler
	perf      *perf.Store
	eval      *evaluate.Evaluator
	persister Persister
	log       AttemptLog
	retry     bool
	sessionID int64
	now       func() time.Time

	current  drill.Item
	retrying bool
	again    drill.Item
	totals   Totals
}

// New returns an Engine. persister may be nil, in which case the store is
// only kept in memory.
func New(sched *scheduler.Scheduler, store *perf.Store, eval *evaluate.Evaluator, persister Persister, cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		sched:     sched,
		perf:      store,
		eval:      eval,
		persister: persister,
		log:       cfg.Log,
		retry:     cfg.RetryOnMiss,
		sessionID: cfg.SessionID,
		now:       now,
	}
}

// Next presents the next item. A missed item is presented again first when
// retries are enabled.
func (e *Engine) Next() (drill.Item, error) {
	if e.current != nil {
		return nil, ErrAttemptPending
	}
	if e.again != nil {
		e.current, e.again, e.retrying = e.again, nil, true
		return e.current, nil
	}
	it, err := e.sched.Next()
	if err != nil {
		return nil, err
	}
	e.current, e.retrying = it, false
	return it, nil
}

// Current returns the presented item and whether it is a retry.
func (e *Engine) Current() (drill.Item, bool) {
	return e.current, e.retrying
}

// Submit scores the answer to the presented item, records the outcome and
// saves the store. The outcome is valid even when saving fails.
func (e *Engine) Submit(ctx context.Context, answer string, elapsed time.Duration) (evaluate.Outcome, error) {
	it := e.current
	if it == nil {
		return evaluate.Outcome{}, ErrNoActiveItem
	}
	retrying := e.retrying
	e.current, e.retrying = nil, false

	out := e.eval.Evaluate(it, answer, elapsed)
	counted := out.Correct && !retrying
	e.perf.RecordOutcome(it.Key(), counted)
	if e.retry && !out.Correct {
		e.again = it
	}

	e.totals.Attempts++
	if counted {
		e.totals.Correct++
	} else {
		e.totals.Incorrect++
	}
	e.totals.AccuracySum += out.Accuracy
	e.totals.RewardSum += out.Reward

	var errs []error
	if err := e.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	if e.log != nil {
		if err := e.log.RecordAttempt(ctx, e.attempt(it, out, counted)); err != nil {
			errs = append(errs, fmt.Errorf("failed to log attempt: %w", err))
		}
	}
	return out, errors.Join(errs...)
}

// Flush saves the store if it changed since the last save.
func (e *Engine) Flush(ctx context.Context) error {
	if e.persister == nil || !e.perf.Dirty() {
		return nil
	}
	data, err := e.perf.Dump()
	if err != nil {
		return fmt.Errorf("failed to encode performance: %w", err)
	}
	if err := e.persister.SavePerformance(ctx, data); err != nil {
		return fmt.Errorf("failed to save performance: %w", err)
	}
	e.perf.MarkClean()
	return nil
}

// Totals returns the accumulated results.
func (e *Engine) Totals() Totals {
	return e.totals
}

func (e *Engine) attempt(it drill.Item, out evaluate.Outcome, counted bool) model.Attempt {
	return model.Attempt{
		SessionID:    e.sessionID,
		ItemKey:      string(it.Key()),
		Kind:         string(it.Kind()),
		Prompt:       it.Prompt(),
		Answer:       out.Answer,
		Correct:      counted,
		Accuracy:     out.Accuracy,
		CorrectWords: out.CorrectWords,
		TotalWords:   out.TotalWords,
		Tier:         out.Tier.String(),
		Reward:       out.Reward,
		ElapsedMs:    out.Elapsed.Milliseconds(),
		AnsweredAt:   e.now(),
	}
}

// Package evaluate scores answers to drill items.
package evaluate

import (
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/drill/internal/drill"
)

// Tier classifies how long an answer took relative to its budget.
type Tier int

const (
	// OnTime answers arrived within the budget.
	OnTime Tier = iota
	// Slow answers took between one and two budgets.
	Slow
	// TooSlow answers took two budgets or more.
	TooSlow
)

func (t Tier) String() string {
	switch t {
	case OnTime:
		return "on_time"
	case Slow:
		return "slow"
	case TooSlow:
		return "too_slow"
	default:
		return "unknown"
	}
}

// TierFor classifies elapsed against budget.
func TierFor(elapsed, budget time.Duration) Tier {
	switch {
	case elapsed < budget:
		return OnTime
	case elapsed < 2*budget:
		return Slow
	default:
		return TooSlow
	}
}

// Rewards maps tiers to credit multipliers.
type Rewards struct {
	OnTime  float64
	Slow    float64
	TooSlow float64
}

// DefaultRewards gives full, half and no credit.
var DefaultRewards = Rewards{OnTime: 1, Slow: 0.5, TooSlow: 0}

// For returns the multiplier of a tier.
func (r Rewards) For(t Tier) float64 {
	switch t {
	case OnTime:
		return r.OnTime
	case Slow:
		return r.Slow
	default:
		return r.TooSlow
	}
}

// BudgetFunc returns the time an item may take before it counts as slow.
type BudgetFunc func(drill.Item) time.Duration

// ItemBudget uses the item's own time limit.
func ItemBudget(it drill.Item) time.Duration {
	return it.TimeLimit()
}

// LinearBudget gives sentences base plus one second per charsPerSecond
// normalized letters. Other items keep their own limit.
func LinearBudget(charsPerSecond float64, base time.Duration) BudgetFunc {
	return func(it drill.Item) time.Duration {
		d, ok := it.(*drill.DictationItem)
		if !ok || charsPerSecond <= 0 {
			return it.TimeLimit()
		}
		n := utf8.RuneCountInString(d.Stream())
		return base + time.Duration(float64(n)/charsPerSecond*float64(time.Second))
	}
}

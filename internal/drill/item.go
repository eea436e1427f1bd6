// Package drill defines the exercises the engine schedules and scores.
package drill

import (
	"errors"
	"time"
)

// ErrConfiguration reports an item that cannot be drilled, such as an empty
// sentence or a division by zero. It is returned at construction time only.
var ErrConfiguration = errors.New("drill: invalid item configuration")

// Key identifies an item across process restarts.
type Key string

// Kind names an item variant.
type Kind string

const (
	// KindArithmetic is an arithmetic fact such as 6 x 7.
	KindArithmetic Kind = "arithmetic"
	// KindDictation is a sentence read aloud or typed back.
	KindDictation Kind = "dictation"
)

// Item is one exercise. The set of implementations is closed: callers switch
// on *ArithmeticItem and *DictationItem.
type Item interface {
	Key() Key
	Kind() Kind
	Difficulty() float64
	TimeLimit() time.Duration
	Prompt() string
	sealed()
}

// TimePolicy maps difficulty to an answer time limit.
type TimePolicy struct {
	Base    time.Duration
	PerUnit time.Duration
}

// Limit returns Base + PerUnit*difficulty.
func (p TimePolicy) Limit(difficulty float64) time.Duration {
	return p.Base + time.Duration(difficulty*float64(p.PerUnit))
}

var (
	// DefaultArithmeticTime gives 7s plus 18s per difficulty unit.
	DefaultArithmeticTime = TimePolicy{Base: 7 * time.Second, PerUnit: 18 * time.Second}
	// DefaultDictationTime gives 6s plus one second per 1.5 letters.
	DefaultDictationTime = TimePolicy{Base: 6 * time.Second, PerUnit: time.Second * 2 / 3}
)

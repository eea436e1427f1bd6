// Package model defines shared data structures.
package model

import "time"

// Mode names a practice mode.
type Mode string

const (
	// ModeMath drills arithmetic facts.
	ModeMath Mode = "math"
	// ModeRead drills dictation sentences.
	ModeRead Mode = "read"
)

// Config defines practice settings.
type Config struct {
	Mode          Mode
	Rounds        int
	Width         int
	Jitter        float64
	RecencyWeight float64
	Seed          int64
	RetryOnMiss   bool
	RequireOnTime bool
	Format        string

	MaxOperand int
	MinResult  int
	MaxResult  int
	Ops        string

	SentencesPath  string
	MaxWords       int
	Focus          []string
	CharsPerSecond float64
	BaseSeconds    float64

	RewardOnTime  float64
	RewardSlow    float64
	RewardTooSlow float64

	FocusWeak  bool
	WeakTop    int
	WeakWindow int

	PerfBackend string
	PerfPath    string
	DBPath      string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// SessionStats captures a practice session.
type SessionStats struct {
	UUID        string
	Mode        Mode
	StartedAt   time.Time
	EndedAt     time.Time
	Attempts    int
	Correct     int
	AccuracySum float64
	RewardSum   float64
	DurationMs  int64
}

// Attempt is one answered item.
type Attempt struct {
	SessionID    int64
	ItemKey      string
	Kind         string
	Prompt       string
	Answer       string
	Correct      bool
	Accuracy     float64
	CorrectWords int
	TotalWords   int
	Tier         string
	Reward       float64
	ElapsedMs    int64
	AnsweredAt   time.Time
}

// ItemAggregate aggregates attempts of one item across sessions.
type ItemAggregate struct {
	ItemKey      string
	Prompt       string
	Correct      int
	Incorrect    int
	AccuracySum  float64
	ElapsedSumMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID   int64
	EndedAt     time.Time
	Attempts    int
	Correct     int
	AccuracySum float64
	RewardSum   float64
	DurationMs  int64
}

// Package scheduler picks the next item to drill, favouring items the learner
// gets wrong.
package scheduler

import (
	"errors"
	"math/rand"
	"time"

	"github.com/verte-zerg/drill/internal/drill"
	"github.com/verte-zerg/drill/internal/perf"
)

// ErrEmptyPool is returned by Next when no items were added.
var ErrEmptyPool = errors.New("scheduler: empty pool")

// DefaultJitter is the half-width of the random term added to fitness.
const DefaultJitter = 0.1

// Config configures a Scheduler. Zero values select defaults.
type Config struct {
	Jitter        float64 // zero → DefaultJitter; negative → no jitter
	RecencyWeight float64 // zero → recency is ignored
	Seed          int64   // zero → seeded from the clock
}

type entry struct {
	item drill.Item
	last int
}

// Scheduler holds the item pool and the epoch counter.
type Scheduler struct {
	perf    *perf.Store
	pool    []*entry
	index   map[drill.Key]int
	epoch   int
	jitter  float64
	recency float64
	rnd     *rand.Rand
}

// New returns a Scheduler reading outcomes from store.
func New(store *perf.Store, cfg Config) *Scheduler {
	jitter := cfg.Jitter
	switch {
	case jitter == 0:
		jitter = DefaultJitter
	case jitter < 0:
		jitter = 0
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Scheduler{
		perf:    store,
		index:   map[drill.Key]int{},
		jitter:  jitter,
		recency: cfg.RecencyWeight,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Add appends items to the pool and registers them in the store. An item
// whose key is already in the pool is skipped. Add returns how many items
// were new.
func (s *Scheduler) Add(items ...drill.Item) int {
	added := 0
	for _, it := range items {
		key := it.Key()
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = len(s.pool)
		s.pool = append(s.pool, &entry{item: it})
		s.perf.Register(key)
		added++
	}
	return added
}

// Len returns the pool size.
func (s *Scheduler) Len() int {
	return len(s.pool)
}

// Epoch returns the number of Next calls that returned an item.
func (s *Scheduler) Epoch() int {
	return s.epoch
}

// Items returns the pool in insertion order.
func (s *Scheduler) Items() []drill.Item {
	out := make([]drill.Item, len(s.pool))
	for i, e := range s.pool {
		out[i] = e.item
	}
	return out
}

// LastPresented returns the epoch at which key was last returned by Next,
// or 0 if it never was.
func (s *Scheduler) LastPresented(key drill.Key) (int, bool) {
	idx, ok := s.index[key]
	if !ok {
		return 0, false
	}
	return s.pool[idx].last, true
}

// Urgency returns the jitter-free need of an item. Higher is more urgent.
func (s *Scheduler) Urgency(key drill.Key) float64 {
	idx, ok := s.index[key]
	if !ok {
		return 0
	}
	return s.urgency(s.pool[idx])
}

func (s *Scheduler) urgency(e *entry) float64 {
	need := s.perf.GetOrCreate(e.item.Key()).Need()
	if s.recency == 0 {
		return need
	}
	return need * (1 + s.recency*float64(s.epoch-e.last))
}

// fitness is lower for items that should be presented sooner.
func (s *Scheduler) fitness(e *entry) float64 {
	return -s.urgency(e) + (2*s.rnd.Float64()-1)*s.jitter
}

// Next selects the item with the lowest fitness. Ties go to the item added
// first. Next must not be called again before the outcome of the previous
// item has been recorded.
func (s *Scheduler) Next() (drill.Item, error) {
	if len(s.pool) == 0 {
		return nil, ErrEmptyPool
	}
	best := s.pool[0]
	bestFit := s.fitness(best)
	for _, e := range s.pool[1:] {
		if f := s.fitness(e); f < bestFit {
			best, bestFit = e, f
		}
	}
	s.epoch++
	best.last = s.epoch
	return best.item, nil
}

// Package perf keeps the per-item history of correct and incorrect answers.
package perf

// DefaultWidth is the number of recent outcomes kept per item.
const DefaultWidth = 4

// Record is the history of one item.
type Record struct {
	Recent  []bool
	Correct int
	Total   int
}

func newRecord(width int) *Record {
	return &Record{Recent: make([]bool, width)}
}

func (r *Record) push(correct bool) {
	if len(r.Recent) > 0 {
		copy(r.Recent, r.Recent[1:])
		r.Recent[len(r.Recent)-1] = correct
	}
	r.Total++
	if correct {
		r.Correct++
	}
}

func (r *Record) clone() Record {
	return Record{
		Recent:  append([]bool(nil), r.Recent...),
		Correct: r.Correct,
		Total:   r.Total,
	}
}

// ShortTermRate is the share of correct answers in the recent window.
func (r Record) ShortTermRate() float64 {
	if len(r.Recent) == 0 {
		return 0
	}
	n := 0
	for _, ok := range r.Recent {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(r.Recent))
}

// LongTermRate is the lifetime share of correct answers.
func (r Record) LongTermRate() float64 {
	return float64(r.Correct) / float64(max(1, r.Total))
}

// Performance blends the short and long term rates evenly.
func (r Record) Performance() float64 {
	return 0.5*r.LongTermRate() + 0.5*r.ShortTermRate()
}

// Need is how urgently the item wants practice, in [0, 1].
func (r Record) Need() float64 {
	return 1 - r.Performance()
}

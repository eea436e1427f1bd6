package perf

import (
	"sort"

	"github.com/verte-zerg/drill/internal/drill"
)

// Store maps item keys to their records. It is not safe for concurrent use.
type Store struct {
	width   int
	records map[drill.Key]*Record
	dirty   bool
}

// New returns an empty store keeping width recent outcomes per item.
// A non-positive width selects DefaultWidth.
func New(width int) *Store {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Store{width: width, records: map[drill.Key]*Record{}}
}

// Width returns the recent history length.
func (s *Store) Width() int {
	return s.width
}

// GetOrCreate returns a copy of the record for key, creating a zeroed one
// when the key is new.
func (s *Store) GetOrCreate(key drill.Key) Record {
	return s.entry(key).clone()
}

// Lookup returns a copy of the record for key if it exists.
func (s *Store) Lookup(key drill.Key) (Record, bool) {
	rec, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Register creates zeroed records for keys that have none.
func (s *Store) Register(keys ...drill.Key) {
	for _, k := range keys {
		s.entry(k)
	}
}

// RecordOutcome appends an outcome to the recent window, evicting the
// oldest, updates the lifetime counters and marks the store dirty.
func (s *Store) RecordOutcome(key drill.Key, correct bool) {
	s.entry(key).push(correct)
	s.dirty = true
}

// Dirty reports whether outcomes were recorded since the last MarkClean.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkClean clears the dirty flag after a flush.
func (s *Store) MarkClean() {
	s.dirty = false
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Keys returns the keys in sorted order.
func (s *Store) Keys() []drill.Key {
	keys := make([]drill.Key, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Records returns a copy of every record.
func (s *Store) Records() map[drill.Key]Record {
	out := make(map[drill.Key]Record, len(s.records))
	for k, rec := range s.records {
		out[k] = rec.clone()
	}
	return out
}

func (s *Store) entry(key drill.Key) *Record {
	rec, ok := s.records[key]
	if !ok {
		rec = newRecord(s.width)
		s.records[key] = rec
	}
	return rec
}

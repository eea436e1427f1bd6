package perf

import (
	"encoding/json"

	"github.com/verte-zerg/drill/internal/drill"
)

// Load decodes a store serialized by Dump. Entries may also use the legacy
// form that stored only the recent history. Input that cannot be decoded
// yields an empty store; a single malformed entry yields a zeroed record.
func Load(data []byte, width int) *Store {
	s := New(width)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s
	}
	for key, msg := range raw {
		rec, ok := decodeEntry(msg, s.width)
		if !ok {
			rec = newRecord(s.width)
		}
		s.records[drill.Key(key)] = rec
	}
	return s
}

// Dump encodes the store as {key: [correct, total, [recent...]]}.
func (s *Store) Dump() ([]byte, error) {
	out := make(map[string][3]any, len(s.records))
	for k, rec := range s.records {
		out[string(k)] = [3]any{rec.Correct, rec.Total, rec.Recent}
	}
	return json.MarshalIndent(out, "", "  ")
}

func decodeEntry(msg json.RawMessage, width int) (*Record, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(msg, &parts); err != nil {
		return nil, false
	}
	if history, ok := decodeFlags(parts); ok {
		rec := &Record{Total: len(history)}
		for _, v := range history {
			if v {
				rec.Correct++
			}
		}
		rec.Recent = window(history, width)
		return rec, true
	}
	if len(parts) != 3 {
		return nil, false
	}
	var correct, total int
	var history []json.RawMessage
	if json.Unmarshal(parts[0], &correct) != nil ||
		json.Unmarshal(parts[1], &total) != nil ||
		json.Unmarshal(parts[2], &history) != nil {
		return nil, false
	}
	if correct < 0 || correct > total {
		return nil, false
	}
	flags, ok := decodeFlags(history)
	if !ok {
		return nil, false
	}
	return &Record{Recent: window(flags, width), Correct: correct, Total: total}, true
}

// decodeFlags accepts booleans and, as older files did, 0/1 numbers.
func decodeFlags(parts []json.RawMessage) ([]bool, bool) {
	out := make([]bool, 0, len(parts))
	for _, p := range parts {
		var b bool
		if err := json.Unmarshal(p, &b); err == nil {
			out = append(out, b)
			continue
		}
		var n float64
		if err := json.Unmarshal(p, &n); err != nil {
			return nil, false
		}
		out = append(out, n != 0)
	}
	return out, true
}

// window keeps the newest width flags, padding the oldest end with false.
func window(flags []bool, width int) []bool {
	out := make([]bool, width)
	if len(flags) > width {
		flags = flags[len(flags)-width:]
	}
	copy(out[width-len(flags):], flags)
	return out
}

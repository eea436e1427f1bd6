package perf

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/verte-zerg/drill/internal/drill"
)

func TestGetOrCreateReturnsZeroedRecord(t *testing.T) {
	s := New(0)
	rec := s.GetOrCreate("arith:*:3:7")
	if len(rec.Recent) != DefaultWidth {
		t.Fatalf("expected %d recent slots, got %d", DefaultWidth, len(rec.Recent))
	}
	for _, v := range rec.Recent {
		if v {
			t.Fatalf("expected all-false history, got %v", rec.Recent)
		}
	}
	if rec.Correct != 0 || rec.Total != 0 {
		t.Fatalf("expected zero counters, got %+v", rec)
	}
	if rec.Need() != 1 {
		t.Fatalf("expected need 1 for a fresh record, got %v", rec.Need())
	}
	if s.Dirty() {
		t.Fatalf("creating a record must not dirty the store")
	}
}

func TestRecordOutcomeKeepsFixedWindow(t *testing.T) {
	s := New(4)
	key := drill.Key("k")
	for _, v := range []bool{true, false, true, true, true} {
		s.RecordOutcome(key, v)
	}
	rec := s.GetOrCreate(key)
	want := []bool{false, true, true, true}
	if !reflect.DeepEqual(rec.Recent, want) {
		t.Fatalf("recent = %v, want %v", rec.Recent, want)
	}
	if rec.Correct != 4 || rec.Total != 5 {
		t.Fatalf("counters = %d/%d, want 4/5", rec.Correct, rec.Total)
	}
	if !s.Dirty() {
		t.Fatalf("expected store to be dirty")
	}
	s.MarkClean()
	if s.Dirty() {
		t.Fatalf("expected store to be clean")
	}
}

func TestRecordRates(t *testing.T) {
	rec := Record{Recent: []bool{true, true, false, false}, Correct: 9, Total: 10}
	if rec.ShortTermRate() != 0.5 {
		t.Fatalf("short term = %v", rec.ShortTermRate())
	}
	if rec.LongTermRate() != 0.9 {
		t.Fatalf("long term = %v", rec.LongTermRate())
	}
	if got := rec.Performance(); math.Abs(got-0.7) > 1e-12 {
		t.Fatalf("performance = %v", got)
	}
}

func TestGetOrCreateReturnsCopy(t *testing.T) {
	s := New(4)
	rec := s.GetOrCreate("k")
	rec.Recent[0] = true
	rec.Total = 10
	again := s.GetOrCreate("k")
	if again.Recent[0] || again.Total != 0 {
		t.Fatalf("mutating a returned record leaked into the store: %+v", again)
	}
}

func TestDumpLoadRoundTrip(t *testing.T) {
	s := New(4)
	s.Register("a", "b")
	s.RecordOutcome("a", true)
	s.RecordOutcome("a", false)
	s.RecordOutcome("c", true)

	data, err := s.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	loaded := Load(data, 4)
	if !reflect.DeepEqual(loaded.Records(), s.Records()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded.Records(), s.Records())
	}
	if loaded.Dirty() {
		t.Fatalf("a loaded store starts clean")
	}
}

func TestLoadLegacyHistory(t *testing.T) {
	data := []byte(`{"3 x 7": [true, false, true, true], "2 x 2": [1, 0]}`)
	s := Load(data, 4)
	rec := s.GetOrCreate("3 x 7")
	if rec.Correct != 3 || rec.Total != 4 {
		t.Fatalf("legacy counters = %d/%d, want 3/4", rec.Correct, rec.Total)
	}
	if !reflect.DeepEqual(rec.Recent, []bool{true, false, true, true}) {
		t.Fatalf("unexpected recent %v", rec.Recent)
	}
	short := s.GetOrCreate("2 x 2")
	if !reflect.DeepEqual(short.Recent, []bool{false, false, true, false}) {
		t.Fatalf("expected short history to be padded, got %v", short.Recent)
	}
	if short.Correct != 1 || short.Total != 2 {
		t.Fatalf("unexpected counters %+v", short)
	}
}

func TestLoadRewindowsLongHistory(t *testing.T) {
	s := Load([]byte(`{"k": [5, 6, [false, true, true, true, true, true]]}`), 4)
	rec := s.GetOrCreate("k")
	if !reflect.DeepEqual(rec.Recent, []bool{true, true, true, true}) {
		t.Fatalf("unexpected recent %v", rec.Recent)
	}
	if rec.Correct != 5 || rec.Total != 6 {
		t.Fatalf("unexpected counters %+v", rec)
	}
}

func TestLoadGarbageYieldsEmptyStore(t *testing.T) {
	for _, in := range []string{"", "not json", "[1,2,3]", "null", `{"k": `} {
		s := Load([]byte(in), 4)
		if s.Len() != 0 {
			t.Fatalf("Load(%q) produced %d records", in, s.Len())
		}
	}
}

func TestLoadMalformedEntryFallsBackToZeroed(t *testing.T) {
	data := []byte(`{"bad": "x", "neg": [5, 2, [true]], "short": [1, 2], "ok": [1, 1, [false, false, false, true]]}`)
	s := Load(data, 4)
	if s.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", s.Len())
	}
	for _, key := range []drill.Key{"bad", "neg"} {
		rec := s.GetOrCreate(key)
		if rec.Total != 0 || rec.Correct != 0 || len(rec.Recent) != 4 {
			t.Fatalf("expected zeroed record for %q, got %+v", key, rec)
		}
	}
	if rec := s.GetOrCreate("ok"); rec.Correct != 1 || rec.Total != 1 {
		t.Fatalf("unexpected ok record %+v", rec)
	}
}

func TestKeysSorted(t *testing.T) {
	s := New(4)
	s.Register("b", "c", "a")
	got := s.Keys()
	want := []drill.Key{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "performance.json")
	f := File{Path: path}
	ctx := context.Background()

	data, err := f.LoadPerformance(ctx)
	if err != nil {
		t.Fatalf("LoadPerformance on missing file: %v", err)
	}
	if s := Load(data, 4); s.Len() != 0 {
		t.Fatalf("expected empty store from missing file")
	}

	s := New(4)
	s.RecordOutcome("k", true)
	blob, err := s.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if err := f.SavePerformance(ctx, blob); err != nil {
		t.Fatalf("SavePerformance: %v", err)
	}
	s.RecordOutcome("k", false)
	blob, err = s.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if err := f.SavePerformance(ctx, blob); err != nil {
		t.Fatalf("SavePerformance overwrite: %v", err)
	}

	data, err = f.LoadPerformance(ctx)
	if err != nil {
		t.Fatalf("LoadPerformance: %v", err)
	}
	if !reflect.DeepEqual(Load(data, 4).Records(), s.Records()) {
		t.Fatalf("file round trip mismatch")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

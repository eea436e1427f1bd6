package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/drill/internal/model"
)

func TestAttemptMetrics(t *testing.T) {
	acc, reward, pace := AttemptMetrics(model.SessionAggregate{Attempts: 4, Correct: 3, RewardSum: 2, DurationMs: 120000})
	if acc != 0.75 || reward != 0.5 || pace != 2 {
		t.Fatalf("unexpected metrics %v %v %v", acc, reward, pace)
	}
	acc, reward, pace = AttemptMetrics(model.SessionAggregate{})
	if acc != 0 || reward != 0 || pace != 0 {
		t.Fatalf("expected zero metrics for empty session")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("MovingAverage = %v, want %v", got, want)
		}
	}
	if got := MovingAverage([]float64{5, 6}, 1); got[0] != 5 || got[1] != 6 {
		t.Fatalf("window 1 must copy values, got %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderItemTableWeakestFirst(t *testing.T) {
	aggs := []model.ItemAggregate{
		{ItemKey: "arith:*:2:2", Prompt: "2 x 2", Correct: 4, Incorrect: 0, AccuracySum: 4, ElapsedSumMs: 4000},
		{ItemKey: "arith:*:7:8", Prompt: "7 x 8", Correct: 1, Incorrect: 3, AccuracySum: 1, ElapsedSumMs: 20000},
	}
	var buf bytes.Buffer
	if err := RenderItemTable(&buf, aggs, 1); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "7 x 8") || strings.Contains(out, "2 x 2") {
		t.Fatalf("expected only the weakest item:\n%s", out)
	}
	if !strings.Contains(out, "25.00%") || !strings.Contains(out, "5.0") {
		t.Fatalf("unexpected figures:\n%s", out)
	}
}

func TestSelectWeakItems(t *testing.T) {
	aggs := []model.ItemAggregate{
		{ItemKey: "a", Correct: 4, Incorrect: 0},
		{ItemKey: "b", Correct: 1, Incorrect: 3},
		{ItemKey: "c", Correct: 2, Incorrect: 2},
	}
	weak := SelectWeakItems(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak items, got %v", weak)
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := weak[k]; !ok {
			t.Fatalf("expected %q in weak set %v", k, weak)
		}
	}
	if all := SelectWeakItems(aggs, 0); len(all) != 2 {
		t.Fatalf("perfect items are never weak, got %v", all)
	}
}

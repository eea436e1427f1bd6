package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "drill.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		id, _, err := st.BeginSession(ctx, model.SessionStats{Mode: model.ModeMath, StartedAt: start})
		if err != nil {
			t.Fatalf("begin session: %v", err)
		}
		for j, ok := range []bool{true, false} {
			err := st.RecordAttempt(ctx, model.Attempt{
				SessionID:  id,
				ItemKey:    "arith:*:6:7",
				Kind:       "arithmetic",
				Prompt:     "6 x 7",
				Correct:    ok,
				TotalWords: 1,
				Tier:       "on_time",
				ElapsedMs:  2000,
				AnsweredAt: start.Add(time.Duration(j) * time.Second),
			})
			if err != nil {
				t.Fatalf("record attempt: %v", err)
			}
		}
		err = st.EndSession(ctx, id, model.SessionStats{
			EndedAt:     end,
			Attempts:    2,
			Correct:     1,
			AccuracySum: 1,
			RewardSum:   2,
			DurationMs:  end.Sub(start).Milliseconds(),
		})
		if err != nil {
			t.Fatalf("end session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Mode:        model.ModeMath,
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window session ids %v", report.WindowSessionIDs)
	}
	if len(report.ItemAggsAll) != 1 || report.ItemAggsAll[0].Correct != 2 || report.ItemAggsAll[0].Incorrect != 2 {
		t.Fatalf("unexpected aggregates for all sessions %+v", report.ItemAggsAll)
	}
	if len(report.ItemAggsWindow) != 1 || report.ItemAggsWindow[0].Correct != 1 {
		t.Fatalf("unexpected aggregates for window sessions %+v", report.ItemAggsWindow)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, cfg); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Avg Accuracy: 50.00%", "Learning Curves", "6 x 7", "Most Practised (All)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestBuildReportEmpty(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	report, err := BuildReport(context.Background(), st, model.StatsConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, model.StatsConfig{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

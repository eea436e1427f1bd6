// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/drill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AttemptMetrics computes the share of correct answers, the mean reward and
// the answering pace in items per minute for a session.
func AttemptMetrics(s model.SessionAggregate) (accuracy, reward, perMinute float64) {
	if s.Attempts <= 0 {
		return 0, 0, 0
	}
	n := float64(s.Attempts)
	accuracy = float64(s.Correct) / n
	reward = s.RewardSum / n
	if s.DurationMs > 0 {
		perMinute = n / (float64(s.DurationMs) / 60000.0)
	}
	return accuracy, reward, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalReward, totalPace float64
	attempts := 0
	bestAcc := 0.0
	for _, s := range sessions {
		acc, reward, pace := AttemptMetrics(s)
		totalAcc += acc
		totalReward += reward
		totalPace += pace
		attempts += s.Attempts
		if acc > bestAcc {
			bestAcc = acc
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Attempts: %d", attempts),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Avg Reward: %.2f", totalReward/count),
		fmt.Sprintf("Avg Pace: %.2f items/min", totalPace/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints accuracy and reward trends as smoothed sparklines.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	rewards := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, reward, _ := AttemptMetrics(s)
		accs[i] = acc * 100
		rewards[i] = reward
	}
	accs = MovingAverage(accs, window)
	rewards = MovingAverage(rewards, window)

	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	rows := [][]string{
		{"Accuracy", "|" + Sparkline(accs) + "|", fmt.Sprintf("%.1f%%", accs[len(accs)-1])},
		{"Reward", "|" + Sparkline(rewards) + "|", fmt.Sprintf("%.2f", rewards[len(rewards)-1])},
	}
	for _, line := range formatTable(nil, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderItemTable prints per-item aggregates, weakest first.
func RenderItemTable(w io.Writer, aggs []model.ItemAggregate, limit int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No item stats found.")
		return err
	}
	rows := make([]model.ItemAggregate, len(aggs))
	copy(rows, aggs)
	sortWeakestFirst(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	if _, err := fmt.Fprintln(w, "Per-Item (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Item", "Correct %", "Avg Accuracy", "Avg Time (s)", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		total := r.Correct + r.Incorrect
		avgAcc, avgTime := 0.0, 0.0
		if total > 0 {
			avgAcc = r.AccuracySum / float64(total)
			avgTime = float64(r.ElapsedSumMs) / float64(total) / 1000
		}
		tableRows = append(tableRows, []string{
			itemLabel(r),
			fmt.Sprintf("%.2f%%", accuracy(r)*100),
			fmt.Sprintf("%.2f", avgAcc),
			fmt.Sprintf("%.1f", avgTime),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

const maxLabelWidth = 40

func itemLabel(agg model.ItemAggregate) string {
	label := agg.Prompt
	if label == "" {
		label = agg.ItemKey
	}
	return truncate(label, maxLabelWidth)
}

func sortWeakestFirst(aggs []model.ItemAggregate) {
	sort.SliceStable(aggs, func(i, j int) bool {
		ai := accuracy(aggs[i])
		aj := accuracy(aggs[j])
		if ai == aj {
			return aggs[i].ItemKey < aggs[j].ItemKey
		}
		return ai < aj
	})
}

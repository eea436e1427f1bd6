package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/drill/internal/model"
)

// TopItemsByFrequency returns the keys of the N most practised items.
func TopItemsByFrequency(aggs []model.ItemAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	type item struct {
		key   string
		total int
	}
	items := make([]item, 0, len(aggs))
	for _, agg := range aggs {
		items = append(items, item{
			key:   agg.ItemKey,
			total: agg.Correct + agg.Incorrect,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].key < items[j].key
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].key)
	}
	return out
}

// RenderTopItems lists the most practised items with their attempt counts.
func RenderTopItems(w io.Writer, aggs []model.ItemAggregate, limit int) error {
	if limit <= 0 {
		limit = len(aggs)
	}
	keys := TopItemsByFrequency(aggs, limit)
	if len(keys) == 0 {
		return nil
	}
	byKey := make(map[string]model.ItemAggregate, len(aggs))
	for _, agg := range aggs {
		byKey[agg.ItemKey] = agg
	}

	if _, err := fmt.Fprintln(w, "Most Practised (All)"); err != nil {
		return err
	}
	headers := []string{"Item", "Attempts", "Correct %"}
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		agg := byKey[key]
		rows = append(rows, []string{
			itemLabel(agg),
			fmt.Sprintf("%d", agg.Correct+agg.Incorrect),
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

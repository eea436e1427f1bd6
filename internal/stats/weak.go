package stats

import (
	"github.com/verte-zerg/drill/internal/model"
)

// SelectWeakItems selects the keys of the lowest-accuracy items.
func SelectWeakItems(aggs []model.ItemAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.ItemAggregate, len(aggs))
	copy(candidates, aggs)
	sortWeakestFirst(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		if accuracy(candidates[i]) >= 1 {
			break
		}
		weakSet[candidates[i].ItemKey] = struct{}{}
	}
	return weakSet
}

func accuracy(agg model.ItemAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

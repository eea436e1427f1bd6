package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/drill/internal/model"
	"github.com/verte-zerg/drill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	ItemAggsAll      []model.ItemAggregate
	ItemAggsWindow   []model.ItemAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	itemAggsAll, err := st.ListItemAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	itemAggsWindow, err := st.ListItemAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		ItemAggsAll:      itemAggsAll,
		ItemAggsWindow:   itemAggsWindow,
	}, nil
}

// Render writes the summary, the curves, the weakest items and the most
// practised ones.
func (r Report) Render(w io.Writer, cfg model.StatsConfig) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := RenderItemTable(w, r.ItemAggsWindow, cfg.Top); err != nil {
		return err
	}
	return RenderTopItems(w, r.ItemAggsAll, cfg.Top)
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}

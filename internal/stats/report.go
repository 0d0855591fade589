// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/keydrill/keydrill/internal/model"
	"github.com/keydrill/keydrill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions    []model.SessionAggregate
	CharAggsAll []model.CharAggregate
	Mistakes    []model.MistakeAggregate
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
	charAggsAll, err := st.ListCharAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	mistakes, err := st.ListMistakesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:    sessions,
		CharAggsAll: charAggsAll,
		Mistakes:    mistakes,
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

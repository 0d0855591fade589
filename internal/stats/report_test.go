package stats

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/keydrill/keydrill/internal/model"
	"github.com/keydrill/keydrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "keydrill.db")
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
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		rec := model.SessionRecord{
			UUID:       fmt.Sprintf("uuid-%d", i),
			StartedAt:  start,
			EndedAt:    end,
			Lang:       "en",
			Difficulty: "medium",
			Words:      10,
			Keystrokes: 55,
			Correct:    50,
			Incorrect:  5,
			Errors:     5,
			Backspaces: 2,
			Accuracy:   90.9,
			WPM:        20,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		charStats := []model.CharStats{
			{Char: "a", Correct: 5, Incorrect: 0},
			{Char: "b", Correct: 4, Incorrect: 1},
		}
		mistakes := []model.MistakeStats{
			{Expected: "b", Received: "v", Count: 1},
		}
		id, err := st.InsertSession(ctx, rec, charStats, mistakes)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Lang:        "en",
		Last:        2,
		CurveWindow: 2,
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
	if len(report.CharAggsAll) == 0 {
		t.Fatalf("expected char aggregates for all sessions")
	}
	if len(report.Mistakes) != 1 {
		t.Fatalf("expected 1 mistake pattern, got %d", len(report.Mistakes))
	}
	if report.Mistakes[0].Expected != "b" || report.Mistakes[0].Count != 2 {
		t.Fatalf("unexpected mistake aggregate: %+v", report.Mistakes[0])
	}
}

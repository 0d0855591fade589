package statsui

import (
	"strings"
	"testing"

	"github.com/keydrill/keydrill/internal/model"
)

func TestBuildMistakeRows(t *testing.T) {
	rows := buildMistakeRows([]model.MistakeAggregate{
		{Expected: "e", Received: "r", Count: 4},
		{Expected: " ", Received: "b", Count: 2},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "e" || rows[0][1] != "r" || rows[0][2] != "4" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "<space>" {
		t.Fatalf("expected space label, got %q", rows[1][0])
	}
}

func TestBuildCharRowsSortsByTotal(t *testing.T) {
	rows := buildCharRows([]model.CharAggregate{
		{Char: "a", Correct: 1, Incorrect: 0},
		{Char: "b", Correct: 8, Incorrect: 2},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "b" {
		t.Fatalf("expected most-typed char first, got %q", rows[0][0])
	}
	if rows[0][1] != "80.00%" {
		t.Fatalf("unexpected accuracy cell: %q", rows[0][1])
	}
}

func TestRenderOverviewShowsTrend(t *testing.T) {
	sessions := make([]model.SessionAggregate, 0, 10)
	for i := 0; i < 10; i++ {
		acc := 95.0
		if i >= 5 {
			acc = 80
		}
		sessions = append(sessions, model.SessionAggregate{Difficulty: "medium", Correct: 100, Accuracy: acc, WPM: 30, DurationMs: 60000})
	}
	out := renderOverview(sessions, 1, 120)
	if !strings.Contains(out, "Accuracy trend: declining") {
		t.Fatalf("expected trend line in overview: %s", out)
	}
}

func TestRenderSummaryCardsIncludesDifficulty(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Difficulty: "easy", Correct: 100, Accuracy: 90, WPM: 30, DurationMs: 60000},
		{Difficulty: "hard", Correct: 120, Accuracy: 95, WPM: 40, DurationMs: 60000},
	}
	out := renderSummaryCards(sessions, 120)
	if !strings.Contains(out, "Difficulty") || !strings.Contains(out, "hard") {
		t.Fatalf("expected difficulty card with latest level: %s", out)
	}
	if !strings.Contains(out, "Best WPM") || !strings.Contains(out, "40.0") {
		t.Fatalf("expected best wpm card: %s", out)
	}
}

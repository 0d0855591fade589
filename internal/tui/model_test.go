package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keydrill/keydrill/internal/engine"
	"github.com/keydrill/keydrill/internal/generator"
	"github.com/keydrill/keydrill/internal/model"
	"github.com/keydrill/keydrill/internal/store"
)

func newTestModel(t *testing.T, cfg model.Config, lessonText string) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}
	})
	controller := engine.NewDifficultyController(engine.LevelMedium)
	m, err := NewModel(cfg, st, generator.NewWithSeed(1), []string{"word"}, lessonText, nil, nil, false, controller)
	if err != nil {
		t.Fatalf("failed to create model: %v", err)
	}
	return m
}

func baseConfig() model.Config {
	return model.Config{
		Lang:                     "en",
		CapsPct:                  -1,
		PunctPct:                 -1,
		MaxErrors:                -1,
		AllowBackspace:           true,
		AllowBackspaceAfterError: true,
	}
}

func TestModelDoneViewShowsTrend(t *testing.T) {
	cfg := baseConfig()
	cfg.AutoAdvance = true
	m := newTestModel(t, cfg, "abcdefghij")

	m.handleRunes([]rune("abcde"))
	m.handleRunes([]rune("zzzzz"))
	if m.state != stateDone {
		t.Fatalf("expected done state, got %v", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "accuracy ") {
		t.Fatalf("expected accuracy sparkline in done view: %s", view)
	}
	if !strings.Contains(view, "declining") {
		t.Fatalf("expected trend in done view: %s", view)
	}
}

func TestModelCompletesLessonAndSaves(t *testing.T) {
	m := newTestModel(t, baseConfig(), "hi")
	m.handleRunes([]rune("hi"))
	if m.state != stateDone {
		t.Fatalf("expected done state, got %v", m.state)
	}
	if !m.hasLast {
		t.Fatalf("expected footer stats after save")
	}
	if m.summary.CorrectCharacters != 2 {
		t.Fatalf("expected 2 correct characters, got %d", m.summary.CorrectCharacters)
	}

	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 saved session, got %d", len(sessions))
	}
	if sessions[0].Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", sessions[0].Accuracy)
	}
	if sessions[0].Difficulty != "medium" {
		t.Fatalf("expected difficulty medium, got %q", sessions[0].Difficulty)
	}
}

func TestModelUnmetCriteriaHoldsSession(t *testing.T) {
	cfg := baseConfig()
	cfg.MinAccuracy = 90
	m := newTestModel(t, cfg, "ab")

	m.handleRunes([]rune{'x'})
	if m.session.Position() != 0 {
		t.Fatalf("expected mismatch to hold position, got %d", m.session.Position())
	}
	m.handleRunes([]rune("ab"))

	if m.state != stateTyping {
		t.Fatalf("expected session to stay in typing state")
	}
	if m.session.Status() != engine.StatusActive {
		t.Fatalf("expected active session, got %v", m.session.Status())
	}
	found := false
	for _, name := range m.unmet {
		if name == "min_accuracy" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected min_accuracy in unmet criteria: %v", m.unmet)
	}
}

func TestModelEscapePausesAndResumes(t *testing.T) {
	m := newTestModel(t, baseConfig(), "hello")
	m.handleRunes([]rune{'h'})
	if m.session.Status() != engine.StatusActive {
		t.Fatalf("expected active session after first rune")
	}

	m.handleEscape()
	if m.state != statePaused || m.session.Status() != engine.StatusPaused {
		t.Fatalf("expected paused session, got state %v status %v", m.state, m.session.Status())
	}

	m.handleEscape()
	if m.state != stateTyping || m.session.Status() != engine.StatusActive {
		t.Fatalf("expected resumed session, got state %v status %v", m.state, m.session.Status())
	}
}

func TestModelTimedSessionFinishesOnTick(t *testing.T) {
	cfg := baseConfig()
	cfg.Timed = time.Minute
	m := newTestModel(t, cfg, "")
	if m.countdown == nil {
		t.Fatalf("expected countdown for timed config")
	}

	m.handleRunes(m.targetRunes[:1])
	if !m.countdown.Running() {
		t.Fatalf("expected countdown to start with typing")
	}

	m.handleTick(tickMsg{seq: m.tickSeq, at: time.Now().Add(2 * time.Minute)})
	if m.state != stateDone {
		t.Fatalf("expected done state after countdown expiry, got %v", m.state)
	}
	if !m.countdown.Done() {
		t.Fatalf("expected countdown done")
	}
	if m.session.Status() != engine.StatusComplete {
		t.Fatalf("expected complete session, got %v", m.session.Status())
	}
}

func TestModelDropsStaleTicks(t *testing.T) {
	m := newTestModel(t, baseConfig(), "hello")
	m.handleRunes([]rune{'h'})

	_, cmd := m.handleTick(tickMsg{seq: m.tickSeq - 1, at: time.Now()})
	if cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}
	_, cmd = m.handleTick(tickMsg{seq: m.tickSeq, at: time.Now()})
	if cmd == nil {
		t.Fatalf("expected live tick to reschedule")
	}
}

func TestModelBackspaceLimitNotice(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxBackspaces = 1
	m := newTestModel(t, cfg, "hello")
	m.handleRunes([]rune("he"))

	m.handleBackspace()
	if m.limitHit {
		t.Fatalf("limit notice should not fire while budget remains")
	}
	m.handleBackspace()
	if !m.limitHit {
		t.Fatalf("expected limit notice after exhausting budget")
	}
}

func TestModelEnterStartsNextDrill(t *testing.T) {
	m := newTestModel(t, baseConfig(), "hi")
	m.handleRunes([]rune("hi"))
	if m.state != stateDone {
		t.Fatalf("expected done state")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateTyping {
		t.Fatalf("expected typing state after enter")
	}
	if m.session.Status() != engine.StatusNotStarted {
		t.Fatalf("expected fresh session, got %v", m.session.Status())
	}
	if m.session.Position() != 0 {
		t.Fatalf("expected position reset, got %d", m.session.Position())
	}
}

package engine

import "testing"

func TestAccuracyCounters(t *testing.T) {
	m := NewAccuracyModel()
	if m.Current() != 100 {
		t.Fatalf("expected 100 with no attempts, got %v", m.Current())
	}
	m.RecordCorrect(0, at(0))
	m.RecordIncorrect(1, 'a', 'x', at(100))
	if m.TotalAttempts() != 2 || m.CorrectAttempts() != 1 || m.IncorrectAttempts() != 1 {
		t.Fatalf("unexpected counters: %d %d %d",
			m.TotalAttempts(), m.CorrectAttempts(), m.IncorrectAttempts())
	}
	if m.Current() != 50 {
		t.Fatalf("expected 50, got %v", m.Current())
	}
}

func TestAccuracySampleRingEvictsOldest(t *testing.T) {
	m := NewAccuracyModel()
	for i := 0; i < sampleCapacity+10; i++ {
		m.RecordCorrect(i, at(i))
	}
	samples := m.Samples()
	if len(samples) != sampleCapacity {
		t.Fatalf("expected %d samples, got %d", sampleCapacity, len(samples))
	}
	if !samples[0].At.Equal(at(10)) {
		t.Fatalf("expected the oldest samples evicted, first at %v", samples[0].At)
	}
	if !samples[len(samples)-1].At.Equal(at(sampleCapacity + 9)) {
		t.Fatalf("unexpected newest sample at %v", samples[len(samples)-1].At)
	}
}

func TestAccuracyAverageTracksSamples(t *testing.T) {
	m := NewAccuracyModel()
	m.RecordCorrect(0, at(0))
	m.RecordIncorrect(1, 'a', 'b', at(100))
	// Samples hold the running accuracy: 100 then 50.
	if m.Average() != 75 {
		t.Fatalf("expected mean of samples 75, got %v", m.Average())
	}
}

func TestAccuracyForRange(t *testing.T) {
	m := NewAccuracyModel()
	m.RecordCorrect(0, at(0))
	m.RecordIncorrect(1, 'b', 'x', at(100))
	m.RecordCorrect(1, at(200))
	m.RecordCorrect(2, at(300))
	if got := m.AccuracyForRange(1, 1); got != 50 {
		t.Fatalf("expected 50 for position 1, got %v", got)
	}
	if got := m.AccuracyForRange(0, 2); got != 75 {
		t.Fatalf("expected 75 overall, got %v", got)
	}
	if got := m.AccuracyForRange(10, 20); got != 100 {
		t.Fatalf("expected 100 for an empty range, got %v", got)
	}
}

func TestMostCommonErrorsOrdering(t *testing.T) {
	m := NewAccuracyModel()
	m.RecordIncorrect(0, 'a', 'q', at(0))
	m.RecordIncorrect(1, 'b', 'w', at(100))
	m.RecordIncorrect(2, 'b', 'w', at(200))
	m.RecordIncorrect(3, 'c', 'e', at(300))

	patterns := m.MostCommonErrors(0)
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(patterns))
	}
	if patterns[0].Expected != 'b' || patterns[0].Received != 'w' || patterns[0].Count != 2 {
		t.Fatalf("unexpected top pattern: %+v", patterns[0])
	}
	// a→q and c→e tie at one; the first seen ranks higher.
	if patterns[1].Expected != 'a' || patterns[2].Expected != 'c' {
		t.Fatalf("expected ties in first-seen order: %+v", patterns[1:])
	}

	if got := m.MostCommonErrors(1); len(got) != 1 {
		t.Fatalf("expected the limit applied, got %d", len(got))
	}
}

func TestAccuracyTrend(t *testing.T) {
	m := NewAccuracyModel()
	for i := 0; i < 5; i++ {
		m.RecordCorrect(i, at(i))
	}
	if m.Trend() != TrendStable {
		t.Fatalf("expected stable below ten samples, got %s", m.Trend())
	}
	for i := 5; i < 10; i++ {
		m.RecordIncorrect(i, 'a', 'b', at(i))
	}
	if m.Trend() != TrendDeclining {
		t.Fatalf("expected declining, got %s", m.Trend())
	}

	up := NewAccuracyModel()
	for i := 0; i < 5; i++ {
		up.RecordIncorrect(i, 'a', 'b', at(i))
	}
	for i := 5; i < 10; i++ {
		up.RecordCorrect(i, at(i))
	}
	if up.Trend() != TrendImproving {
		t.Fatalf("expected improving, got %s", up.Trend())
	}

	flat := NewAccuracyModel()
	for i := 0; i < 12; i++ {
		flat.RecordCorrect(i, at(i))
	}
	if flat.Trend() != TrendStable {
		t.Fatalf("expected stable, got %s", flat.Trend())
	}
}

func TestWeakestCharacters(t *testing.T) {
	m := NewAccuracyModel()
	for i := 0; i < 4; i++ {
		m.RecordCharacter('a', false)
	}
	for i := 0; i < 5; i++ {
		m.RecordCharacter('b', true)
	}
	for i := 0; i < 3; i++ {
		m.RecordCharacter('c', true)
	}
	for i := 0; i < 2; i++ {
		m.RecordCharacter('c', false)
	}

	// 'a' has only 4 attempts and is filtered out.
	weak := m.WeakestCharacters(0)
	if len(weak) != 2 {
		t.Fatalf("expected 2 ranked characters, got %d", len(weak))
	}
	if weak[0].Char != 'c' || weak[1].Char != 'b' {
		t.Fatalf("expected c before b: %+v", weak)
	}
	if weak[0].Accuracy() != 60 {
		t.Fatalf("expected 60 for c, got %v", weak[0].Accuracy())
	}
	if got := m.WeakestCharacters(1); len(got) != 1 || got[0].Char != 'c' {
		t.Fatalf("expected the limit to keep the weakest: %+v", got)
	}
}

func TestAccuracyReset(t *testing.T) {
	m := NewAccuracyModel()
	m.RecordIncorrect(0, 'a', 'b', at(0))
	m.RecordCharacter('a', false)
	m.Reset()
	if m.TotalAttempts() != 0 || len(m.Samples()) != 0 {
		t.Fatalf("expected counters and samples cleared")
	}
	if len(m.MostCommonErrors(0)) != 0 {
		t.Fatalf("expected patterns cleared")
	}
	if len(m.Characters()) != 0 {
		t.Fatalf("expected character stats cleared")
	}
}

package engine

import (
	"sort"
	"time"
)

// sampleCapacity bounds the accuracy-sample ring; oldest samples are
// evicted first.
const sampleCapacity = 100

// trendSpan is how many samples each side of the trend comparison uses.
const trendSpan = 5

// trendThreshold is the minimum point difference before a trend is called.
const trendThreshold = 2.0

// weakestMinAttempts filters out characters with too little data to rank.
const weakestMinAttempts = 5

// Trend classifies the short-term direction of the accuracy samples.
type Trend int

const (
	TrendStable Trend = iota
	TrendImproving
	TrendDeclining
)

// String returns the lowercase name of the trend.
func (t Trend) String() string {
	switch t {
	case TrendImproving:
		return "improving"
	case TrendDeclining:
		return "declining"
	default:
		return "stable"
	}
}

// AccuracySample is the running accuracy captured after one judged
// keystroke.
type AccuracySample struct {
	Value float64
	At    time.Time
}

// ErrorPattern is one substitution mistake and how often it occurred.
type ErrorPattern struct {
	Expected rune
	Received rune
	Count    int
}

// CharStats aggregates correctness for a single target character.
type CharStats struct {
	Char      rune
	Correct   int
	Incorrect int
}

// Total returns the attempts recorded for the character.
func (c CharStats) Total() int { return c.Correct + c.Incorrect }

// Accuracy returns the per-character accuracy percentage. A character with
// no attempts reads 100.
func (c CharStats) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 100
	}
	return float64(c.Correct) / float64(total) * 100
}

type patternKey struct {
	expected rune
	received rune
}

type attempt struct {
	position int
	correct  bool
}

// AccuracyModel tracks correctness across one session. All counters are
// append-only: a backspace never subtracts an attempt.
type AccuracyModel struct {
	total     int
	correct   int
	incorrect int

	attempts []attempt
	samples  sampleRing

	patterns     map[patternKey]int
	patternOrder []patternKey

	chars map[rune]*CharStats
}

// NewAccuracyModel returns an empty model.
func NewAccuracyModel() *AccuracyModel {
	return &AccuracyModel{
		samples:  newSampleRing(sampleCapacity),
		patterns: make(map[patternKey]int),
		chars:    make(map[rune]*CharStats),
	}
}

// RecordCorrect logs a matched keystroke at the given position.
func (m *AccuracyModel) RecordCorrect(position int, now time.Time) {
	m.total++
	m.correct++
	m.attempts = append(m.attempts, attempt{position: position, correct: true})
	m.samples.push(AccuracySample{Value: m.Current(), At: now})
}

// RecordIncorrect logs a mismatch and its substitution pattern.
func (m *AccuracyModel) RecordIncorrect(position int, expected, received rune, now time.Time) {
	m.total++
	m.incorrect++
	m.attempts = append(m.attempts, attempt{position: position, correct: false})
	key := patternKey{expected: expected, received: received}
	if _, ok := m.patterns[key]; !ok {
		m.patternOrder = append(m.patternOrder, key)
	}
	m.patterns[key]++
	m.samples.push(AccuracySample{Value: m.Current(), At: now})
}

// RecordCharacter updates the per-character counters. These run parallel to
// the session counters and are likewise never decremented.
func (m *AccuracyModel) RecordCharacter(char rune, correct bool) {
	cs, ok := m.chars[char]
	if !ok {
		cs = &CharStats{Char: char}
		m.chars[char] = cs
	}
	if correct {
		cs.Correct++
	} else {
		cs.Incorrect++
	}
}

// Current returns the all-time session accuracy percentage, over every
// keystroke including retries. With no attempts yet it reads 100.
func (m *AccuracyModel) Current() float64 {
	if m.total == 0 {
		return 100
	}
	return float64(m.correct) / float64(m.total) * 100
}

// Average returns the mean of the retained accuracy samples. It drifts with
// the ring window rather than the whole session.
func (m *AccuracyModel) Average() float64 {
	values := m.samples.values()
	if len(values) == 0 {
		return 100
	}
	return sampleMean(values)
}

// AccuracyForRange returns the accuracy of keystrokes recorded at positions
// in [start, end]. An empty range reads 100: no evidence of mistakes.
func (m *AccuracyModel) AccuracyForRange(start, end int) float64 {
	total := 0
	correct := 0
	for _, a := range m.attempts {
		if a.position < start || a.position > end {
			continue
		}
		total++
		if a.correct {
			correct++
		}
	}
	if total == 0 {
		return 100
	}
	return float64(correct) / float64(total) * 100
}

// MostCommonErrors returns the substitution patterns sorted by frequency
// descending. Ties keep first-seen order. A limit of 0 or less returns all.
func (m *AccuracyModel) MostCommonErrors(limit int) []ErrorPattern {
	out := make([]ErrorPattern, 0, len(m.patternOrder))
	for _, key := range m.patternOrder {
		out = append(out, ErrorPattern{
			Expected: key.expected,
			Received: key.received,
			Count:    m.patterns[key],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Trend compares the mean of the most recent samples against the mean of
// the ones preceding them. It reads stable until both spans are filled and
// while the difference stays inside the threshold.
func (m *AccuracyModel) Trend() Trend {
	values := m.samples.values()
	if len(values) < 2*trendSpan {
		return TrendStable
	}
	recent := sampleMean(values[len(values)-trendSpan:])
	prior := sampleMean(values[len(values)-2*trendSpan : len(values)-trendSpan])
	switch diff := recent - prior; {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// WeakestCharacters returns the lowest-accuracy characters, skipping those
// with fewer than five attempts. A limit of 0 or less returns all.
func (m *AccuracyModel) WeakestCharacters(limit int) []CharStats {
	out := make([]CharStats, 0, len(m.chars))
	for _, cs := range m.chars {
		if cs.Total() < weakestMinAttempts {
			continue
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy() == out[j].Accuracy() {
			return out[i].Char < out[j].Char
		}
		return out[i].Accuracy() < out[j].Accuracy()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Characters returns the per-character stats sorted by character.
func (m *AccuracyModel) Characters() []CharStats {
	out := make([]CharStats, 0, len(m.chars))
	for _, cs := range m.chars {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// TotalAttempts returns every judged keystroke, including retries.
func (m *AccuracyModel) TotalAttempts() int { return m.total }

// CorrectAttempts returns the matched keystrokes.
func (m *AccuracyModel) CorrectAttempts() int { return m.correct }

// IncorrectAttempts returns the mismatched keystrokes.
func (m *AccuracyModel) IncorrectAttempts() int { return m.incorrect }

// Samples returns the retained accuracy samples, oldest first.
func (m *AccuracyModel) Samples() []AccuracySample { return m.samples.values() }

// Reset clears counters, samples, patterns, and per-character stats.
func (m *AccuracyModel) Reset() {
	m.total = 0
	m.correct = 0
	m.incorrect = 0
	m.attempts = nil
	m.samples.reset()
	m.patterns = make(map[patternKey]int)
	m.patternOrder = nil
	m.chars = make(map[rune]*CharStats)
}

func sampleMean(samples []AccuracySample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}

// sampleRing is a fixed-capacity ring. Writes past capacity overwrite the
// oldest entry.
type sampleRing struct {
	buf  []AccuracySample
	pos  int
	full bool
}

func newSampleRing(capacity int) sampleRing {
	return sampleRing{buf: make([]AccuracySample, capacity)}
}

func (r *sampleRing) push(s AccuracySample) {
	r.buf[r.pos] = s
	r.pos = (r.pos + 1) % len(r.buf)
	if r.pos == 0 {
		r.full = true
	}
}

// values returns the retained samples, oldest first.
func (r *sampleRing) values() []AccuracySample {
	if !r.full {
		out := make([]AccuracySample, r.pos)
		copy(out, r.buf[:r.pos])
		return out
	}
	out := make([]AccuracySample, 0, len(r.buf))
	out = append(out, r.buf[r.pos:]...)
	out = append(out, r.buf[:r.pos]...)
	return out
}

func (r *sampleRing) reset() {
	r.pos = 0
	r.full = false
}

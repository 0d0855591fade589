package engine

import (
	"math"
	"time"
)

// charsPerWord is the conventional word length for WPM.
const charsPerWord = 5

// liveWindow is the default trailing window for the live WPM rate.
const liveWindow = 60 * time.Second

// Stats is a point-in-time snapshot of session measurements. Accuracy spans
// every keystroke including retries, so repeated mistakes at one position
// keep lowering it even when the position barely moves.
type Stats struct {
	Elapsed         time.Duration
	TotalKeystrokes int
	CorrectChars    int
	IncorrectChars  int
	Errors          int
	Accuracy        float64
	WPM             float64
}

// WPM converts correct characters over elapsed active time into words per
// minute, rounded to the nearest whole word. Zero or negative elapsed time
// reads 0.
func WPM(correct int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	words := float64(correct) / charsPerWord
	return math.Round(words / elapsed.Minutes())
}

// LiveWPM is the moving words-per-minute rate over a trailing window of
// correct keystrokes. It is recomputed per keystroke from the retained
// timestamps only, so it follows the current pace instead of the session
// average.
type LiveWPM struct {
	window time.Duration
	times  []time.Time
}

// NewLiveWPM builds a live rate over the given window; 0 means the default
// 60 seconds.
func NewLiveWPM(window time.Duration) *LiveWPM {
	if window <= 0 {
		window = liveWindow
	}
	return &LiveWPM{window: window}
}

// Record logs one correct keystroke.
func (l *LiveWPM) Record(now time.Time) {
	l.times = append(l.times, now)
	l.prune(now)
}

// Value returns the current rate, unrounded. It reads 0 while the window
// holds no keystrokes or no time has passed since the oldest retained one.
func (l *LiveWPM) Value(now time.Time) float64 {
	l.prune(now)
	if len(l.times) == 0 {
		return 0
	}
	elapsed := now.Sub(l.times[0])
	if elapsed <= 0 {
		return 0
	}
	words := float64(len(l.times)) / charsPerWord
	return words / elapsed.Minutes()
}

// Window returns the trailing window span.
func (l *LiveWPM) Window() time.Duration { return l.window }

// Reset drops all retained keystrokes.
func (l *LiveWPM) Reset() {
	l.times = nil
}

func (l *LiveWPM) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.times) && l.times[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.times = append(l.times[:0], l.times[i:]...)
	}
}

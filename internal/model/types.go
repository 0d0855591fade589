// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lang     string
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet string

	// Lesson selects a built-in drill instead of generated words.
	Lesson string
	// Timed runs a countdown session of this length; 0 means the session
	// ends with the text.
	Timed time.Duration

	Difficulty string
	Adaptive   bool

	CaseSensitive  bool
	AutoAdvance    bool
	AllowBackspace bool
	MaxBackspaces  int
	BackspaceDelay time.Duration
	MaxBurst       int
	BurstWindow    time.Duration
	// AllowBackspaceAfterError permits erasing a mistake directly; when
	// false the typist has to correct forward first.
	AllowBackspaceAfterError bool

	// Completion thresholds; zero values leave a criterion unset.
	MinAccuracy float64
	MinWPM      float64
	// MaxErrors is a cap when >= 0; -1 leaves it unset.
	MaxErrors int

	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionRecord captures a completed typing session.
type SessionRecord struct {
	UUID       string
	StartedAt  time.Time
	EndedAt    time.Time
	Lang       string
	Lesson     string
	Difficulty string
	Timed      bool
	Words      int
	Keystrokes int
	Correct    int
	Incorrect  int
	Errors     int
	Backspaces int
	Accuracy   float64
	WPM        float64
	DurationMs int64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char      string
	Correct   int
	Incorrect int
}

// MistakeStats stores one substitution pattern for a session.
type MistakeStats struct {
	Expected string
	Received string
	Count    int
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char      string
	Correct   int
	Incorrect int
}

// MistakeAggregate aggregates substitution patterns across sessions.
type MistakeAggregate struct {
	Expected string
	Received string
	Count    int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Difficulty string
	Correct    int
	Incorrect  int
	Accuracy   float64
	WPM        float64
	DurationMs int64
}

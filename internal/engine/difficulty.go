package engine

import "fmt"

// Level is a difficulty tier for generated practice content.
type Level int

const (
	LevelEasy Level = iota
	LevelMedium
	LevelHard
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelEasy:
		return "easy"
	case LevelMedium:
		return "medium"
	case LevelHard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseLevel converts a config string into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "easy":
		return LevelEasy, nil
	case "medium":
		return LevelMedium, nil
	case "hard":
		return LevelHard, nil
	default:
		return LevelEasy, fmt.Errorf("unknown difficulty level: %q", s)
	}
}

// difficultyWindow is how many completed sessions the controller considers.
const difficultyWindow = 5

// Average accuracy thresholds for moving between levels.
const (
	hardThreshold   = 95.0
	mediumThreshold = 85.0
)

// DifficultyController adapts the difficulty level from the accuracies of
// recently completed sessions. It is the only engine state that carries
// across session boundaries: session N records into it, session N+1 reads
// the level out. The level is a pure function of the retained history.
type DifficultyController struct {
	level  Level
	recent []float64
}

// NewDifficultyController starts at the given level. The level holds until
// enough sessions are on record to adapt.
func NewDifficultyController(initial Level) *DifficultyController {
	return &DifficultyController{level: initial}
}

// Record adds one completed-session accuracy, evicting the oldest beyond
// the window, and returns the level in effect afterwards. With fewer than
// five sessions on record the level is unchanged.
func (d *DifficultyController) Record(accuracy float64) Level {
	d.recent = append(d.recent, accuracy)
	if len(d.recent) > difficultyWindow {
		d.recent = append(d.recent[:0], d.recent[1:]...)
	}
	if len(d.recent) < difficultyWindow {
		return d.level
	}

	var sum float64
	for _, v := range d.recent {
		sum += v
	}
	switch avg := sum / float64(len(d.recent)); {
	case avg >= hardThreshold:
		d.level = LevelHard
	case avg >= mediumThreshold:
		d.level = LevelMedium
	default:
		d.level = LevelEasy
	}
	return d.level
}

// Level returns the current difficulty.
func (d *DifficultyController) Level() Level { return d.level }

// Recent returns a copy of the recorded accuracies, oldest first.
func (d *DifficultyController) Recent() []float64 {
	out := make([]float64, len(d.recent))
	copy(out, d.recent)
	return out
}

// Reset drops the history and returns to the given level.
func (d *DifficultyController) Reset(level Level) {
	d.level = level
	d.recent = nil
}

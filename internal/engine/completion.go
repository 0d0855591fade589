package engine

import "time"

// CompletionCriteria is the set of thresholds a session must satisfy to
// count as complete. Nil fields are not checked. The zero value has no
// criteria, so reaching the end of the text completes unconditionally.
type CompletionCriteria struct {
	// RequireFullText, when set, demands that typing has started. Reaching
	// the end of the text is the session's own trigger and is checked
	// separately from the criteria.
	RequireFullText bool
	// MinAccuracy is the minimum session accuracy percentage.
	MinAccuracy *float64
	// MinWPM is the minimum words-per-minute rate.
	MinWPM *float64
	// MaxErrors caps the error records still on the books.
	MaxErrors *int
	// MinTime and MaxTime bound the elapsed active time.
	MinTime *time.Duration
	MaxTime *time.Duration
}

// Criteria names as reported in CompletionResult.
const (
	criterionFullText    = "full_text"
	criterionMinAccuracy = "min_accuracy"
	criterionMinWPM      = "min_wpm"
	criterionMaxErrors   = "max_errors"
	criterionMinTime     = "min_time"
	criterionMaxTime     = "max_time"
)

// CompletionResult reports which criteria held and which did not.
type CompletionResult struct {
	IsComplete    bool
	MetCriteria   []string
	UnmetCriteria []string
	// CompletionPercentage is the share of configured criteria currently
	// met, 0 when none are configured.
	CompletionPercentage float64
}

// CompletionEvaluator checks criteria against session stats and latches the
// first fully-met evaluation so the completion event fires exactly once.
type CompletionEvaluator struct {
	criteria CompletionCriteria
	fired    bool
}

// NewCompletionEvaluator builds an evaluator for the given criteria.
func NewCompletionEvaluator(criteria CompletionCriteria) *CompletionEvaluator {
	return &CompletionEvaluator{criteria: criteria}
}

// Evaluate checks every configured criterion independently against the
// stats. It is pure: the one-shot latch is untouched.
func (e *CompletionEvaluator) Evaluate(stats Stats) CompletionResult {
	var met, unmet []string
	mark := func(name string, ok bool) {
		if ok {
			met = append(met, name)
		} else {
			unmet = append(unmet, name)
		}
	}

	c := e.criteria
	if c.RequireFullText {
		mark(criterionFullText, stats.TotalKeystrokes > 0)
	}
	if c.MinAccuracy != nil {
		mark(criterionMinAccuracy, stats.Accuracy >= *c.MinAccuracy)
	}
	if c.MinWPM != nil {
		mark(criterionMinWPM, stats.WPM >= *c.MinWPM)
	}
	if c.MaxErrors != nil {
		mark(criterionMaxErrors, stats.Errors <= *c.MaxErrors)
	}
	if c.MinTime != nil {
		mark(criterionMinTime, stats.Elapsed >= *c.MinTime)
	}
	if c.MaxTime != nil {
		mark(criterionMaxTime, stats.Elapsed <= *c.MaxTime)
	}

	result := CompletionResult{
		IsComplete:    len(unmet) == 0,
		MetCriteria:   met,
		UnmetCriteria: unmet,
	}
	if total := len(met) + len(unmet); total > 0 {
		result.CompletionPercentage = float64(len(met)) / float64(total) * 100
	}
	return result
}

// Check evaluates the criteria and additionally reports whether this call
// latched completion. Once latched, later calls return false even when the
// stats fluctuate back and forth across the thresholds.
func (e *CompletionEvaluator) Check(stats Stats) (CompletionResult, bool) {
	result := e.Evaluate(stats)
	if !result.IsComplete || e.fired {
		return result, false
	}
	e.fired = true
	return result, true
}

// Fired reports whether completion has latched.
func (e *CompletionEvaluator) Fired() bool { return e.fired }

// Reset clears the one-shot latch.
func (e *CompletionEvaluator) Reset() {
	e.fired = false
}

// Package engine implements the typing-session engine: keystroke validation,
// backspace policy, accuracy tracking, speed metrics, completion detection,
// and adaptive difficulty. The engine is single-threaded; callers must invoke
// its operations in arrival order and serialize access themselves.
package engine

import (
	"fmt"
	"time"
	"unicode"
)

// Status is the lifecycle state of a typing session.
type Status int

const (
	StatusNotStarted Status = iota
	StatusActive
	StatusPaused
	StatusComplete
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// validTransitions lists the permitted status moves. Reset is handled
// separately: any status may return to NotStarted.
var validTransitions = map[Status][]Status{
	StatusNotStarted: {StatusActive},
	StatusActive:     {StatusPaused, StatusComplete},
	StatusPaused:     {StatusActive},
	StatusComplete:   {},
}

func canTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Config holds the per-session settings. It is fixed once the session is
// created; only the target text may change, and only while NotStarted.
type Config struct {
	// TargetText is the text typed against. Required and non-empty.
	TargetText string
	// CaseSensitive compares typed runes exactly. When false, comparison
	// folds case.
	CaseSensitive bool
	// AllowBackspace enables backspace handling at all.
	AllowBackspace bool
	// AutoAdvanceOnError consumes the position on a mismatch instead of
	// holding it for a retry.
	AutoAdvanceOnError bool
	// Completion configures the criteria checked when the end of the
	// target text is reached.
	Completion CompletionCriteria
	// Backspace bounds how backspaces may be used.
	Backspace BackspaceLimits
}

// ErrorRecord captures a single mismatch at a text position. Records are
// appended in order; a record is removed only by an immediately-following
// backspace over the same position.
type ErrorRecord struct {
	Position int
	Expected rune
	Received rune
	At       time.Time
}

// Progress reports an accepted character advance.
type Progress struct {
	Position   int
	Total      int
	Percentage float64
	// CurrentChar is the rune now awaiting input, zero at the end of text.
	CurrentChar rune
	// NextChar is the rune after CurrentChar, zero when there is none.
	NextChar rune
}

// CharError reports a mismatch between the expected and received rune.
type CharError struct {
	Position int
	Expected rune
	Received rune
	At       time.Time
}

// Summary is the final result of a completed session.
type Summary struct {
	TotalTime           time.Duration
	CharactersTyped     int
	CorrectCharacters   int
	IncorrectCharacters int
	Accuracy            float64
	WPM                 float64
}

// Callbacks receive engine events. Nil fields are skipped. OnComplete fires
// at most once per session lifetime.
type Callbacks struct {
	OnProgress       func(Progress)
	OnError          func(CharError)
	OnComplete       func(Summary)
	OnBackspaceLimit func()
}

// Session is the typing-session state machine. It owns all mutable session
// state; every mutation goes through its methods.
type Session struct {
	cfg    Config
	target []rune
	input  []rune
	pos    int
	status Status

	startedAt   time.Time
	endedAt     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	errors       []ErrorRecord
	lastWasError bool

	accuracy  *AccuracyModel
	policy    *BackspacePolicy
	evaluator *CompletionEvaluator
	live      *LiveWPM

	callbacks Callbacks
}

// NewSession creates a session for the given config. It fails when the
// target text is empty, since no valid session can exist without one.
func NewSession(cfg Config, callbacks Callbacks) (*Session, error) {
	if cfg.TargetText == "" {
		return nil, fmt.Errorf("engine: target text is required")
	}
	s := &Session{
		cfg:       cfg,
		target:    []rune(cfg.TargetText),
		accuracy:  NewAccuracyModel(),
		evaluator: NewCompletionEvaluator(cfg.Completion),
		live:      NewLiveWPM(0),
		callbacks: callbacks,
	}
	s.policy = NewBackspacePolicy(cfg.AllowBackspace, cfg.Backspace, callbacks.OnBackspaceLimit)
	return s, nil
}

// SetTargetText replaces the target text. Permitted only while NotStarted.
func (s *Session) SetTargetText(text string) error {
	if s.status != StatusNotStarted {
		return fmt.Errorf("engine: cannot change target text while %s", s.status)
	}
	if text == "" {
		return fmt.Errorf("engine: target text is required")
	}
	s.cfg.TargetText = text
	s.target = []rune(text)
	return nil
}

// transition moves to the given status when the table permits it.
func (s *Session) transition(to Status) bool {
	if !canTransition(s.status, to) {
		return false
	}
	s.status = to
	return true
}

// Start moves the session from NotStarted to Active and stamps the start
// time. Returns false for any other status; resuming from Paused goes
// through Resume and does not restamp the start time.
func (s *Session) Start(now time.Time) bool {
	if s.status != StatusNotStarted || !s.transition(StatusActive) {
		return false
	}
	s.startedAt = now
	return true
}

// Pause freezes an Active session. Paused time is excluded from elapsed
// time, so speed metrics do not decay while paused.
func (s *Session) Pause(now time.Time) bool {
	if !s.transition(StatusPaused) {
		return false
	}
	s.pausedAt = now
	return true
}

// Resume continues a Paused session. The original start time is kept.
func (s *Session) Resume(now time.Time) bool {
	if s.status != StatusPaused || !s.transition(StatusActive) {
		return false
	}
	s.pausedTotal += now.Sub(s.pausedAt)
	s.pausedAt = time.Time{}
	return true
}

// Reset returns the session to NotStarted and clears all derived state:
// position, buffer, error records, accuracy history, backspace budget, and
// the completion latch.
func (s *Session) Reset() {
	s.status = StatusNotStarted
	s.pos = 0
	s.input = nil
	s.errors = nil
	s.lastWasError = false
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.accuracy.Reset()
	s.policy.Reset()
	s.evaluator.Reset()
	s.live.Reset()
}

// ProcessCharacter judges one typed rune against the target text. It is a
// no-op returning false unless the session is Active and the position is
// inside the text. The return value reports whether the position advanced.
func (s *Session) ProcessCharacter(r rune, now time.Time) bool {
	if s.status != StatusActive || s.pos >= len(s.target) {
		return false
	}
	expected := s.target[s.pos]
	if runesMatch(expected, r, s.cfg.CaseSensitive) {
		s.accuracy.RecordCorrect(s.pos, now)
		s.accuracy.RecordCharacter(expected, true)
		s.live.Record(now)
		s.lastWasError = false
		s.advance(r, now, true)
		return true
	}

	record := ErrorRecord{Position: s.pos, Expected: expected, Received: r, At: now}
	s.errors = append(s.errors, record)
	s.accuracy.RecordIncorrect(s.pos, expected, r, now)
	s.accuracy.RecordCharacter(expected, false)
	s.lastWasError = true
	if s.callbacks.OnError != nil {
		s.callbacks.OnError(CharError{
			Position: record.Position,
			Expected: record.Expected,
			Received: record.Received,
			At:       record.At,
		})
	}
	if !s.cfg.AutoAdvanceOnError {
		return false
	}
	// The error consumed the position: the typed rune enters the buffer so
	// it keeps mirroring accepted characters.
	s.advance(r, now, false)
	return true
}

// HandleBackspace applies one backspace if the policy admits it. Admitted
// backspaces step the position back by one, drop the last buffer rune, and
// remove the most recent error record only when it sits at the new
// position. Accuracy counters are append-only and are never undone.
// Backspacing is a no-op outside Active; Complete is terminal.
func (s *Session) HandleBackspace(now time.Time) bool {
	if s.status != StatusActive {
		return false
	}
	if !s.policy.Execute(now, s.pos, s.lastWasError) {
		return false
	}
	s.pos--
	s.input = s.input[:len(s.input)-1]
	if n := len(s.errors); n > 0 && s.errors[n-1].Position == s.pos {
		s.errors = s.errors[:n-1]
	}
	s.lastWasError = false
	return true
}

// Finish completes an Active session without consulting the completion
// criteria. Hosts call it when an external limit, such as a countdown,
// ends the session. Returns false outside Active, so a session that
// already completed through its criteria is not re-completed.
func (s *Session) Finish(now time.Time) bool {
	if !s.transition(StatusComplete) {
		return false
	}
	s.endedAt = now
	if s.callbacks.OnComplete != nil {
		s.callbacks.OnComplete(s.Summary(now))
	}
	return true
}

func (s *Session) advance(r rune, now time.Time, emitProgress bool) {
	s.input = append(s.input, r)
	s.pos++
	if emitProgress && s.callbacks.OnProgress != nil {
		s.callbacks.OnProgress(s.progress())
	}
	if s.pos == len(s.target) {
		s.tryComplete(now)
	}
}

func (s *Session) progress() Progress {
	p := Progress{
		Position:   s.pos,
		Total:      len(s.target),
		Percentage: float64(s.pos) / float64(len(s.target)) * 100,
	}
	if s.pos < len(s.target) {
		p.CurrentChar = s.target[s.pos]
	}
	if s.pos+1 < len(s.target) {
		p.NextChar = s.target[s.pos+1]
	}
	return p
}

// tryComplete runs the configured completion criteria once the end of the
// text is reached. The session transitions to Complete only when every
// criterion holds; otherwise it stays Active so the typist can still
// backspace and the host can show what is unmet.
func (s *Session) tryComplete(now time.Time) {
	result, fired := s.evaluator.Check(s.Stats(now))
	if !fired || !result.IsComplete {
		return
	}
	if !s.transition(StatusComplete) {
		return
	}
	s.endedAt = now
	if s.callbacks.OnComplete != nil {
		s.callbacks.OnComplete(s.Summary(now))
	}
}

// Stats returns a point-in-time snapshot of the session measurements used
// by the completion evaluator and hosts.
func (s *Session) Stats(now time.Time) Stats {
	elapsed := s.Elapsed(now)
	correct := s.accuracy.CorrectAttempts()
	return Stats{
		Elapsed:         elapsed,
		TotalKeystrokes: s.accuracy.TotalAttempts(),
		CorrectChars:    correct,
		IncorrectChars:  s.accuracy.IncorrectAttempts(),
		Errors:          len(s.errors),
		Accuracy:        s.accuracy.Current(),
		WPM:             WPM(correct, elapsed),
	}
}

// Summary builds the final stats object emitted on completion.
func (s *Session) Summary(now time.Time) Summary {
	elapsed := s.Elapsed(now)
	return Summary{
		TotalTime:           elapsed,
		CharactersTyped:     s.accuracy.TotalAttempts(),
		CorrectCharacters:   s.accuracy.CorrectAttempts(),
		IncorrectCharacters: s.accuracy.IncorrectAttempts(),
		Accuracy:            s.accuracy.Current(),
		WPM:                 WPM(s.accuracy.CorrectAttempts(), elapsed),
	}
}

// Elapsed is the active typing time: wall time since start minus paused
// time. Zero before the session starts.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	end := now
	switch s.status {
	case StatusComplete:
		end = s.endedAt
	case StatusPaused:
		end = s.pausedAt
	}
	return end.Sub(s.startedAt) - s.pausedTotal
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status { return s.status }

// Position returns the current text position, in [0, len(target)].
func (s *Session) Position() int { return s.pos }

// TargetRunes returns a copy of the target text runes.
func (s *Session) TargetRunes() []rune {
	out := make([]rune, len(s.target))
	copy(out, s.target)
	return out
}

// InputRunes returns a copy of the accepted input buffer.
func (s *Session) InputRunes() []rune {
	out := make([]rune, len(s.input))
	copy(out, s.input)
	return out
}

// Errors returns a copy of the error records still on the books.
func (s *Session) Errors() []ErrorRecord {
	out := make([]ErrorRecord, len(s.errors))
	copy(out, s.errors)
	return out
}

// Accuracy exposes the session's accuracy model for queries.
func (s *Session) Accuracy() *AccuracyModel { return s.accuracy }

// Backspaces returns how many backspaces the session has accepted.
func (s *Session) Backspaces() int { return s.policy.Used() }

// BackspaceBudget returns how many backspaces remain, and false when the
// budget is unlimited.
func (s *Session) BackspaceBudget() (int, bool) { return s.policy.Remaining() }

// LiveWPM returns the moving words-per-minute rate over the trailing
// window, recomputed from recent correct keystrokes.
func (s *Session) LiveWPM(now time.Time) float64 { return s.live.Value(now) }

// Evaluate runs the completion criteria against the current stats without
// affecting the one-shot completion latch.
func (s *Session) Evaluate(now time.Time) CompletionResult {
	return s.evaluator.Evaluate(s.Stats(now))
}

func runesMatch(expected, received rune, caseSensitive bool) bool {
	if caseSensitive {
		return expected == received
	}
	return unicode.ToLower(expected) == unicode.ToLower(received)
}

package engine

import "time"

// BackspaceLimits bounds how backspaces may be used within a session.
// Zero values disable the corresponding limit.
type BackspaceLimits struct {
	// MaxBackspaces caps the total accepted backspaces per session.
	MaxBackspaces int
	// MinDelay is the minimum interval since the previous accepted
	// backspace.
	MinDelay time.Duration
	// MaxBurst caps accepted backspaces inside one burst window.
	MaxBurst int
	// BurstWindow is the span of a burst. The window is anchored at the
	// first backspace of the burst, not at the most recent one.
	BurstWindow time.Duration
	// BlockAfterError rejects a backspace when the most recent keystroke
	// was a mismatch, forcing the typist to correct forward instead of
	// erasing the mistake. The common product default leaves this off.
	BlockAfterError bool
}

// BackspacePolicy gates backspace events against the configured limits.
// It only counts; the session applies the actual edit once admitted.
type BackspacePolicy struct {
	enabled bool
	limits  BackspaceLimits

	used          int
	lastAccepted  time.Time
	burst         burstWindow
	limitNotified bool

	onLimit func()
}

// NewBackspacePolicy builds a policy. onLimit, when non-nil, fires exactly
// once per exhausted backspace budget, at the first rejected attempt.
func NewBackspacePolicy(enabled bool, limits BackspaceLimits, onLimit func()) *BackspacePolicy {
	return &BackspacePolicy{
		enabled: enabled,
		limits:  limits,
		burst:   burstWindow{max: limits.MaxBurst, window: limits.BurstWindow},
		onLimit: onLimit,
	}
}

// CanBackspace reports whether a backspace at the given position would be
// admitted now. It never mutates state.
func (p *BackspacePolicy) CanBackspace(now time.Time, position int, lastWasError bool) bool {
	if !p.enabled || position <= 0 {
		return false
	}
	if p.limits.BlockAfterError && lastWasError {
		return false
	}
	if p.limits.MaxBackspaces > 0 && p.used >= p.limits.MaxBackspaces {
		return false
	}
	if p.limits.MinDelay > 0 && !p.lastAccepted.IsZero() && now.Sub(p.lastAccepted) < p.limits.MinDelay {
		return false
	}
	return p.burst.allows(now)
}

// Execute admits and records one backspace, or rejects it without any
// mutation. A rejection caused by an exhausted budget fires the limit
// notification on its first occurrence.
func (p *BackspacePolicy) Execute(now time.Time, position int, lastWasError bool) bool {
	if !p.CanBackspace(now, position, lastWasError) {
		p.notifyLimitBreach(position)
		return false
	}
	p.used++
	p.lastAccepted = now
	p.burst.record(now)
	return true
}

func (p *BackspacePolicy) notifyLimitBreach(position int) {
	if p.limits.MaxBackspaces <= 0 || p.used < p.limits.MaxBackspaces {
		return
	}
	// Only a real attempt against the exhausted budget counts as a breach.
	if !p.enabled || position <= 0 || p.limitNotified {
		return
	}
	p.limitNotified = true
	if p.onLimit != nil {
		p.onLimit()
	}
}

// Used returns how many backspaces have been accepted.
func (p *BackspacePolicy) Used() int { return p.used }

// Remaining returns the backspaces left in the budget, and false when the
// budget is unlimited.
func (p *BackspacePolicy) Remaining() (int, bool) {
	if p.limits.MaxBackspaces <= 0 {
		return 0, false
	}
	left := p.limits.MaxBackspaces - p.used
	if left < 0 {
		left = 0
	}
	return left, true
}

// Reset clears the budget, timing state, and the limit notification latch.
func (p *BackspacePolicy) Reset() {
	p.used = 0
	p.lastAccepted = time.Time{}
	p.limitNotified = false
	p.burst.reset()
}

// burstWindow enforces at most max accepted events inside a window that is
// anchored at the burst's own first event. When the window elapses since
// that start, the next event opens a fresh burst.
type burstWindow struct {
	max    int
	window time.Duration

	start time.Time
	count int
}

func (b *burstWindow) allows(now time.Time) bool {
	if b.max <= 0 || b.window <= 0 {
		return true
	}
	if b.count == 0 || now.Sub(b.start) >= b.window {
		return true
	}
	return b.count < b.max
}

func (b *burstWindow) record(now time.Time) {
	if b.max <= 0 || b.window <= 0 {
		return
	}
	if b.count == 0 || now.Sub(b.start) >= b.window {
		b.start = now
		b.count = 1
		return
	}
	b.count++
}

func (b *burstWindow) reset() {
	b.start = time.Time{}
	b.count = 0
}

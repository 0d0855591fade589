package engine

import (
	"testing"
	"time"
)

func TestBackspaceBudget(t *testing.T) {
	events := 0
	p := NewBackspacePolicy(true, BackspaceLimits{MaxBackspaces: 2}, func() { events++ })
	if !p.Execute(at(0), 3, false) || !p.Execute(at(100), 2, false) {
		t.Fatalf("first two backspaces must pass")
	}
	if p.Execute(at(200), 1, false) {
		t.Fatalf("third backspace must be rejected")
	}
	if events != 1 {
		t.Fatalf("expected one limit event, got %d", events)
	}
	if p.Execute(at(300), 1, false) {
		t.Fatalf("fourth backspace must be rejected")
	}
	if events != 1 {
		t.Fatalf("limit event must fire exactly once, got %d", events)
	}
	if p.Used() != 2 {
		t.Fatalf("expected 2 used, got %d", p.Used())
	}
	left, limited := p.Remaining()
	if !limited || left != 0 {
		t.Fatalf("expected an exhausted bounded budget, got %d %v", left, limited)
	}
}

func TestBackspaceDisabledAndAtStart(t *testing.T) {
	disabled := NewBackspacePolicy(false, BackspaceLimits{}, nil)
	if disabled.Execute(at(0), 5, false) {
		t.Fatalf("disabled policy must reject")
	}

	p := NewBackspacePolicy(true, BackspaceLimits{}, nil)
	if p.Execute(at(0), 0, false) {
		t.Fatalf("backspace at position 0 must be rejected")
	}
	if p.Used() != 0 {
		t.Fatalf("a rejected backspace must not count")
	}
	if _, limited := p.Remaining(); limited {
		t.Fatalf("zero max means unlimited")
	}
}

func TestBackspaceMinDelay(t *testing.T) {
	p := NewBackspacePolicy(true, BackspaceLimits{MinDelay: 500 * time.Millisecond}, nil)
	if !p.Execute(at(0), 5, false) {
		t.Fatalf("first backspace must pass")
	}
	if p.Execute(at(300), 5, false) {
		t.Fatalf("backspace inside the delay must be rejected")
	}
	if !p.Execute(at(500), 5, false) {
		t.Fatalf("backspace at the delay boundary must pass")
	}
}

func TestBackspaceBurstWindowAnchoredAtStart(t *testing.T) {
	p := NewBackspacePolicy(true, BackspaceLimits{MaxBurst: 2, BurstWindow: time.Second}, nil)
	if !p.Execute(at(0), 9, false) || !p.Execute(at(400), 8, false) {
		t.Fatalf("a burst of two must pass")
	}
	if p.Execute(at(800), 7, false) {
		t.Fatalf("third inside the window must be rejected")
	}
	// The window is anchored at the burst's first event, so it reopens at
	// 1000ms even though the last accepted backspace was at 400ms.
	if !p.Execute(at(1000), 7, false) {
		t.Fatalf("backspace after the window elapsed must pass")
	}
	if !p.Execute(at(1100), 6, false) {
		t.Fatalf("second of the new burst must pass")
	}
	if p.Execute(at(1200), 5, false) {
		t.Fatalf("third of the new burst must be rejected")
	}
}

func TestBackspaceBlockedAfterError(t *testing.T) {
	p := NewBackspacePolicy(true, BackspaceLimits{BlockAfterError: true}, nil)
	if p.Execute(at(0), 3, true) {
		t.Fatalf("backspace right after an error must be rejected")
	}
	if !p.Execute(at(100), 3, false) {
		t.Fatalf("backspace after a clean keystroke must pass")
	}
}

func TestBackspaceDelayRejectionFiresNoLimitEvent(t *testing.T) {
	events := 0
	p := NewBackspacePolicy(true, BackspaceLimits{MaxBackspaces: 5, MinDelay: time.Second}, func() { events++ })
	if !p.Execute(at(0), 3, false) {
		t.Fatalf("first backspace must pass")
	}
	if p.Execute(at(100), 2, false) {
		t.Fatalf("expected a delay rejection")
	}
	if events != 0 {
		t.Fatalf("a delay rejection must not fire the limit event, got %d", events)
	}
}

func TestBackspacePolicyReset(t *testing.T) {
	events := 0
	p := NewBackspacePolicy(true, BackspaceLimits{MaxBackspaces: 1}, func() { events++ })
	p.Execute(at(0), 2, false)
	p.Execute(at(100), 1, false)
	if events != 1 {
		t.Fatalf("expected one limit event, got %d", events)
	}
	p.Reset()
	if p.Used() != 0 {
		t.Fatalf("expected used cleared by reset, got %d", p.Used())
	}
	if !p.Execute(at(200), 2, false) {
		t.Fatalf("backspace after reset must pass")
	}
	p.Execute(at(300), 1, false)
	if events != 2 {
		t.Fatalf("limit event must re-arm after reset, got %d", events)
	}
}

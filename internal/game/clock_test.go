package game

import "testing"

func TestManualClock(t *testing.T) {
	clock := NewManualClock(2)

	clock.Advance(0.5)
	if clock.Now() != 2.5 {
		t.Errorf("expected 2.5, got %g", clock.Now())
	}

	// Clocks never run backwards.
	clock.Set(1)
	clock.Advance(-3)
	if clock.Now() != 2.5 {
		t.Errorf("clock moved backwards to %g", clock.Now())
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	clock := NewSystemClock()
	a := clock.Now()
	b := clock.Now()
	if a < 0 || b < a {
		t.Errorf("system clock readings out of order: %g then %g", a, b)
	}
}

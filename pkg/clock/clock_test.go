package clock

import (
	"errors"
	"testing"
	"time"
)

func TestSimClock_AdvanceTo(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, ctl := NewSimClock(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}

	next := start.Add(time.Minute)
	if err := ctl.AdvanceTo(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Now(); !got.Equal(next) {
		t.Errorf("expected %v, got %v", next, got)
	}
	if got := c.UnixSeconds(); got != next.Unix() {
		t.Errorf("expected unix seconds %d, got %d", next.Unix(), got)
	}
}

func TestSimClock_AdvanceTo_RejectsBackwardsAndEqual(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, ctl := NewSimClock(start)

	if err := ctl.AdvanceTo(start); !errors.Is(err, ErrBackwardsTime) {
		t.Fatalf("expected ErrBackwardsTime for equal instant, got %v", err)
	}
	if err := ctl.AdvanceTo(start.Add(-time.Second)); !errors.Is(err, ErrBackwardsTime) {
		t.Fatalf("expected ErrBackwardsTime for earlier instant, got %v", err)
	}
	if got := c.Now(); !got.Equal(start) {
		t.Errorf("clock must not move on a rejected advance, got %v", got)
	}
}

func TestSimClock_Reset_BypassesMonotonicity(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, ctl := NewSimClock(start)

	if err := ctl.AdvanceTo(start.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctl.Reset(start)
	if got := c.Now(); !got.Equal(start) {
		t.Errorf("expected reset to %v, got %v", start, got)
	}
}

func TestSystemClock_UsesRealTime(t *testing.T) {
	before := time.Now().UTC()
	sc := SystemClock{}
	now := sc.Now()
	after := time.Now().UTC()

	if now.Before(before) || now.After(after.Add(time.Second)) {
		t.Errorf("SystemClock.Now() %v outside expected window [%v, %v]", now, before, after)
	}
}

package sched

import (
	"testing"
	"time"
)

func TestManualClockFiresDueCallbacksInOrder(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.UnixMilli(0))

	var order []string
	clock.After(300*time.Millisecond, func() { order = append(order, "late") })
	clock.After(100*time.Millisecond, func() { order = append(order, "early") })
	clock.After(200*time.Millisecond, func() { order = append(order, "mid") })

	clock.Advance(150 * time.Millisecond)
	if len(order) != 1 || order[0] != "early" {
		t.Fatalf("expected only the early callback, got %v", order)
	}

	clock.Advance(200 * time.Millisecond)
	if len(order) != 3 || order[1] != "mid" || order[2] != "late" {
		t.Fatalf("expected due-order firing, got %v", order)
	}
	if pending := clock.PendingTimers(); pending != 0 {
		t.Fatalf("expected no pending timers, got %d", pending)
	}
}

func TestManualClockStopPreventsFiring(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.UnixMilli(0))

	fired := false
	timer := clock.After(50*time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Fatalf("expected Stop to report cancellation")
	}
	if timer.Stop() {
		t.Fatalf("expected second Stop to be a no-op")
	}

	clock.Advance(time.Second)
	if fired {
		t.Fatalf("stopped callback must not fire")
	}
}

func TestManualClockStepsToEachDueInstant(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.UnixMilli(0))

	var observed []time.Time
	clock.After(10*time.Millisecond, func() {
		observed = append(observed, clock.Now())
		clock.After(10*time.Millisecond, func() {
			observed = append(observed, clock.Now())
		})
	})

	clock.Advance(30 * time.Millisecond)

	want := []time.Time{time.UnixMilli(10), time.UnixMilli(20)}
	if len(observed) != len(want) {
		t.Fatalf("expected %d callbacks, got %d", len(want), len(observed))
	}
	for i := range want {
		if !observed[i].Equal(want[i]) {
			t.Fatalf("callback %d saw Now()=%v, want %v", i, observed[i], want[i])
		}
	}
	if now := clock.Now(); !now.Equal(time.UnixMilli(30)) {
		t.Fatalf("clock settled at %v, want target instant", now)
	}
}

func TestManualClockCallbackMayScheduleAnother(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.UnixMilli(0))

	var hits int
	clock.After(10*time.Millisecond, func() {
		hits++
		clock.After(10*time.Millisecond, func() { hits++ })
	})

	clock.Advance(30 * time.Millisecond)
	if hits != 2 {
		t.Fatalf("expected chained callback to fire within the same advance, got %d", hits)
	}
}

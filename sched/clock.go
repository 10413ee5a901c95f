package sched

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time and a deferred-callback scheduler. The
// power-up manager schedules one teardown callback per durational effect and
// cancels it deterministically on refresh or clear, so timers must be
// first-class cancellable handles rather than bare goroutines.
type Clock interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
}

// Timer is a cancellable handle for a deferred callback. Stop reports whether
// the callback was prevented from running.
type Timer interface {
	Stop() bool
}

// SystemClock backs onto the runtime timer wheel.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	return systemTimer{timer: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	timer *time.Timer
}

func (t systemTimer) Stop() bool {
	if t.timer == nil {
		return false
	}
	return t.timer.Stop()
}

// ManualClock is a deterministic clock for tests. Advance moves time forward
// and fires every due callback synchronously, in due order, before returning.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
	nextID  uint64
}

type manualTimer struct {
	clock   *ManualClock
	id      uint64
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// NewManualClock constructs a manual clock anchored at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) After(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, at: c.now.Add(d), fn: fn}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the clock forward by d, firing due callbacks in due order.
// Time steps to each callback's own deadline before it runs, so a callback
// that schedules a relative follow-up timer gets a deadline measured from its
// firing instant, not from the end of the window; the clock settles on the
// target only once the due queue drains. Callbacks run outside the clock lock
// so they may schedule or stop other timers.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	c.advanceTo(target)
}

// Set jumps the clock to an absolute instant, firing due callbacks with the
// same stepwise semantics as Advance.
func (c *ManualClock) Set(now time.Time) {
	c.advanceTo(now)
}

func (c *ManualClock) advanceTo(target time.Time) {
	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		if t.fn != nil {
			t.fn()
		}
	}
	c.mu.Lock()
	if target.After(c.now) {
		c.now = target
	}
	c.mu.Unlock()
}

// PendingTimers reports how many scheduled callbacks have neither fired nor
// been stopped.
func (c *ManualClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

func (c *ManualClock) popDue(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.pending = live
	sort.SliceStable(c.pending, func(i, j int) bool {
		if !c.pending[i].at.Equal(c.pending[j].at) {
			return c.pending[i].at.Before(c.pending[j].at)
		}
		return c.pending[i].id < c.pending[j].id
	})
	for _, t := range c.pending {
		if t.at.After(target) {
			break
		}
		t.fired = true
		if t.at.After(c.now) {
			c.now = t.at
		}
		return t
	}
	return nil
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

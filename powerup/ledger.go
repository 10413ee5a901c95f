package powerup

import (
	"time"

	"block-party/server/sched"
)

// ActiveRecord tracks one currently-running effect. At most one record per
// Type exists at a time; re-activation refreshes ExpiresAt (and, for the
// stacking effect, increments StackCount) instead of inserting a second
// record. Infinite marks the safety-net record, which has no time-based
// expiry and is only removed by consumption or clear.
type ActiveRecord struct {
	Type       Type
	AppliedAt  time.Time
	ExpiresAt  time.Time
	Infinite   bool
	StackCount int

	timer sched.Timer
}

// Remaining reports how long until natural expiry. Infinite records report a
// negative duration.
func (r ActiveRecord) Remaining(now time.Time) time.Duration {
	if r.Infinite {
		return -1
	}
	return r.ExpiresAt.Sub(now)
}

// ledger is the set of active records. It detects when effects end; the
// manager's per-type teardown handlers know how to undo them, so adding a
// durational effect never touches the sweep.
type ledger struct {
	records map[Type]*ActiveRecord
}

func newLedger() *ledger {
	return &ledger{records: make(map[Type]*ActiveRecord)}
}

func (l *ledger) get(t Type) *ActiveRecord {
	if l == nil {
		return nil
	}
	return l.records[t]
}

func (l *ledger) put(rec *ActiveRecord) {
	if l == nil || rec == nil {
		return
	}
	l.records[rec.Type] = rec
}

// remove detaches the record and cancels its pending timer, if any.
func (l *ledger) remove(t Type) *ActiveRecord {
	if l == nil {
		return nil
	}
	rec, ok := l.records[t]
	if !ok {
		return nil
	}
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
	delete(l.records, t)
	return rec
}

// expiredTypes partitions the current records and returns the expired ones in
// canonical type order.
func (l *ledger) expiredTypes(now time.Time) []Type {
	if l == nil || len(l.records) == 0 {
		return nil
	}
	var expired []Type
	for _, t := range allTypes {
		rec, ok := l.records[t]
		if !ok || rec.Infinite {
			continue
		}
		if !rec.ExpiresAt.After(now) {
			expired = append(expired, t)
		}
	}
	return expired
}

// activeTypes returns every recorded type in canonical order.
func (l *ledger) activeTypes() []Type {
	if l == nil || len(l.records) == 0 {
		return nil
	}
	var active []Type
	for _, t := range allTypes {
		if _, ok := l.records[t]; ok {
			active = append(active, t)
		}
	}
	return active
}

func (l *ledger) size() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

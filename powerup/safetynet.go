package powerup

import (
	"time"

	"github.com/google/uuid"
)

// SafetyNetResource is the singleton consumable granted by the safety-net
// effect. States: absent, active, consumed. A fresh grant always replaces a
// stale instance without its consumption animation; a global clear destroys
// it directly.
type SafetyNetResource struct {
	ID        string
	CreatedAt time.Time
	consumed  bool
}

func newSafetyNetResource(now time.Time) *SafetyNetResource {
	return &SafetyNetResource{ID: uuid.New().String(), CreatedAt: now}
}

// Destruction reasons carried on safety-net lifecycle events. "consumed" is
// the only transition that plays the destruction animation externally.
const (
	safetyNetReasonConsumed = "consumed"
	safetyNetReasonReplaced = "replaced"
	safetyNetReasonCleared  = "cleared"
)

// SafetyNet returns a copy of the active resource, if one exists. Presentation
// code uses the ID to wire the physical collider.
func (m *Manager) SafetyNet() (SafetyNetResource, bool) {
	if m == nil {
		return SafetyNetResource{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.safetyNet == nil {
		return SafetyNetResource{}, false
	}
	return *m.safetyNet, true
}

// ConsumeSafetyNet handles a qualifying contact event from any ball. Consuming
// an absent or already-consumed resource is a no-op, guarding against two
// near-simultaneous contacts in the same tick.
func (m *Manager) ConsumeSafetyNet() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	net := m.safetyNet
	if net == nil || net.consumed {
		return
	}
	net.consumed = true
	m.safetyNet = nil
	m.expireLocked(TypeSafetyNet, safetyNetReasonConsumed)
	m.emitSafetyNetDestroyed(net.ID, safetyNetReasonConsumed)
}

// grantSafetyNet is the safety-net activation handler. The record is tracked
// with an infinite expiry purely so presentation code can show an "active, no
// timer" indicator; record and resource are removed together.
func (m *Manager) grantSafetyNet(now time.Time) {
	if old := m.safetyNet; old != nil {
		m.safetyNet = nil
		m.emitSafetyNetDestroyed(old.ID, safetyNetReasonReplaced)
	}
	net := newSafetyNetResource(now)
	m.safetyNet = net

	rec := m.ledger.get(TypeSafetyNet)
	if rec == nil {
		rec = &ActiveRecord{Type: TypeSafetyNet, AppliedAt: now, Infinite: true}
		m.ledger.put(rec)
	} else {
		rec.AppliedAt = now
		rec.Infinite = true
	}
	m.emitSafetyNetCreated(net.ID)
	m.emitApplied(TypeSafetyNet, 0, 0)
}

// teardownSafetyNet runs when the safety-net record is force-expired by a
// clear. Consumption detaches the resource before expiring the record, so
// reaching here with a live resource means no animation should play.
func (m *Manager) teardownSafetyNet() {
	net := m.safetyNet
	if net == nil {
		return
	}
	m.safetyNet = nil
	m.emitSafetyNetDestroyed(net.ID, safetyNetReasonCleared)
}

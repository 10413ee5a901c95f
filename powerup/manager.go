package powerup

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"block-party/server/logging"
	powerupevents "block-party/server/logging/powerups"
	"block-party/server/sched"
	"block-party/server/speed"
)

// Expiry reasons carried on expired events.
const (
	reasonExpired = "expired"
	reasonCleared = "cleared"
)

// DifficultyStore persists the clamped difficulty factor across sessions.
type DifficultyStore interface {
	SaveDifficultyFactor(f float64) error
}

// Config wires the manager to its collaborators. Every field is optional;
// missing collaborators degrade to safe no-ops so a partially-wired manager
// (tests, headless tools) never faults.
type Config struct {
	Clock       sched.Clock
	Speed       *speed.Model
	Balls       BallPool
	Paddle      Paddle
	Bricks      BrickField
	PowerBall   *Flag
	Publisher   logging.Publisher
	Definitions map[Type]Definition
	Store       DifficultyStore
	// Rand supplies uniform draws in [0,1) for the Mystery re-roll. Seeded
	// in tests for determinism.
	Rand func() float64
	// OnExtraLife is invoked when the instant life-grant effect fires;
	// life-count bookkeeping lives outside this system.
	OnExtraLife func()
}

// Manager is the effect scheduler: it dispatches pickup collections, tracks
// active records and their expiry, propagates effects onto spawned balls, and
// owns the safety-net resource. All mutation happens under one mutex so
// deferred timer callbacks and the tick loop never race.
type Manager struct {
	mu          sync.Mutex
	clock       sched.Clock
	speed       *speed.Model
	balls       BallPool
	paddle      Paddle
	bricks      BrickField
	powerBall   *Flag
	publisher   logging.Publisher
	defs        map[Type]Definition
	store       DifficultyStore
	rand        func() float64
	onExtraLife func()

	activations map[Type]func(time.Time)
	teardowns   map[Type]func()
	propagation []PropagationConfig
	ledger      *ledger
	safetyNet   *SafetyNetResource
	tick        uint64
}

// NewManager constructs a manager from cfg, filling defaults for anything
// left nil.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		clock:       cfg.Clock,
		speed:       cfg.Speed,
		balls:       cfg.Balls,
		paddle:      cfg.Paddle,
		bricks:      cfg.Bricks,
		powerBall:   cfg.PowerBall,
		publisher:   cfg.Publisher,
		store:       cfg.Store,
		rand:        cfg.Rand,
		onExtraLife: cfg.OnExtraLife,
		ledger:      newLedger(),
	}
	if m.clock == nil {
		m.clock = sched.SystemClock{}
	}
	if m.speed == nil {
		m.speed = speed.NewModel(1)
	}
	if m.powerBall == nil {
		m.powerBall = &Flag{}
	}
	if m.publisher == nil {
		m.publisher = logging.NopPublisher()
	}
	if m.rand == nil {
		m.rand = rand.Float64
	}
	m.defs = make(map[Type]Definition, len(cfg.Definitions))
	if cfg.Definitions == nil {
		m.defs = DefaultDefinitions()
	} else {
		for t, def := range cfg.Definitions {
			def.Type = t
			m.defs[t] = def
		}
	}
	m.buildRegistry()
	m.propagation = m.buildPropagationTable()
	return m
}

// Collect dispatches one pickup collection. Unknown or unregistered types do
// nothing; a stale pickup reference must never crash the session. The
// collected notification fires for every dispatched type, instant or
// durational.
func (m *Manager) Collect(t Type) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	activate, ok := m.activations[t]
	if !ok {
		return
	}
	activate(m.clock.Now())
	m.emitCollected(t)
}

// Update advances the per-tick sweep: expired records are notified and
// removed in one pass. Effects activated earlier in the same tick are always
// visible to this sweep.
func (m *Manager) Update(now time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick++
	for _, t := range m.ledger.expiredTypes(now) {
		m.expireLocked(t, reasonExpired)
	}
}

// Clear force-expires every record (durational, stacking, and infinite),
// cancels all pending deferred callbacks, and reverts paddle and speed state.
// Used on life loss, level completion, and session end; the ledger is empty
// afterwards regardless of entry point.
func (m *Manager) Clear() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.ledger.activeTypes() {
		m.expireLocked(t, reasonCleared)
	}
	m.speed.ClearNamedEffects()
	m.powerBall.clear()
	if m.paddle != nil {
		m.paddle.ResetAllEffects()
	}
}

// RollDrop maps a uniform draw onto the weighted drop pool and returns the
// selected type. Unregistered types are excluded even when they carry a
// weight, so a pickup never drops that would do nothing on collection.
func (m *Manager) RollDrop(draw float64) (Type, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]Weighted[Type], 0, len(m.defs))
	for _, t := range allTypes {
		def, ok := m.defs[t]
		if !ok || def.DropWeight <= 0 {
			continue
		}
		if _, registered := m.activations[t]; !registered {
			continue
		}
		items = append(items, Weighted[Type]{Value: t, Weight: def.DropWeight})
	}
	return Pick(items, draw)
}

// ActiveEffects returns value copies of the current records in canonical
// order, for timer-bar presentation.
func (m *Manager) ActiveEffects() []ActiveRecord {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	types := m.ledger.activeTypes()
	out := make([]ActiveRecord, 0, len(types))
	for _, t := range types {
		rec := *m.ledger.get(t)
		rec.timer = nil
		out = append(out, rec)
	}
	return out
}

// ActiveEffect returns a copy of the record for t, if one exists.
func (m *Manager) ActiveEffect(t Type) (ActiveRecord, bool) {
	if m == nil {
		return ActiveRecord{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.ledger.get(t)
	if rec == nil {
		return ActiveRecord{}, false
	}
	out := *rec
	out.timer = nil
	return out, true
}

// Definition returns the static definition for t.
func (m *Manager) Definition(t Type) (Definition, bool) {
	if m == nil {
		return Definition{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.defs[t]
	return def, ok
}

// SetDifficultyFactor clamps, applies, and persists the difficulty factor.
// The clamped value is returned alongside any persistence error.
func (m *Manager) SetDifficultyFactor(f float64) (float64, error) {
	if m == nil {
		return 0, nil
	}
	clamped := m.speed.SetDifficultyFactor(f)
	if m.store != nil {
		if err := m.store.SaveDifficultyFactor(clamped); err != nil {
			return clamped, err
		}
	}
	return clamped, nil
}

// CurrentTick reports how many sweeps have run.
func (m *Manager) CurrentTick() uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}

// activateDurationalLocked inserts or refreshes the single record for t and
// re-arms its deferred teardown callback. Re-collection restarts the full
// duration; it never extends, and never inserts a second record. The
// stacking effect additionally increments its counter, unbounded at this
// layer.
func (m *Manager) activateDurationalLocked(t Type, now time.Time) *ActiveRecord {
	def, ok := m.defs[t]
	if !ok || def.Duration <= 0 {
		return nil
	}
	rec := m.ledger.get(t)
	if rec == nil {
		rec = &ActiveRecord{Type: t}
		m.ledger.put(rec)
	}
	if t == TypeFireball {
		rec.StackCount++
	}
	rec.AppliedAt = now
	rec.ExpiresAt = now.Add(def.Duration)
	if rec.timer != nil {
		// A stale callback must not tear down a just-refreshed effect.
		rec.timer.Stop()
	}
	expected := rec.ExpiresAt
	rec.timer = m.clock.After(def.Duration, func() {
		m.onTimerFired(t, expected)
	})
	m.emitApplied(t, def.Duration.Milliseconds(), rec.StackCount)
	return rec
}

// onTimerFired is the deferred-callback half of the two scheduling
// mechanisms. Whichever of sweep and timer fires first performs teardown; the
// loser must find the record gone or refreshed and do nothing.
func (m *Manager) onTimerFired(t Type, expected time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.ledger.get(t)
	if rec == nil || rec.Infinite || !rec.ExpiresAt.Equal(expected) {
		return
	}
	m.expireLocked(t, reasonExpired)
}

// expireLocked emits the expiration notification, removes the record (and its
// pending timer), then runs the type's teardown handler. Idempotent: expiring
// an absent record is a no-op.
func (m *Manager) expireLocked(t Type, reason string) {
	rec := m.ledger.get(t)
	if rec == nil {
		return
	}
	m.emitExpired(t, reason)
	m.ledger.remove(t)
	if teardown := m.teardowns[t]; teardown != nil {
		teardown()
	}
}

func (m *Manager) emitCollected(t Type) {
	powerupevents.Collected(context.Background(), m.publisher, m.tick, powerupevents.CollectedPayload{PowerUp: string(t)})
}

func (m *Manager) emitApplied(t Type, durationMs int64, stackCount int) {
	payload := powerupevents.AppliedPayload{PowerUp: string(t), DurationMs: durationMs}
	if t == TypeFireball {
		payload.StackCount = stackCount
	}
	powerupevents.Applied(context.Background(), m.publisher, m.tick, payload)
}

func (m *Manager) emitExpired(t Type, reason string) {
	powerupevents.Expired(context.Background(), m.publisher, m.tick, powerupevents.ExpiredPayload{PowerUp: string(t), Reason: reason})
}

func (m *Manager) emitRevealed(t Type) {
	powerupevents.Revealed(context.Background(), m.publisher, m.tick, powerupevents.RevealedPayload{ResolvedType: string(t)})
}

func (m *Manager) emitSafetyNetCreated(id string) {
	powerupevents.SafetyNetCreated(context.Background(), m.publisher, m.tick, powerupevents.SafetyNetPayload{ResourceID: id})
}

func (m *Manager) emitSafetyNetDestroyed(id, reason string) {
	powerupevents.SafetyNetDestroyed(context.Background(), m.publisher, m.tick, powerupevents.SafetyNetPayload{ResourceID: id, Reason: reason})
}

func (m *Manager) emitExtraLife() {
	powerupevents.ExtraLife(context.Background(), m.publisher, m.tick)
}

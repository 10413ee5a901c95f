// Package speed maintains the multiplicative speed composition consumed by
// ball movement. Three independent layers keep "why is the ball moving at
// this speed" auditable: a persisted difficulty factor, a session-scoped
// level factor, and named temporary-effect factors.
package speed

import (
	"math"
	"sort"
	"sync"
)

// Difficulty factor bounds. Out-of-range input (including malformed persisted
// values) is clamped, never rejected.
const (
	MinDifficultyFactor = 0.5
	MaxDifficultyFactor = 2.0
)

// Model composes base * difficulty * level * product(effect factors).
type Model struct {
	mu         sync.RWMutex
	base       float64
	difficulty float64
	level      float64
	effects    map[string]float64
}

// NewModel constructs a model with neutral difficulty and level factors.
func NewModel(base float64) *Model {
	return &Model{
		base:       base,
		difficulty: 1.0,
		level:      1.0,
		effects:    make(map[string]float64),
	}
}

// SetDifficultyFactor clamps f into the safe range and stores it. The clamped
// value is returned so callers can persist what was actually applied.
func (m *Model) SetDifficultyFactor(f float64) float64 {
	clamped := clampDifficulty(f)
	if m == nil {
		return clamped
	}
	m.mu.Lock()
	m.difficulty = clamped
	m.mu.Unlock()
	return clamped
}

// DifficultyFactor returns the stored difficulty factor.
func (m *Model) DifficultyFactor() float64 {
	if m == nil {
		return 1.0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.difficulty
}

// SetLevelFactor replaces the session-scoped level factor wholesale. It is
// intended to change once per level load and is never persisted.
func (m *Model) SetLevelFactor(f float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.level = f
	m.mu.Unlock()
}

// ApplyNamedEffect stores one factor under name. Re-applying the same name
// replaces the stored factor rather than compounding it, so back-to-back
// pickups of the same speed effect do not stack multiplicatively.
func (m *Model) ApplyNamedEffect(name string, factor float64) {
	if m == nil || name == "" {
		return
	}
	m.mu.Lock()
	m.effects[name] = factor
	m.mu.Unlock()
}

// RemoveNamedEffect deletes the named slot, restoring EffectiveSpeed to what
// it would be without that effect. Removing an absent name is a no-op.
func (m *Model) RemoveNamedEffect(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	delete(m.effects, name)
	m.mu.Unlock()
}

// ClearNamedEffects empties the effect-factor map, restoring the
// base*difficulty*level baseline. Used by the global clear.
func (m *Model) ClearNamedEffects() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.effects = make(map[string]float64)
	m.mu.Unlock()
}

// EffectiveSpeed folds all layers in deterministic order.
func (m *Model) EffectiveSpeed() float64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := m.base * m.difficulty * m.level
	if len(m.effects) == 0 {
		return total
	}
	names := make([]string, 0, len(m.effects))
	for name := range m.effects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		total *= m.effects[name]
	}
	return total
}

// EffectFactor reports the stored factor for name, if present.
func (m *Model) EffectFactor(name string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	factor, ok := m.effects[name]
	return factor, ok
}

func clampDifficulty(f float64) float64 {
	if math.IsNaN(f) {
		return 1.0
	}
	if f < MinDifficultyFactor {
		return MinDifficultyFactor
	}
	if f > MaxDifficultyFactor {
		return MaxDifficultyFactor
	}
	return f
}

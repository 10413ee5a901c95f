package powerup

import (
	"sync/atomic"
	"time"
)

// Ball is the narrow per-ball handle this system mutates. Implementations own
// the physics and visuals; the scheduler only flips effect state through
// these calls. A non-positive duration on SetFloating/SetElectric clears the
// state immediately, which the teardown path relies on.
//
// Every mutator must be idempotent-safe: applying an effect to a ball that
// already carries it must not double-apply visual or mechanical state.
type Ball interface {
	ID() string
	Position() (x, y float64)
	IsLaunched() bool
	SetFloating(d time.Duration)
	SetElectric(d time.Duration)
	SetFireballLevel(level int)
	ClearFireballLevel()
	ArmOneShotBomb()
	ClearOneShotBomb()
	ApplyVisualEffect(kind string)
	RemoveVisualEffect(kind string)
}

// BallPool exposes the live-ball set. The pool is owned and mutated by the
// ball/paddle collaborator; this system only reads it and requests spawns.
type BallPool interface {
	ActiveBalls() []Ball
	SpawnBalls(count int, originX, originY float64) []Ball
}

// Paddle is the paddle-side effect handle. The paddle times out its own wide
// and wobbly states; ResetAllEffects reverts everything immediately on a
// global clear.
type Paddle interface {
	SetWide(d time.Duration)
	SetWobbly(d time.Duration)
	ResetAllEffects()
}

// BrickField receives the one-shot field-wide actions (BassDrop).
type BrickField interface {
	DamageAll(amount int)
}

// Flag is the shared power-ball flag read by the brick drop-chance
// calculation. The manager is the single writer; external readers call
// Active. Passed by reference to both systems at construction instead of
// living as ambient global state.
type Flag struct {
	active atomic.Bool
}

func (f *Flag) set() {
	if f != nil {
		f.active.Store(true)
	}
}

func (f *Flag) clear() {
	if f != nil {
		f.active.Store(false)
	}
}

// Active reports whether the power-ball effect is currently running.
func (f *Flag) Active() bool {
	if f == nil {
		return false
	}
	return f.active.Load()
}

package powerup

import "time"

// buildRegistry wires the activation and teardown handlers. Adding a type
// means adding one activation entry and, for durational effects, one teardown
// entry; the sweep and dispatch paths never change. Types left out of the map
// (MagnetPaddle, CongaLine, Spotlight) dispatch as safe no-ops.
func (m *Manager) buildRegistry() {
	m.activations = map[Type]func(time.Time){
		TypeBalloon:       m.activateBalloon,
		TypeCake:          m.activateCake,
		TypeDrinks:        m.activateDrinks,
		TypeDisco:         m.activateDisco,
		TypeMystery:       m.activateMystery,
		TypePowerBall:     m.activatePowerBall,
		TypeFireball:      m.activateFireball,
		TypeElectricBall:  m.activateElectricBall,
		TypePartyPopper:   m.activatePartyPopper,
		TypeBassDrop:      m.activateBassDrop,
		TypeSafetyNet:     m.grantSafetyNet,
		TypeExtraLife:     m.activateExtraLife,
		TypeConfettiBurst: m.activateConfettiBurst,
		TypeDanceFloor:    m.activateDanceFloor,
	}
	m.teardowns = map[Type]func(){
		TypeBalloon:      m.teardownBalloon,
		TypePowerBall:    m.teardownPowerBall,
		TypeFireball:     m.teardownFireball,
		TypeElectricBall: m.teardownElectricBall,
		TypeSafetyNet:    m.teardownSafetyNet,
	}
}

// Registered reports whether the dispatcher has an activation handler for t.
func (m *Manager) Registered(t Type) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.activations[t]
	return ok
}

func (m *Manager) activateBalloon(now time.Time) {
	// Without a ledger record there is no expiry path; applying the speed
	// factor anyway would leave it stuck until a global clear.
	if m.activateDurationalLocked(TypeBalloon, now) == nil {
		return
	}
	m.speed.ApplyNamedEffect(balloonSpeedSlot, balloonSpeedFactor)
	m.fanOutLocked(TypeBalloon)
}

func (m *Manager) teardownBalloon() {
	m.speed.RemoveNamedEffect(balloonSpeedSlot)
	m.forEachBall(func(ball Ball) {
		ball.SetFloating(0)
		ball.RemoveVisualEffect(string(TypeBalloon))
	})
}

func (m *Manager) activateCake(now time.Time) {
	rec := m.activateDurationalLocked(TypeCake, now)
	if m.paddle != nil && rec != nil {
		m.paddle.SetWide(rec.Remaining(now))
	}
}

func (m *Manager) activateDrinks(now time.Time) {
	rec := m.activateDurationalLocked(TypeDrinks, now)
	if m.paddle != nil && rec != nil {
		m.paddle.SetWobbly(rec.Remaining(now))
	}
}

func (m *Manager) activatePowerBall(now time.Time) {
	if m.activateDurationalLocked(TypePowerBall, now) == nil {
		return
	}
	m.powerBall.set()
}

func (m *Manager) teardownPowerBall() {
	m.powerBall.clear()
}

func (m *Manager) activateFireball(now time.Time) {
	m.activateDurationalLocked(TypeFireball, now)
	m.fanOutLocked(TypeFireball)
}

// teardownFireball clears the full stack on every live ball. Expiry is
// all-or-nothing; there is no partial decay.
func (m *Manager) teardownFireball() {
	m.forEachBall(func(ball Ball) {
		ball.ClearFireballLevel()
	})
}

func (m *Manager) activateElectricBall(now time.Time) {
	m.activateDurationalLocked(TypeElectricBall, now)
	m.fanOutLocked(TypeElectricBall)
}

func (m *Manager) teardownElectricBall() {
	m.forEachBall(func(ball Ball) {
		ball.SetElectric(0)
	})
}

// activateDisco spawns extra balls and immediately runs the propagation table
// over them, so effects active at spawn time (and only those configured to
// propagate) are inherited.
func (m *Manager) activateDisco(now time.Time) {
	if m.balls == nil {
		m.emitApplied(TypeDisco, 0, 0)
		return
	}
	originX, originY := m.spawnOriginLocked()
	spawned := m.balls.SpawnBalls(discoBallCount, originX, originY)
	m.applyToSpawnedLocked(spawned)
	m.emitApplied(TypeDisco, 0, 0)
}

func (m *Manager) activatePartyPopper(now time.Time) {
	m.forEachBall(func(ball Ball) {
		ball.ArmOneShotBomb()
	})
	m.emitApplied(TypePartyPopper, 0, 0)
}

func (m *Manager) activateBassDrop(now time.Time) {
	if m.bricks != nil {
		m.bricks.DamageAll(bassDropDamage)
	}
	m.emitApplied(TypeBassDrop, 0, 0)
}

func (m *Manager) activateExtraLife(now time.Time) {
	if m.onExtraLife != nil {
		m.onExtraLife()
	}
	m.emitExtraLife()
	m.emitApplied(TypeExtraLife, 0, 0)
}

func (m *Manager) activateConfettiBurst(now time.Time) {
	m.emitApplied(TypeConfettiBurst, 0, 0)
}

func (m *Manager) activateDanceFloor(now time.Time) {
	m.emitApplied(TypeDanceFloor, 0, 0)
}

// activateMystery re-rolls a concrete effect uniformly over the registered
// types excluding itself, announces the reveal, then dispatches exactly as a
// direct collection of that type would.
func (m *Manager) activateMystery(now time.Time) {
	resolved, ok := m.rollMysteryLocked()
	if !ok {
		return
	}
	m.emitRevealed(resolved)
	if activate := m.activations[resolved]; activate != nil {
		activate(now)
	}
}

func (m *Manager) rollMysteryLocked() (Type, bool) {
	candidates := make([]Type, 0, len(m.activations))
	for _, t := range allTypes {
		if t == TypeMystery {
			continue
		}
		if _, ok := m.activations[t]; ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	idx := int(m.rand() * float64(len(candidates)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	return candidates[idx], true
}

func (m *Manager) forEachBall(fn func(Ball)) {
	if m.balls == nil || fn == nil {
		return
	}
	for _, ball := range m.balls.ActiveBalls() {
		if ball != nil {
			fn(ball)
		}
	}
}

// spawnOriginLocked places Disco spawns at the first live launched ball, so
// new balls burst out of the action rather than the gutter.
func (m *Manager) spawnOriginLocked() (float64, float64) {
	if m.balls == nil {
		return 0, 0
	}
	var fallback Ball
	for _, ball := range m.balls.ActiveBalls() {
		if ball == nil {
			continue
		}
		if fallback == nil {
			fallback = ball
		}
		if ball.IsLaunched() {
			return ball.Position()
		}
	}
	if fallback != nil {
		return fallback.Position()
	}
	return 0, 0
}

package powerup

// PropagationConfig declares, for one ball-targeting effect, whether it is
// copied onto balls spawned while it is active and whether it is pushed onto
// every live ball at the moment of collection. Entries are independent; no
// entry may depend on application order.
type PropagationConfig struct {
	Type            Type
	PropagateToNew  bool
	ApplyToAll      bool
	ApplyToBall     func(Ball)
	Active          func() bool
}

// buildPropagationTable encodes the per-type propagation policy. The Balloon
// row deliberately does not propagate to new balls: every spawned ball
// compounding the slow effect would trap the player in unplayable
// sluggishness.
func (m *Manager) buildPropagationTable() []PropagationConfig {
	return []PropagationConfig{
		{
			Type:           TypeFireball,
			PropagateToNew: true,
			ApplyToAll:     true,
			ApplyToBall:    m.applyFireballToBall,
			Active:         func() bool { return m.ledger.get(TypeFireball) != nil },
		},
		{
			Type:           TypeElectricBall,
			PropagateToNew: true,
			ApplyToAll:     true,
			ApplyToBall:    m.applyElectricToBall,
			Active:         func() bool { return m.ledger.get(TypeElectricBall) != nil },
		},
		{
			Type:           TypeBalloon,
			PropagateToNew: false,
			ApplyToAll:     true,
			ApplyToBall:    m.applyBalloonToBall,
			Active:         func() bool { return m.ledger.get(TypeBalloon) != nil },
		},
	}
}

// OnBallsSpawned copies every active, propagating effect onto freshly spawned
// balls. External multi-ball producers call this once per spawn batch; the
// Disco handler calls it internally.
func (m *Manager) OnBallsSpawned(balls []Ball) {
	if m == nil || len(balls) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyToSpawnedLocked(balls)
}

func (m *Manager) applyToSpawnedLocked(balls []Ball) {
	for _, ball := range balls {
		if ball == nil {
			continue
		}
		for _, cfg := range m.propagation {
			if !cfg.PropagateToNew {
				continue
			}
			if cfg.Active == nil || !cfg.Active() {
				continue
			}
			if cfg.ApplyToBall != nil {
				cfg.ApplyToBall(ball)
			}
		}
	}
}

// fanOutLocked pushes one effect onto every currently-live ball at collection
// time. Unconditional for every configured type; it does not consult
// PropagateToNew, which only governs future spawns.
func (m *Manager) fanOutLocked(t Type) {
	var apply func(Ball)
	for _, cfg := range m.propagation {
		if cfg.Type == t && cfg.ApplyToAll {
			apply = cfg.ApplyToBall
			break
		}
	}
	if apply == nil || m.balls == nil {
		return
	}
	for _, ball := range m.balls.ActiveBalls() {
		if ball != nil {
			apply(ball)
		}
	}
}

func (m *Manager) applyFireballToBall(ball Ball) {
	rec := m.ledger.get(TypeFireball)
	if rec == nil {
		return
	}
	ball.SetFireballLevel(rec.StackCount)
}

func (m *Manager) applyElectricToBall(ball Ball) {
	rec := m.ledger.get(TypeElectricBall)
	if rec == nil {
		return
	}
	ball.SetElectric(rec.Remaining(m.clock.Now()))
}

func (m *Manager) applyBalloonToBall(ball Ball) {
	rec := m.ledger.get(TypeBalloon)
	if rec == nil {
		return
	}
	ball.SetFloating(rec.Remaining(m.clock.Now()))
	ball.ApplyVisualEffect(string(TypeBalloon))
}

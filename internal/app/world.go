package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"block-party/server/powerup"
)

// The demo world is the integration surface for the scheduler: an in-memory
// ball pool, paddle, and brick field that implement the collaborator
// interfaces honestly enough to observe effect state from the status
// endpoint. It owns no game rules.

type demoBall struct {
	mu            sync.Mutex
	id            string
	x, y          float64
	launched      bool
	floatingUntil time.Time
	electricUntil time.Time
	fireballLevel int
	bombArmed     bool
	visuals       map[string]struct{}
}

func newDemoBall(x, y float64, launched bool) *demoBall {
	return &demoBall{
		id:       uuid.New().String(),
		x:        x,
		y:        y,
		launched: launched,
		visuals:  make(map[string]struct{}),
	}
}

func (b *demoBall) ID() string {
	return b.id
}

func (b *demoBall) Position() (float64, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.x, b.y
}

func (b *demoBall) IsLaunched() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launched
}

func (b *demoBall) SetFloating(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d <= 0 {
		b.floatingUntil = time.Time{}
		return
	}
	b.floatingUntil = time.Now().Add(d)
}

func (b *demoBall) SetElectric(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d <= 0 {
		b.electricUntil = time.Time{}
		return
	}
	b.electricUntil = time.Now().Add(d)
}

func (b *demoBall) SetFireballLevel(level int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fireballLevel = level
}

func (b *demoBall) ClearFireballLevel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fireballLevel = 0
}

func (b *demoBall) ArmOneShotBomb() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bombArmed = true
}

func (b *demoBall) ClearOneShotBomb() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bombArmed = false
}

func (b *demoBall) ApplyVisualEffect(kind string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visuals[kind] = struct{}{}
}

func (b *demoBall) RemoveVisualEffect(kind string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.visuals, kind)
}

func (b *demoBall) snapshot() ballStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	visuals := make([]string, 0, len(b.visuals))
	for kind := range b.visuals {
		visuals = append(visuals, kind)
	}
	return ballStatus{
		ID:            b.id,
		Floating:      time.Now().Before(b.floatingUntil),
		Electric:      time.Now().Before(b.electricUntil),
		FireballLevel: b.fireballLevel,
		BombArmed:     b.bombArmed,
		Visuals:       visuals,
	}
}

type demoPool struct {
	mu    sync.Mutex
	balls []*demoBall
}

func newDemoPool() *demoPool {
	pool := &demoPool{}
	pool.balls = append(pool.balls, newDemoBall(400, 500, true))
	return pool
}

func (p *demoPool) ActiveBalls() []powerup.Ball {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]powerup.Ball, 0, len(p.balls))
	for _, ball := range p.balls {
		out = append(out, ball)
	}
	return out
}

func (p *demoPool) SpawnBalls(count int, originX, originY float64) []powerup.Ball {
	p.mu.Lock()
	defer p.mu.Unlock()
	spawned := make([]powerup.Ball, 0, count)
	for i := 0; i < count; i++ {
		ball := newDemoBall(originX, originY, true)
		p.balls = append(p.balls, ball)
		spawned = append(spawned, ball)
	}
	return spawned
}

func (p *demoPool) statuses() []ballStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ballStatus, 0, len(p.balls))
	for _, ball := range p.balls {
		out = append(out, ball.snapshot())
	}
	return out
}

type demoPaddle struct {
	mu          sync.Mutex
	wideUntil   time.Time
	wobblyUntil time.Time
}

func (p *demoPaddle) SetWide(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		p.wideUntil = time.Time{}
		return
	}
	p.wideUntil = time.Now().Add(d)
}

func (p *demoPaddle) SetWobbly(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		p.wobblyUntil = time.Time{}
		return
	}
	p.wobblyUntil = time.Now().Add(d)
}

func (p *demoPaddle) ResetAllEffects() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wideUntil = time.Time{}
	p.wobblyUntil = time.Time{}
}

func (p *demoPaddle) status() paddleStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return paddleStatus{
		Wide:   time.Now().Before(p.wideUntil),
		Wobbly: time.Now().Before(p.wobblyUntil),
	}
}

type demoBricks struct {
	mu           sync.Mutex
	damageEvents int
}

func (b *demoBricks) DamageAll(amount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount > 0 {
		b.damageEvents++
	}
}

func (b *demoBricks) damageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.damageEvents
}

type ballStatus struct {
	ID            string   `json:"id"`
	Floating      bool     `json:"floating"`
	Electric      bool     `json:"electric"`
	FireballLevel int      `json:"fireballLevel"`
	BombArmed     bool     `json:"bombArmed"`
	Visuals       []string `json:"visuals,omitempty"`
}

type paddleStatus struct {
	Wide   bool `json:"wide"`
	Wobbly bool `json:"wobbly"`
}

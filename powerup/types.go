// Package powerup implements the timed-effect scheduler behind every pickup
// in the game: which effect a drop grants, which effects are currently
// active, when they expire, and whether balls spawned mid-effect inherit
// them. It owns no physics and renders nothing; collaborators are consumed
// through the narrow interfaces in interfaces.go and observed through the
// logging event surface.
package powerup

import "time"

// Type identifies one pickup effect. The set is closed; the dispatcher wires
// a subset at any given time and treats the rest as safe no-ops.
type Type string

const (
	TypeBalloon       Type = "balloon"
	TypeCake          Type = "cake"
	TypeDrinks        Type = "drinks"
	TypeDisco         Type = "disco"
	TypeMystery       Type = "mystery"
	TypePowerBall     Type = "power-ball"
	TypeFireball      Type = "fireball"
	TypeElectricBall  Type = "electric-ball"
	TypePartyPopper   Type = "party-popper"
	TypeBassDrop      Type = "bass-drop"
	TypeMagnetPaddle  Type = "magnet-paddle"
	TypeSafetyNet     Type = "safety-net"
	TypeExtraLife     Type = "extra-life"
	TypeConfettiBurst Type = "confetti-burst"
	TypeCongaLine     Type = "conga-line"
	TypeSpotlight     Type = "spotlight"
	TypeDanceFloor    Type = "dance-floor"
)

// allTypes fixes the iteration order for drop buckets, sweeps, and snapshots
// so selection and expiry stay deterministic under a seeded draw.
var allTypes = []Type{
	TypeBalloon,
	TypeCake,
	TypeDrinks,
	TypeDisco,
	TypeMystery,
	TypePowerBall,
	TypeFireball,
	TypeElectricBall,
	TypePartyPopper,
	TypeBassDrop,
	TypeMagnetPaddle,
	TypeSafetyNet,
	TypeExtraLife,
	TypeConfettiBurst,
	TypeCongaLine,
	TypeSpotlight,
	TypeDanceFloor,
}

// AllTypes returns every defined type in canonical order.
func AllTypes() []Type {
	return append([]Type(nil), allTypes...)
}

// Definition is the static per-type data. A zero Duration marks an instant or
// resource-granting effect that never takes a timed ledger entry. A zero
// DropWeight excludes the type from random drops; it may still be
// force-applied via Collect.
type Definition struct {
	Type       Type
	Color      string
	Icon       string
	Duration   time.Duration
	DropWeight float64
}

// DefaultDefinitions returns the compiled-in definition table. The catalog
// package overlays designer-authored tuning on top of these.
func DefaultDefinitions() map[Type]Definition {
	defs := map[Type]Definition{
		TypeBalloon:       {Color: "#ff5f9e", Icon: "balloon", Duration: 8 * time.Second, DropWeight: 2},
		TypeCake:          {Color: "#ffd166", Icon: "cake", Duration: 10 * time.Second, DropWeight: 2},
		TypeDrinks:        {Color: "#8be9fd", Icon: "drinks", Duration: 10 * time.Second, DropWeight: 2},
		TypeDisco:         {Color: "#bd93f9", Icon: "disco", DropWeight: 2},
		TypeMystery:       {Color: "#f1fa8c", Icon: "mystery", DropWeight: 2},
		TypePowerBall:     {Color: "#ff79c6", Icon: "power-ball", Duration: 10 * time.Second, DropWeight: 1.5},
		TypeFireball:      {Color: "#ff5555", Icon: "fireball", Duration: 8 * time.Second, DropWeight: 1.5},
		TypeElectricBall:  {Color: "#00e6e6", Icon: "electric-ball", Duration: 8 * time.Second, DropWeight: 1.5},
		TypePartyPopper:   {Color: "#ffb86c", Icon: "party-popper", DropWeight: 1},
		TypeBassDrop:      {Color: "#6272a4", Icon: "bass-drop", DropWeight: 1},
		TypeMagnetPaddle:  {Color: "#50fa7b", Icon: "magnet-paddle", Duration: 12 * time.Second, DropWeight: 0},
		TypeSafetyNet:     {Color: "#69ff94", Icon: "safety-net", DropWeight: 1},
		TypeExtraLife:     {Color: "#ff6e6e", Icon: "extra-life", DropWeight: 0.5},
		TypeConfettiBurst: {Color: "#f8f8f2", Icon: "confetti-burst", DropWeight: 1},
		TypeCongaLine:     {Color: "#ffcc66", Icon: "conga-line", DropWeight: 0},
		TypeSpotlight:     {Color: "#fffb96", Icon: "spotlight", Duration: 10 * time.Second, DropWeight: 0},
		TypeDanceFloor:    {Color: "#9580ff", Icon: "dance-floor", DropWeight: 1},
	}
	for t, def := range defs {
		def.Type = t
		defs[t] = def
	}
	return defs
}

// Gameplay tuning shared by activation handlers.
const (
	balloonSpeedFactor = 0.6
	discoBallCount     = 2
	bassDropDamage     = 1
)

// balloonSpeedSlot names the balloon factor inside the speed layer model.
const balloonSpeedSlot = "balloon"

// Package powerups defines the typed event surface emitted by the power-up
// scheduler: one helper per notification so call sites stay terse and the
// wire shape stays in one place.
package powerups

import (
	"context"

	"block-party/server/logging"
)

const (
	// EventCollected fires on every successful pickup collection, instant or
	// durational.
	EventCollected logging.EventType = "powerups.collected"
	// EventApplied fires when an effect becomes active or is refreshed.
	EventApplied logging.EventType = "powerups.applied"
	// EventExpired fires when an active record is removed, by natural expiry
	// or by clear.
	EventExpired logging.EventType = "powerups.expired"
	// EventRevealed fires when Mystery resolves to a concrete type.
	EventRevealed logging.EventType = "powerups.revealed"
	// EventSafetyNetCreated fires when the safety-net resource is granted.
	EventSafetyNetCreated logging.EventType = "powerups.safety_net.created"
	// EventSafetyNetDestroyed fires when the resource is consumed or cleared.
	EventSafetyNetDestroyed logging.EventType = "powerups.safety_net.destroyed"
	// EventExtraLife fires when the instant life-grant effect runs.
	EventExtraLife logging.EventType = "powerups.extra_life"
)

// CollectedPayload identifies which pickup type was collected.
type CollectedPayload struct {
	PowerUp string `json:"powerUp"`
}

// AppliedPayload captures an activation or refresh. DurationMs is zero for
// instants; StackCount is present only for the stacking effect.
type AppliedPayload struct {
	PowerUp    string `json:"powerUp"`
	DurationMs int64  `json:"durationMs,omitempty"`
	StackCount int    `json:"stackCount,omitempty"`
}

// ExpiredPayload identifies the record that was removed.
type ExpiredPayload struct {
	PowerUp string `json:"powerUp"`
	Reason  string `json:"reason,omitempty"`
}

// RevealedPayload carries the type Mystery resolved to.
type RevealedPayload struct {
	ResolvedType string `json:"resolvedType"`
}

// SafetyNetPayload references the concrete resource instance.
type SafetyNetPayload struct {
	ResourceID string `json:"resourceId"`
	Reason     string `json:"reason,omitempty"`
}

func Collected(ctx context.Context, pub logging.Publisher, tick uint64, payload CollectedPayload) {
	publish(ctx, pub, tick, EventCollected, payload)
}

func Applied(ctx context.Context, pub logging.Publisher, tick uint64, payload AppliedPayload) {
	publish(ctx, pub, tick, EventApplied, payload)
}

func Expired(ctx context.Context, pub logging.Publisher, tick uint64, payload ExpiredPayload) {
	publish(ctx, pub, tick, EventExpired, payload)
}

func Revealed(ctx context.Context, pub logging.Publisher, tick uint64, payload RevealedPayload) {
	publish(ctx, pub, tick, EventRevealed, payload)
}

func SafetyNetCreated(ctx context.Context, pub logging.Publisher, tick uint64, payload SafetyNetPayload) {
	publish(ctx, pub, tick, EventSafetyNetCreated, payload)
}

func SafetyNetDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, payload SafetyNetPayload) {
	publish(ctx, pub, tick, EventSafetyNetDestroyed, payload)
}

func ExtraLife(ctx context.Context, pub logging.Publisher, tick uint64) {
	publish(ctx, pub, tick, EventExtraLife, nil)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, eventType logging.EventType, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindPowerUp},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPowerUps,
		Payload:  payload,
	})
}

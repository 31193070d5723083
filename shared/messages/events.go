package messages

import "github.com/feralbyte/nightswarm-mp/shared/sim"

// GameSeed distributes the session seed. A client re-derives all procedural
// generation state from this single value.
type GameSeed struct {
	Seed uint32
}

// SpawnEntity is broadcast when the host creates a replicated entity. The
// kind-specific state carries the full creation parameters so a late joiner
// can reconstruct the entity from this message alone.
type SpawnEntity struct {
	Kind   sim.EntityKind
	ID     uint
	X, Y   float64
	Enemy  sim.EnemyState  // set when Kind == KindEnemy
	Pickup sim.PickupState // set when Kind == KindPickup
}

// SpawnProjectile is broadcast once per shot; each peer then simulates the
// projectile independently with identical kinematics. Projectiles are never
// snapshot-synced.
type SpawnProjectile struct {
	X, Y       float64
	DirX, DirY float64
	Speed      float64
	Damage     float64
	Pierce     int
	Crit       bool
	MaxRange   float64
	VisualID   int
}

// DamageDealt is broadcast for damage feedback. Receivers show a transient
// indicator only; authoritative hp arrives via the next snapshot.
type DamageDealt struct {
	TargetID   uint
	TargetKind sim.EntityKind
	Amount     float64
	Crit       bool
	X, Y       float64
}

// EntityDestroyed is broadcast when the host removes a replicated entity.
// Receivers drop the replica immediately, bypassing death-effect logic.
type EntityDestroyed struct {
	ID   uint
	Kind sim.EntityKind
	X, Y float64
}

// PlayerDeath marks a slot's player dead. Marking an already-dead player is
// a no-op, so duplicate delivery is harmless.
type PlayerDeath struct {
	Slot int
}

// PlayersRevived revives every dead player on the receiving peer.
type PlayersRevived struct {
	Timestamp int64
}

// XPGain grants shared experience: every peer applies the amount to each of
// its local players independently.
type XPGain struct {
	Amount float64
}

// PauseRequest is a client's proposal to pause or unpause. The host is the
// sole arbiter.
type PauseRequest struct {
	Paused bool
}

// PauseState is the host's authoritative pause flag, echoed to all peers
// including the requester.
type PauseState struct {
	Paused bool
}

// ResyncRequest asks the host for an immediate out-of-band full snapshot.
type ResyncRequest struct{}

// Package sim holds the entity state model and the deterministic simulation
// routines shared verbatim by the host and client roles. Everything here is
// plain data: no live references, no function-valued fields, so any value can
// cross the serialization boundary intact.
package sim

// EntityKind tags a replicated entity variant.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota + 1
	KindEnemy
	KindPickup
)

func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindPickup:
		return "pickup"
	}
	return "unknown"
}

// WeaponState is one serializable weapon entry in a player's loadout.
type WeaponState struct {
	ID       string
	Level    int
	Cooldown float64
}

// UpgradeState is one serializable upgrade stack owned by a player.
type UpgradeState struct {
	ID     string
	Stacks int
}

// PlayerState is the authoritative state of one occupied slot's player.
type PlayerState struct {
	Slot   int
	X, Y   float64
	Facing float64

	HP    float64
	MaxHP float64
	Level int
	XP    float64

	Alive        bool
	Invulnerable bool

	MoveSpeed    float64
	Damage       float64
	PickupRadius float64

	Weapons  []WeaponState
	Upgrades []UpgradeState

	// LastSequence is the newest input sequence the host has applied for
	// this slot. Host-written, used by clients for reconciliation.
	LastSequence uint32
}

// EnemyState is the authoritative state of one host-tracked enemy.
type EnemyState struct {
	X, Y   float64
	HP     float64
	MaxHP  float64
	Type   string
	Shield float64
	Armor  float64
}

// NoTarget marks a pickup that is not magnetized toward any player.
const NoTarget = -1

// PickupState is the authoritative state of one host-tracked pickup.
type PickupState struct {
	X, Y       float64
	Type       string
	Magnetized bool
	TargetSlot int
}

// ClonePlayer deep-copies a player state, including its weapon and upgrade
// slices, so the copy can be mutated without aliasing the original.
func ClonePlayer(p PlayerState) PlayerState {
	out := p
	out.Weapons = append([]WeaponState(nil), p.Weapons...)
	out.Upgrades = append([]UpgradeState(nil), p.Upgrades...)
	return out
}

package sim

// Base stats for a freshly spawned player. Progression mutates these through
// upgrades; the values here only matter for the first room.
const (
	BaseHP           = 100
	BaseMoveSpeed    = 140
	BaseDamage       = 10
	BasePickupRadius = 48
)

// DefaultPlayer returns the starting player state for a slot.
func DefaultPlayer(slot int) PlayerState {
	return PlayerState{
		Slot:         slot,
		HP:           BaseHP,
		MaxHP:        BaseHP,
		Level:        1,
		Alive:        true,
		MoveSpeed:    BaseMoveSpeed,
		Damage:       BaseDamage,
		PickupRadius: BasePickupRadius,
		Weapons:      []WeaponState{{ID: "bolt", Level: 1}},
	}
}

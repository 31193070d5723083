package messages

import "github.com/feralbyte/nightswarm-mp/shared/sim"

// EnemyEntry pairs an enemy's network ID with its full state.
type EnemyEntry struct {
	ID uint
	sim.EnemyState
}

// PickupEntry pairs a pickup's network ID with its full state.
type PickupEntry struct {
	ID uint
	sim.PickupState
}

// GameSnapshot is the host's periodic full-state broadcast: every occupied
// player slot, every live enemy and every live pickup. It is the source of
// truth for what currently exists; a receiver destroys any tracked entity
// whose ID is absent. Entries carry full creation parameters, so the same
// message doubles as the initial state transfer for a fresh join and as the
// resync response.
type GameSnapshot struct {
	Tick    uint64
	Paused  bool
	Players []sim.PlayerState
	Enemies []EnemyEntry
	Pickups []PickupEntry
}

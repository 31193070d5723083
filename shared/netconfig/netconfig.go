// Package netconfig defines lightweight constants shared between the host and
// client roles. It must have zero dependencies on any rendering library so the
// dedicated host binary stays headless.
package netconfig

import "time"

// ProtocolVersion gates joins: a client whose version string differs from the
// host's is rejected unless the host was started with version checking off.
const ProtocolVersion = "0.4.1"

// MaxPlayers is the size of the slot table. Slot 0 is always the host.
const MaxPlayers = 4

const (
	// DefaultTickRate is the host simulation rate in ticks per second.
	DefaultTickRate = 30

	// SnapshotRate is how many state snapshots the host broadcasts per
	// second. Deliberately lower than the tick rate to bound bandwidth.
	SnapshotRate = 15

	// SyncInterval is the time between periodic snapshot broadcasts.
	SyncInterval = time.Second / SnapshotRate

	// DesyncCheckInterval is how often each peer runs its local
	// consistency check.
	DesyncCheckInterval = 5 * time.Second

	// ReconnectWindow is how long a dropped client's slot stays reserved
	// before it is vacated and the leave is broadcast.
	ReconnectWindow = 30 * time.Second
)

const (
	// DefaultPort is the port a host listens on when none is given.
	DefaultPort = 7373

	// MasterHeartbeatInterval is how often a registered host refreshes its
	// entry on the master list.
	MasterHeartbeatInterval = 30 * time.Second
)

// InterpEpsilon is the distance below which a replica's rendered position is
// considered converged on its target.
const InterpEpsilon = 0.01

package messages

// JoinRequest is sent by a client after connecting to request a slot. A
// reconnecting client presents the token from its previous JoinAccepted to
// reclaim its old slot within the reconnection window.
type JoinRequest struct {
	Version        string
	PlayerName     string
	Character      string
	ReconnectToken string
}

// JoinAccepted is sent by the host when a join request is accepted.
type JoinAccepted struct {
	Slot           int
	SessionSeed    uint32
	ReconnectToken string
	HostName       string
	TickRate       int
}

// JoinRejected is sent by the host when a join request is rejected
// (session full, version mismatch).
type JoinRejected struct {
	Reason string
}

// SlotEntry is the read-only display form of one slot, safe to hand to
// party-roster UI.
type SlotEntry struct {
	Slot         int
	Occupied     bool
	Name         string
	Character    string
	Ready        bool
	Disconnected bool
}

// SlotTable is broadcast by the host whenever slot occupancy, readiness or
// character selection changes.
type SlotTable struct {
	Slots []SlotEntry
}

// CharacterSelect is sent by a client to change its selected loadout.
type CharacterSelect struct {
	Character string
}

// ReadyState is sent by a client to toggle its ready flag.
type ReadyState struct {
	Ready bool
}

// PeerDisconnected is broadcast by the host when a slot is vacated for good,
// after the reconnection window expires.
type PeerDisconnected struct {
	Slot int
}

package messages

// PlayerInput is sent from a client each frame with its movement and attack
// intent. The host applies it directly to that slot's authoritative player.
type PlayerInput struct {
	Sequence     uint32
	MoveX, MoveY float64
	Shooting     bool
	Aim          float64 // radians
	Timestamp    int64   // client clock, Unix ms
}

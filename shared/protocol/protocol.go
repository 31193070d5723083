// Package protocol is the closed enumeration of every message kind on the
// wire. Each kind maps to exactly one struct in shared/messages; transports
// dispatch on Kind so a role either handles a kind exactly once or not at
// all. Adding a message means touching the constant block, the two switches
// and the kind list below; the protocol tests fail if they fall out of step.
package protocol

import (
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
)

// Kind identifies a wire message type.
type Kind uint8

const (
	KindJoinRequest Kind = iota + 1
	KindJoinAccepted
	KindJoinRejected
	KindSlotTable
	KindCharacterSelect
	KindReadyState
	KindPeerDisconnected
	KindGameSeed
	KindGameSnapshot
	KindSpawnEntity
	KindSpawnProjectile
	KindDamageDealt
	KindEntityDestroyed
	KindPlayerInput
	KindPauseRequest
	KindPauseState
	KindPlayerDeath
	KindPlayersRevived
	KindXPGain
	KindResyncRequest
)

// Kinds lists every wire kind, in wire order. Used for exhaustive
// registration and by the schema export tool.
var Kinds = []Kind{
	KindJoinRequest,
	KindJoinAccepted,
	KindJoinRejected,
	KindSlotTable,
	KindCharacterSelect,
	KindReadyState,
	KindPeerDisconnected,
	KindGameSeed,
	KindGameSnapshot,
	KindSpawnEntity,
	KindSpawnProjectile,
	KindDamageDealt,
	KindEntityDestroyed,
	KindPlayerInput,
	KindPauseRequest,
	KindPauseState,
	KindPlayerDeath,
	KindPlayersRevived,
	KindXPGain,
	KindResyncRequest,
}

func (k Kind) String() string {
	switch k {
	case KindJoinRequest:
		return "join_request"
	case KindJoinAccepted:
		return "join_accepted"
	case KindJoinRejected:
		return "join_rejected"
	case KindSlotTable:
		return "slot_table"
	case KindCharacterSelect:
		return "character_select"
	case KindReadyState:
		return "ready_state"
	case KindPeerDisconnected:
		return "peer_disconnected"
	case KindGameSeed:
		return "game_seed"
	case KindGameSnapshot:
		return "game_snapshot"
	case KindSpawnEntity:
		return "spawn_entity"
	case KindSpawnProjectile:
		return "spawn_projectile"
	case KindDamageDealt:
		return "damage_dealt"
	case KindEntityDestroyed:
		return "entity_destroyed"
	case KindPlayerInput:
		return "player_input"
	case KindPauseRequest:
		return "pause_request"
	case KindPauseState:
		return "pause_state"
	case KindPlayerDeath:
		return "player_death"
	case KindPlayersRevived:
		return "players_revived"
	case KindXPGain:
		return "xp_gain"
	case KindResyncRequest:
		return "resync_request"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindOf maps a message value to its kind. The second return is false for
// anything that is not a wire message.
func KindOf(msg any) (Kind, bool) {
	switch msg.(type) {
	case messages.JoinRequest:
		return KindJoinRequest, true
	case messages.JoinAccepted:
		return KindJoinAccepted, true
	case messages.JoinRejected:
		return KindJoinRejected, true
	case messages.SlotTable:
		return KindSlotTable, true
	case messages.CharacterSelect:
		return KindCharacterSelect, true
	case messages.ReadyState:
		return KindReadyState, true
	case messages.PeerDisconnected:
		return KindPeerDisconnected, true
	case messages.GameSeed:
		return KindGameSeed, true
	case messages.GameSnapshot:
		return KindGameSnapshot, true
	case messages.SpawnEntity:
		return KindSpawnEntity, true
	case messages.SpawnProjectile:
		return KindSpawnProjectile, true
	case messages.DamageDealt:
		return KindDamageDealt, true
	case messages.EntityDestroyed:
		return KindEntityDestroyed, true
	case messages.PlayerInput:
		return KindPlayerInput, true
	case messages.PauseRequest:
		return KindPauseRequest, true
	case messages.PauseState:
		return KindPauseState, true
	case messages.PlayerDeath:
		return KindPlayerDeath, true
	case messages.PlayersRevived:
		return KindPlayersRevived, true
	case messages.XPGain:
		return KindXPGain, true
	case messages.ResyncRequest:
		return KindResyncRequest, true
	}
	return 0, false
}

// New returns a pointer to a fresh zero value of the kind's message struct,
// suitable as a decode target. Returns nil for an unknown kind.
func New(k Kind) any {
	switch k {
	case KindJoinRequest:
		return &messages.JoinRequest{}
	case KindJoinAccepted:
		return &messages.JoinAccepted{}
	case KindJoinRejected:
		return &messages.JoinRejected{}
	case KindSlotTable:
		return &messages.SlotTable{}
	case KindCharacterSelect:
		return &messages.CharacterSelect{}
	case KindReadyState:
		return &messages.ReadyState{}
	case KindPeerDisconnected:
		return &messages.PeerDisconnected{}
	case KindGameSeed:
		return &messages.GameSeed{}
	case KindGameSnapshot:
		return &messages.GameSnapshot{}
	case KindSpawnEntity:
		return &messages.SpawnEntity{}
	case KindSpawnProjectile:
		return &messages.SpawnProjectile{}
	case KindDamageDealt:
		return &messages.DamageDealt{}
	case KindEntityDestroyed:
		return &messages.EntityDestroyed{}
	case KindPlayerInput:
		return &messages.PlayerInput{}
	case KindPauseRequest:
		return &messages.PauseRequest{}
	case KindPauseState:
		return &messages.PauseState{}
	case KindPlayerDeath:
		return &messages.PlayerDeath{}
	case KindPlayersRevived:
		return &messages.PlayersRevived{}
	case KindXPGain:
		return &messages.XPGain{}
	case KindResyncRequest:
		return &messages.ResyncRequest{}
	}
	return nil
}

var mh codec.MsgpackHandle

// Encode serializes a wire message to msgpack bytes.
func Encode(msg any) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, &mh).Encode(msg); err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	return buf, nil
}

// Decode deserializes msgpack bytes into out, which must be a pointer.
func Decode(data []byte, out any) error {
	if err := codec.NewDecoderBytes(data, &mh).Decode(out); err != nil {
		return fmt.Errorf("decode %T: %w", out, err)
	}
	return nil
}

package netsync

import (
	"time"

	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/protocol"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// Client handlers apply inbound authority verbatim. Every one of them is
// safe to run more than once and tolerates arriving out of order relative to
// other kinds: a destroy for an unknown ID, a death for an already-dead
// player and a duplicate spawn are all silent no-ops.

func registerClientHandlers(s *Session) {
	deliver := func(from network.PeerID, msg any) {
		s.enqueue(command{from: from, msg: msg})
	}
	for _, kind := range []protocol.Kind{
		protocol.KindJoinAccepted,
		protocol.KindJoinRejected,
		protocol.KindSlotTable,
		protocol.KindPeerDisconnected,
		protocol.KindGameSeed,
		protocol.KindGameSnapshot,
		protocol.KindSpawnEntity,
		protocol.KindSpawnProjectile,
		protocol.KindDamageDealt,
		protocol.KindEntityDestroyed,
		protocol.KindPauseState,
		protocol.KindPlayerDeath,
		protocol.KindPlayersRevived,
		protocol.KindXPGain,
	} {
		s.tr.OnMessage(kind, deliver)
	}
}

func (s *Session) applyClientMessage(msg any) {
	switch m := msg.(type) {
	case messages.JoinAccepted:
		s.localSlot = m.Slot
		s.seed = m.SessionSeed
		s.localToken = m.ReconnectToken
		s.joined = true
		if _, ok := s.players[m.Slot]; !ok {
			p := sim.DefaultPlayer(m.Slot)
			s.players[m.Slot] = &p
		}
		s.log.WithField("slot", m.Slot).WithField("seed", m.SessionSeed).Info("join accepted")

	case messages.JoinRejected:
		s.log.WithField("reason", m.Reason).Warn("join rejected")
		s.Close()
		if s.OnJoinRejected != nil {
			s.OnJoinRejected(m.Reason)
		}

	case messages.SlotTable:
		for _, e := range m.Slots {
			if e.Slot < 0 || e.Slot >= len(s.slots) {
				continue
			}
			s.slots[e.Slot] = slotState{
				Occupied:     e.Occupied,
				Name:         e.Name,
				Character:    e.Character,
				Ready:        e.Ready,
				Disconnected: e.Disconnected,
				Connected:    e.Occupied && !e.Disconnected,
			}
		}

	case messages.PeerDisconnected:
		if m.Slot >= 0 && m.Slot < len(s.slots) {
			s.slots[m.Slot] = slotState{}
		}
		delete(s.players, m.Slot)
		delete(s.interp, replicaKey{kind: sim.KindPlayer, id: uint(m.Slot)})

	case messages.GameSeed:
		// All generation state re-derives from this one value.
		s.seed = m.Seed

	case messages.GameSnapshot:
		s.applySnapshot(m)
		s.resyncPending = false

	case messages.SpawnEntity:
		s.applySpawn(m)

	case messages.SpawnProjectile:
		pushEvent(s.projectileCh, m)

	case messages.DamageDealt:
		// Indicator only; authoritative hp arrives with the snapshot.
		pushEvent(s.damageCh, m)

	case messages.EntityDestroyed:
		s.applyDestroy(m)

	case messages.PauseState:
		s.paused = m.Paused

	case messages.PlayerDeath:
		s.markPlayerDead(m.Slot)

	case messages.PlayersRevived:
		s.reviveLocalPlayers()

	case messages.XPGain:
		// Shared XP: applied to the local player only; remote replicas
		// get theirs through their own peer's handling plus snapshots.
		if p, ok := s.players[s.localSlot]; ok {
			p.XP += m.Amount
		}
	}
}

// applySpawn instantiates a replica for a host-created entity. A replica
// that already exists keeps its current state: the spawn is stale news.
func (s *Session) applySpawn(m messages.SpawnEntity) {
	switch m.Kind {
	case sim.KindEnemy:
		if _, ok := s.enemies[m.ID]; ok {
			return
		}
		e := m.Enemy
		s.enemies[m.ID] = &e
		s.setInterpTarget(replicaKey{kind: sim.KindEnemy, id: m.ID}, m.X, m.Y)
	case sim.KindPickup:
		if _, ok := s.pickups[m.ID]; ok {
			return
		}
		p := m.Pickup
		s.pickups[m.ID] = &p
		s.setInterpTarget(replicaKey{kind: sim.KindPickup, id: m.ID}, m.X, m.Y)
	}
}

// applyDestroy drops a replica immediately, bypassing death-effect logic.
// Unknown IDs are expected (late or duplicate delivery) and ignored.
func (s *Session) applyDestroy(m messages.EntityDestroyed) {
	switch m.Kind {
	case sim.KindEnemy:
		if _, ok := s.enemies[m.ID]; !ok {
			return
		}
		delete(s.enemies, m.ID)
		delete(s.interp, replicaKey{kind: sim.KindEnemy, id: m.ID})
	case sim.KindPickup:
		if _, ok := s.pickups[m.ID]; !ok {
			return
		}
		delete(s.pickups, m.ID)
		delete(s.interp, replicaKey{kind: sim.KindPickup, id: m.ID})
	default:
		return
	}
	pushEvent(s.destroyCh, m)
}

func (s *Session) sendJoinRequest() {
	err := s.tr.SendToHost(messages.JoinRequest{
		Version:        s.cfg.Version,
		PlayerName:     s.cfg.PlayerName,
		Character:      s.cfg.Character,
		ReconnectToken: s.localToken,
	})
	if err != nil {
		s.log.WithError(err).Warn("join request failed")
	}
}

// SendInput ships the local player's intent to the host. The session stamps
// the monotonically increasing sequence; clients never originate anything
// but input and requests.
func (s *Session) SendInput(moveX, moveY float64, shooting bool, aim float64) {
	if !s.joined {
		return
	}
	s.inputSeq++
	_ = s.tr.SendToHost(messages.PlayerInput{
		Sequence:  s.inputSeq,
		MoveX:     moveX,
		MoveY:     moveY,
		Shooting:  shooting,
		Aim:       aim,
		Timestamp: time.Now().UnixMilli(),
	})
}

// RequestPause proposes a pause change; the host decides and echoes the
// result to everyone.
func (s *Session) RequestPause(paused bool) {
	_ = s.tr.SendToHost(messages.PauseRequest{Paused: paused})
}

// ReportLocalDeath notifies the host that this peer's player died locally.
func (s *Session) ReportLocalDeath() {
	if s.localSlot < 0 {
		return
	}
	s.markPlayerDead(s.localSlot)
	_ = s.tr.SendToHost(messages.PlayerDeath{Slot: s.localSlot})
}

// SetReady toggles the local ready flag in the lobby.
func (s *Session) SetReady(ready bool) {
	_ = s.tr.SendToHost(messages.ReadyState{Ready: ready})
}

// SelectCharacter changes the local loadout selection.
func (s *Session) SelectCharacter(character string) {
	_ = s.tr.SendToHost(messages.CharacterSelect{Character: character})
}

package netsync

import (
	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/protocol"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// The host is the single writer: only this file's mutators change shared
// entity state in response to gameplay. Everything a client sends is a
// request the host is free to apply, adjust or ignore.

func registerHostHandlers(s *Session) {
	deliver := func(from network.PeerID, msg any) {
		s.enqueue(command{from: from, msg: msg})
	}
	for _, kind := range []protocol.Kind{
		protocol.KindJoinRequest,
		protocol.KindCharacterSelect,
		protocol.KindReadyState,
		protocol.KindPlayerInput,
		protocol.KindPauseRequest,
		protocol.KindPlayerDeath,
		protocol.KindResyncRequest,
	} {
		s.tr.OnMessage(kind, deliver)
	}
}

func (s *Session) applyHostMessage(from network.PeerID, msg any) {
	switch m := msg.(type) {
	case messages.JoinRequest:
		s.handleJoinRequest(from, m)
	case messages.CharacterSelect:
		if slot, ok := s.peerSlots[from]; ok {
			s.slots[slot].Character = m.Character
			s.broadcastSlotTable()
		}
	case messages.ReadyState:
		if slot, ok := s.peerSlots[from]; ok {
			s.slots[slot].Ready = m.Ready
			s.broadcastSlotTable()
		}
	case messages.PlayerInput:
		s.handlePlayerInput(from, m)
	case messages.PauseRequest:
		// Sole arbiter: accept the proposal and echo the authoritative
		// state to everyone, requester included.
		s.paused = m.Paused
		_ = s.tr.Broadcast(messages.PauseState{Paused: s.paused})
	case messages.PlayerDeath:
		s.markPlayerDead(m.Slot)
		_ = s.tr.Broadcast(messages.PlayerDeath{Slot: m.Slot})
	case messages.ResyncRequest:
		// Out-of-band full snapshot to the one struggling peer.
		s.log.WithField("peer", from).Info("resync requested")
		_ = s.tr.SendToPeer(from, s.buildSnapshot())
	}
}

func (s *Session) handleJoinRequest(from network.PeerID, req messages.JoinRequest) {
	if s.cfg.Version != "" && req.Version != s.cfg.Version {
		_ = s.tr.SendToPeer(from, messages.JoinRejected{Reason: "version mismatch"})
		return
	}

	// A dropped peer presenting its old token within the reconnection
	// window gets its slot back with all prior data.
	if req.ReconnectToken != "" {
		for i := range s.slots {
			sl := &s.slots[i]
			if sl.Occupied && sl.Disconnected && sl.token == req.ReconnectToken {
				sl.Disconnected = false
				sl.Connected = true
				sl.disconnectedFor = 0
				sl.peer = from
				s.peerSlots[from] = i
				s.log.WithField("slot", i).Info("peer reconnected")
				s.acceptPeer(from, i, sl.token)
				return
			}
		}
	}

	slot := s.freeSlot()
	if slot < 0 {
		_ = s.tr.SendToPeer(from, messages.JoinRejected{Reason: "session full"})
		return
	}

	token := newToken()
	s.slots[slot] = slotState{
		Occupied:  true,
		Name:      req.PlayerName,
		Character: req.Character,
		Connected: true,
		peer:      from,
		token:     token,
	}
	s.peerSlots[from] = slot
	p := sim.DefaultPlayer(slot)
	s.players[slot] = &p

	s.log.WithField("slot", slot).WithField("name", req.PlayerName).Info("peer joined")
	s.acceptPeer(from, slot, token)
}

// acceptPeer sends the join handshake tail: acceptance, the session seed,
// and an immediate full snapshot so the newcomer starts from the complete
// live entity set instead of waiting for entities to move into view.
func (s *Session) acceptPeer(from network.PeerID, slot int, token string) {
	_ = s.tr.SendToPeer(from, messages.JoinAccepted{
		Slot:           slot,
		SessionSeed:    s.seed,
		ReconnectToken: token,
		HostName:       s.cfg.HostName,
		TickRate:       s.cfg.TickRate,
	})
	_ = s.tr.SendToPeer(from, messages.GameSeed{Seed: s.seed})
	_ = s.tr.SendToPeer(from, s.buildSnapshot())
	s.broadcastSlotTable()
}

func (s *Session) freeSlot() int {
	for i := 1; i < len(s.slots); i++ {
		if !s.slots[i].Occupied {
			return i
		}
	}
	return -1
}

func (s *Session) handlePlayerInput(from network.PeerID, in messages.PlayerInput) {
	slot, ok := s.peerSlots[from]
	if !ok {
		return
	}
	// Keep only the newest input per slot; stale or duplicate sequences
	// are dropped so replays cannot rewind a player.
	if prev, ok := s.inputs[slot]; ok && in.Sequence <= prev.Sequence {
		return
	}
	s.inputs[slot] = in
}

// InputFor returns the newest unconsumed input for a slot. The simulation
// marks it applied by recording the sequence on the player state.
func (s *Session) InputFor(slot int) (messages.PlayerInput, bool) {
	in, ok := s.inputs[slot]
	return in, ok
}

func (s *Session) hostPeerDropped(peer network.PeerID) {
	slot, ok := s.peerSlots[peer]
	if !ok {
		return
	}
	delete(s.peerSlots, peer)
	delete(s.inputs, slot)

	sl := &s.slots[slot]
	sl.Connected = false
	sl.Disconnected = true
	sl.Ready = false
	sl.disconnectedFor = 0

	s.log.WithField("slot", slot).Info("peer dropped, holding slot for reconnect")
	s.broadcastSlotTable()
}

// tickReconnectWindows vacates slots whose dropped peer never came back.
func (s *Session) tickReconnectWindows(dt float64) {
	window := s.cfg.ReconnectWindow.Seconds()
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.Occupied || !sl.Disconnected {
			continue
		}
		sl.disconnectedFor += dt
		if sl.disconnectedFor < window {
			continue
		}

		s.log.WithField("slot", i).Info("reconnect window expired, vacating slot")
		s.slots[i] = slotState{}
		delete(s.players, i)
		_ = s.tr.Broadcast(messages.PeerDisconnected{Slot: i})
		s.broadcastSlotTable()
	}
}

func (s *Session) broadcastSlotTable() {
	_ = s.tr.Broadcast(messages.SlotTable{Slots: s.Slots()})
}

// allocID hands out the next network entity ID. Host-only; IDs are unique
// for the session's lifetime and never reused.
func (s *Session) allocID() uint {
	s.nextID++
	return s.nextID
}

// SpawnEnemy registers an enemy in the authoritative world and announces it.
// Returns the assigned network ID.
func (s *Session) SpawnEnemy(e sim.EnemyState) uint {
	id := s.allocID()
	stored := e
	s.enemies[id] = &stored
	_ = s.tr.Broadcast(messages.SpawnEntity{
		Kind: sim.KindEnemy, ID: id, X: e.X, Y: e.Y, Enemy: e,
	})
	return id
}

// SpawnPickup registers a pickup in the authoritative world and announces it.
func (s *Session) SpawnPickup(p sim.PickupState) uint {
	id := s.allocID()
	stored := p
	s.pickups[id] = &stored
	_ = s.tr.Broadcast(messages.SpawnEntity{
		Kind: sim.KindPickup, ID: id, X: p.X, Y: p.Y, Pickup: p,
	})
	return id
}

// DestroyEnemy removes an enemy and announces the removal. A second call
// for the same ID is a no-op.
func (s *Session) DestroyEnemy(id uint) {
	e, ok := s.enemies[id]
	if !ok {
		return
	}
	delete(s.enemies, id)
	_ = s.tr.Broadcast(messages.EntityDestroyed{ID: id, Kind: sim.KindEnemy, X: e.X, Y: e.Y})
}

// DestroyPickup removes a pickup and announces the removal. Idempotent.
func (s *Session) DestroyPickup(id uint) {
	p, ok := s.pickups[id]
	if !ok {
		return
	}
	delete(s.pickups, id)
	_ = s.tr.Broadcast(messages.EntityDestroyed{ID: id, Kind: sim.KindPickup, X: p.X, Y: p.Y})
}

// FireProjectile announces one shot. Peers simulate the projectile locally
// from this single event; it is never snapshot-synced.
func (s *Session) FireProjectile(p sim.Projectile) {
	_ = s.tr.Broadcast(messages.SpawnProjectile{
		X: p.X, Y: p.Y,
		DirX: p.DirX, DirY: p.DirY,
		Speed: p.Speed, Damage: p.Damage,
		Pierce: p.Pierce, Crit: p.Crit,
		MaxRange: p.MaxRange, VisualID: p.VisualID,
	})
}

// AnnounceDamage broadcasts a damage indicator. The authoritative hp change
// travels separately, in the next snapshot.
func (s *Session) AnnounceDamage(d messages.DamageDealt) {
	_ = s.tr.Broadcast(d)
}

// KillPlayer marks a slot's player dead and announces it.
func (s *Session) KillPlayer(slot int) {
	s.markPlayerDead(slot)
	_ = s.tr.Broadcast(messages.PlayerDeath{Slot: slot})
}

// markPlayerDead applies the death locally. Safe to repeat: a dead player
// stays dead.
func (s *Session) markPlayerDead(slot int) {
	p, ok := s.players[slot]
	if !ok || !p.Alive {
		return
	}
	p.Alive = false
	p.HP = 0
}

// ReviveAll brings every dead player back and announces it.
func (s *Session) ReviveAll(timestamp int64) {
	s.reviveLocalPlayers()
	_ = s.tr.Broadcast(messages.PlayersRevived{Timestamp: timestamp})
}

func (s *Session) reviveLocalPlayers() {
	for _, p := range s.players {
		if !p.Alive {
			p.Alive = true
			p.HP = p.MaxHP
		}
	}
}

// GrantXP applies shared experience to every authoritative player and
// broadcasts the gain so each client applies it to its own local player.
func (s *Session) GrantXP(amount float64) {
	for _, p := range s.players {
		p.XP += amount
	}
	_ = s.tr.Broadcast(messages.XPGain{Amount: amount})
}

// SetPaused sets the authoritative pause flag and echoes it to all peers.
func (s *Session) SetPaused(paused bool) {
	s.paused = paused
	_ = s.tr.Broadcast(messages.PauseState{Paused: paused})
}

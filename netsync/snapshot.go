package netsync

import (
	"sort"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/protocol"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// buildSnapshot serializes the full authoritative world: every occupied
// slot's player, every live enemy, every live pickup. Each entry passes
// through a msgpack round-trip, which both deep-copies it (the broadcast
// must not alias live state) and enforces the plain-data contract. An entry
// that fails to serialize is replaced by its zero value rather than failing
// the whole snapshot.
func (s *Session) buildSnapshot() messages.GameSnapshot {
	snap := messages.GameSnapshot{
		Tick:   s.tick,
		Paused: s.paused,
	}

	slots := make([]int, 0, len(s.players))
	for slot := range s.players {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	for _, slot := range slots {
		p := sanitize(s, *s.players[slot])
		p.Slot = slot
		snap.Players = append(snap.Players, p)
	}

	for _, id := range sortedIDs(s.enemies) {
		snap.Enemies = append(snap.Enemies, messages.EnemyEntry{
			ID:         id,
			EnemyState: sanitize(s, *s.enemies[id]),
		})
	}
	for _, id := range sortedIDs(s.pickups) {
		snap.Pickups = append(snap.Pickups, messages.PickupEntry{
			ID:          id,
			PickupState: sanitize(s, *s.pickups[id]),
		})
	}

	return snap
}

// broadcastSnapshot is the periodic cadence send. Best-effort: a lost
// snapshot is superseded by the next one, so failures are not retried.
func (s *Session) broadcastSnapshot() {
	s.tick++
	_ = s.tr.Broadcast(s.buildSnapshot())
}

// applySnapshot makes the snapshot the truth of what exists. Discrete fields
// snap immediately; positions only move the interpolation target, never the
// rendered position. Tracked entities absent from the snapshot are destroyed,
// unknown entities present in it are created from their full state.
func (s *Session) applySnapshot(snap messages.GameSnapshot) {
	s.tick = snap.Tick
	s.paused = snap.Paused

	presentSlots := make(map[int]bool, len(snap.Players))
	for _, entry := range snap.Players {
		presentSlots[entry.Slot] = true
		if entry.Slot == s.localSlot {
			// The local player is simulated locally; authoritative
			// corrections for it travel through events, not snapshots.
			continue
		}

		p, ok := s.players[entry.Slot]
		if !ok {
			created := sim.ClonePlayer(entry)
			s.players[entry.Slot] = &created
			s.snapInterp(replicaKey{kind: sim.KindPlayer, id: uint(entry.Slot)}, entry.X, entry.Y)
			continue
		}

		// Discrete and stat fields snap; positions go through the tween.
		s.setInterpTarget(replicaKey{kind: sim.KindPlayer, id: uint(entry.Slot)}, entry.X, entry.Y)
		*p = sim.ClonePlayer(entry)
	}
	for slot := range s.players {
		if slot == s.localSlot || presentSlots[slot] {
			continue
		}
		delete(s.players, slot)
		delete(s.interp, replicaKey{kind: sim.KindPlayer, id: uint(slot)})
	}

	presentEnemies := make(map[uint]bool, len(snap.Enemies))
	for _, entry := range snap.Enemies {
		presentEnemies[entry.ID] = true
		key := replicaKey{kind: sim.KindEnemy, id: entry.ID}
		e, ok := s.enemies[entry.ID]
		if !ok {
			created := entry.EnemyState
			s.enemies[entry.ID] = &created
			s.snapInterp(key, entry.X, entry.Y)
			continue
		}
		*e = entry.EnemyState
		s.setInterpTarget(key, entry.X, entry.Y)
	}
	for id := range s.enemies {
		if !presentEnemies[id] {
			delete(s.enemies, id)
			delete(s.interp, replicaKey{kind: sim.KindEnemy, id: id})
		}
	}

	presentPickups := make(map[uint]bool, len(snap.Pickups))
	for _, entry := range snap.Pickups {
		presentPickups[entry.ID] = true
		key := replicaKey{kind: sim.KindPickup, id: entry.ID}
		p, ok := s.pickups[entry.ID]
		if !ok {
			created := entry.PickupState
			s.pickups[entry.ID] = &created
			s.snapInterp(key, entry.X, entry.Y)
			continue
		}
		*p = entry.PickupState
		s.setInterpTarget(key, entry.X, entry.Y)
	}
	for id := range s.pickups {
		if !presentPickups[id] {
			delete(s.pickups, id)
			delete(s.interp, replicaKey{kind: sim.KindPickup, id: id})
		}
	}
}

// sanitize round-trips a value through the wire codec, yielding a deep copy
// containing only data. Serialization failure degrades to the zero value:
// partial state is preferred over no snapshot.
func sanitize[T any](s *Session, v T) T {
	data, err := protocol.Encode(v)
	if err != nil {
		s.log.WithError(err).Warn("snapshot entry not serializable, substituting empty state")
		var zero T
		return zero
	}
	var out T
	if err := protocol.Decode(data, &out); err != nil {
		s.log.WithError(err).Warn("snapshot entry round-trip failed, substituting empty state")
		var zero T
		return zero
	}
	return out
}

func sortedIDs[T any](m map[uint]*T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

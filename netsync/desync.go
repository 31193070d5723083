package netsync

import (
	"github.com/feralbyte/nightswarm-mp/shared/messages"
)

// checkConsistency runs the periodic invariant sweep over player state. The
// checked invariant is that a dead player has zero hp and a player at zero
// hp is dead. The host repairs violations in place and rebroadcasts the
// outcome; a client treats any violation as evidence of drift and asks the
// host for a fresh snapshot.
func (s *Session) checkConsistency() {
	if s.role == RoleHost {
		for slot, p := range s.players {
			switch {
			case p.HP <= 0 && p.Alive:
				s.log.WithField("slot", slot).Warn("consistency sweep: zero hp but alive, marking dead")
				s.markPlayerDead(slot)
				_ = s.tr.Broadcast(messages.PlayerDeath{Slot: slot})
			case !p.Alive && p.HP > 0:
				s.log.WithField("slot", slot).Warn("consistency sweep: dead with residual hp, clearing")
				p.HP = 0
			}
		}
		return
	}

	for slot, p := range s.players {
		if (p.HP <= 0) == !p.Alive {
			continue
		}
		if s.resyncPending {
			return
		}
		s.log.WithField("slot", slot).Warn("consistency sweep: state drift detected, requesting resync")
		s.resyncPending = true
		_ = s.tr.SendToHost(messages.ResyncRequest{})
		return
	}
}

package core

import (
	"math"

	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

const (
	magnetSpeed  = 320.0
	collectRange = 14.0
)

// stepPickups magnetizes pickups toward the first player whose pickup radius
// reaches them, then flies them in and applies their effect on contact.
// Magnetization is one-way: once latched to a slot a pickup never changes
// target, even if a closer player walks by.
func (s *Server) stepPickups(dt float64) {
	var collected []uint
	s.sess.EachPickup(func(id uint, pk *sim.PickupState) {
		if !pk.Magnetized {
			s.sess.EachPlayer(func(slot int, p *sim.PlayerState) {
				if pk.Magnetized || !p.Alive {
					return
				}
				if math.Hypot(p.X-pk.X, p.Y-pk.Y) <= p.PickupRadius {
					pk.Magnetized = true
					pk.TargetSlot = slot
				}
			})
			return
		}

		target := s.sess.Player(pk.TargetSlot)
		if target == nil || !target.Alive {
			// Target gone mid-flight: drop back to idle and wait for
			// the next player to come near.
			pk.Magnetized = false
			pk.TargetSlot = sim.NoTarget
			return
		}

		dx, dy := target.X-pk.X, target.Y-pk.Y
		dist := math.Hypot(dx, dy)
		if dist <= collectRange {
			s.applyPickup(pk, pk.TargetSlot)
			collected = append(collected, id)
			return
		}
		pk.X += dx / dist * magnetSpeed * dt
		pk.Y += dy / dist * magnetSpeed * dt
	})

	for _, id := range collected {
		s.sess.DestroyPickup(id)
	}
}

func (s *Server) applyPickup(pk *sim.PickupState, slot int) {
	switch pk.Type {
	case "health":
		if p := s.sess.Player(slot); p != nil {
			p.HP = math.Min(p.MaxHP, p.HP+healthValue)
		}
	default: // xp
		s.sess.GrantXP(xpPerEnemy * s.partyXPBonus())
	}
}

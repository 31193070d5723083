package core

import (
	"math"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

const playerSize = 20

// baseFireInterval is the cooldown of a level 1 weapon in seconds. Each
// weapon level shaves a tenth off the rate.
const baseFireInterval = 0.5

func (s *Server) inputFor(slot int) (messages.PlayerInput, bool) {
	if slot == s.sess.LocalSlot() {
		return s.localInput, s.hasLocalInput
	}
	return s.sess.InputFor(slot)
}

// stepPlayers applies the newest input per slot: movement against the wall
// space, then weapon cooldowns and firing.
func (s *Server) stepPlayers(dt float64) {
	s.sess.EachPlayer(func(slot int, p *sim.PlayerState) {
		if cd := s.fireCooldowns[slot]; cd > 0 {
			s.fireCooldowns[slot] = cd - dt
		}
		if !p.Alive {
			return
		}
		if stacks := upgradeStacks(p, "regen"); stacks > 0 && p.HP < p.MaxHP {
			p.HP = math.Min(p.MaxHP, p.HP+regenPerStack*float64(stacks)*dt)
		}
		// The newest input stays in effect until replaced, so held keys
		// keep moving the player between client sends.
		in, ok := s.inputFor(slot)
		if !ok {
			return
		}
		p.LastSequence = in.Sequence
		p.Facing = in.Aim

		obj := s.playerBodies[slot]
		if obj == nil {
			return
		}

		mx, my := in.MoveX, in.MoveY
		if l := math.Hypot(mx, my); l > 1 {
			mx /= l
			my /= l
		}
		dx := mx * p.MoveSpeed * dt
		dy := my * p.MoveSpeed * dt

		if dx != 0 {
			if check := obj.Check(dx, 0, tagWall); check != nil {
				if walls := check.ObjectsByTags(tagWall); len(walls) > 0 {
					dx = check.ContactWithObject(walls[0]).X()
				}
			}
			obj.X += dx
		}
		if dy != 0 {
			if check := obj.Check(0, dy, tagWall); check != nil {
				if walls := check.ObjectsByTags(tagWall); len(walls) > 0 {
					dy = check.ContactWithObject(walls[0]).Y()
				}
			}
			obj.Y += dy
		}
		obj.Update()
		p.X, p.Y = obj.X, obj.Y

		if in.Shooting {
			s.tryFire(slot, p, in.Aim)
		}
	})
}

// tryFire spawns a projectile if the slot's cooldown has elapsed.
func (s *Server) tryFire(slot int, p *sim.PlayerState, aim float64) {
	if s.fireCooldowns[slot] > 0 {
		return
	}
	level := 1
	for _, w := range p.Weapons {
		if w.ID == "bolt" {
			level = w.Level
		}
	}
	s.fireCooldowns[slot] = baseFireInterval / (1 + 0.1*float64(level-1))

	critChance := 0.1 + 0.05*float64(upgradeStacks(p, "crit_chance"))
	pierce := level - 1 + upgradeStacks(p, "pierce")

	// Extra projectiles fan out around the aim direction.
	count := 1 + upgradeStacks(p, "projectile_count")
	const spread = 0.15
	for i := 0; i < count; i++ {
		angle := aim + spread*(float64(i)-float64(count-1)/2)
		crit := s.combatRNG.Probability(critChance)
		dmg := p.Damage
		if crit {
			dmg *= 2
		}
		s.spawnProjectile(slot, sim.Projectile{
			X: p.X, Y: p.Y,
			DirX: math.Cos(angle), DirY: math.Sin(angle),
			Speed:    420,
			Damage:   dmg,
			Pierce:   pierce,
			Crit:     crit,
			MaxRange: 520,
		})
	}
}

// damagePlayer applies enemy contact damage to a player and reports it.
func (s *Server) damagePlayer(slot int, amount float64) {
	p := s.sess.Player(slot)
	if p == nil || !p.Alive || p.Invulnerable {
		return
	}
	p.HP -= amount
	s.sess.AnnounceDamage(messages.DamageDealt{
		TargetID:   uint(slot),
		TargetKind: sim.KindPlayer,
		Amount:     amount,
		X:          p.X,
		Y:          p.Y,
	})
	if p.HP <= 0 {
		s.sess.KillPlayer(slot)
		s.log.WithField("slot", slot).Info("player down")
	}
}

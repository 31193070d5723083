package core

import (
	"math"

	"github.com/solarlune/resolv"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

const (
	enemySize   = 16
	touchRange  = 22.0
	touchDelay  = 0.8
	dropChance  = 0.15
	xpPerEnemy  = 5.0
	healthValue = 25.0
)

type enemyStats struct {
	HP     float64
	Speed  float64
	Touch  float64
	Armor  float64
	Shield float64
}

// statsFor maps an enemy type name to its baseline numbers. Unknown names
// fall back to husk stats so a generator change cannot spawn an unkillable
// blank.
func statsFor(enemyType string) enemyStats {
	switch enemyType {
	case "crawler":
		return enemyStats{HP: 15, Speed: 95, Touch: 6}
	case "brute":
		return enemyStats{HP: 70, Speed: 40, Touch: 18, Armor: 2}
	case "warden":
		return enemyStats{HP: 50, Speed: 55, Touch: 12, Shield: 20}
	default: // husk
		return enemyStats{HP: 25, Speed: 60, Touch: 10}
	}
}

// spawnEnemy creates the authoritative enemy and its collision body.
func (s *Server) spawnEnemy(x, y float64, enemyType string) uint {
	st := statsFor(enemyType)
	id := s.sess.SpawnEnemy(sim.EnemyState{
		X: x, Y: y,
		HP: st.HP, MaxHP: st.HP,
		Type:   enemyType,
		Armor:  st.Armor,
		Shield: st.Shield,
	})
	obj := resolv.NewObject(x, y, enemySize, enemySize, tagEnemy)
	obj.SetShape(resolv.NewRectangle(0, 0, enemySize, enemySize))
	s.level.Space.Add(obj)
	s.enemyBodies[id] = obj
	return id
}

// stepEnemies walks every enemy toward the nearest living player and applies
// contact damage on a per-enemy cooldown.
func (s *Server) stepEnemies(dt float64) {
	for id, obj := range s.enemyBodies {
		e := s.sess.Enemy(id)
		if e == nil {
			continue
		}
		if cd := s.touchCooldown[id]; cd > 0 {
			s.touchCooldown[id] = cd - dt
		}

		slot, px, py, found := s.nearestLivingPlayer(e.X, e.Y)
		if !found {
			continue
		}
		st := statsFor(e.Type)

		dx, dy := px-e.X, py-e.Y
		dist := math.Hypot(dx, dy)
		if dist > touchRange {
			nx, ny := dx/dist, dy/dist
			mx := nx * st.Speed * dt
			my := ny * st.Speed * dt

			if check := obj.Check(mx, 0, tagWall); check != nil {
				if walls := check.ObjectsByTags(tagWall); len(walls) > 0 {
					mx = check.ContactWithObject(walls[0]).X()
				}
			}
			obj.X += mx
			if check := obj.Check(0, my, tagWall); check != nil {
				if walls := check.ObjectsByTags(tagWall); len(walls) > 0 {
					my = check.ContactWithObject(walls[0]).Y()
				}
			}
			obj.Y += my
			obj.Update()
			e.X, e.Y = obj.X, obj.Y
			continue
		}

		if s.touchCooldown[id] <= 0 {
			s.touchCooldown[id] = touchDelay
			s.damagePlayer(slot, st.Touch)
		}
	}
}

func (s *Server) nearestLivingPlayer(x, y float64) (slot int, px, py float64, found bool) {
	best := math.MaxFloat64
	s.sess.EachPlayer(func(sl int, p *sim.PlayerState) {
		if !p.Alive {
			return
		}
		d := math.Hypot(p.X-x, p.Y-y)
		if d < best {
			best = d
			slot, px, py, found = sl, p.X, p.Y, true
		}
	})
	return
}

// damageEnemy applies projectile damage through shield and armor. Returns
// true when the enemy died.
func (s *Server) damageEnemy(id uint, amount float64, crit bool, x, y float64) bool {
	e := s.sess.Enemy(id)
	if e == nil {
		return false
	}

	// Shield soaks raw damage first; armor reduces what reaches health,
	// never below 1.
	if e.Shield > 0 {
		absorbed := math.Min(e.Shield, amount)
		e.Shield -= absorbed
		amount -= absorbed
	}
	if amount > 0 {
		amount = math.Max(1, amount-e.Armor)
		e.HP -= amount
	}

	s.sess.AnnounceDamage(messages.DamageDealt{
		TargetID:   id,
		TargetKind: sim.KindEnemy,
		Amount:     amount,
		Crit:       crit,
		X:          x,
		Y:          y,
	})

	if e.HP <= 0 {
		s.killEnemy(id, x, y)
		return true
	}
	return false
}

// killEnemy removes the enemy, pays out shared xp and rolls a pickup drop.
func (s *Server) killEnemy(id uint, x, y float64) {
	s.sess.DestroyEnemy(id)
	s.sess.GrantXP(xpPerEnemy * s.partyXPBonus())
	if s.combatRNG.Probability(dropChance) {
		s.sess.SpawnPickup(sim.PickupState{X: x, Y: y, Type: "xp"})
	}
}

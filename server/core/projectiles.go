package core

import (
	"math"

	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

const enemyHitRadius = 14.0

// liveProjectile is the host-side record of an in-flight shot. Clients run
// the same kinematics from the spawn event; only the host resolves hits.
type liveProjectile struct {
	p     sim.Projectile
	owner int
	hit   map[uint]bool
}

// spawnProjectile records the shot locally and announces it once. The
// projectile is never part of a snapshot.
func (s *Server) spawnProjectile(owner int, p sim.Projectile) {
	s.sess.FireProjectile(p)
	s.projectiles = append(s.projectiles, liveProjectile{
		p:     p,
		owner: owner,
		hit:   make(map[uint]bool),
	})
}

// stepProjectiles advances every live shot, resolves enemy hits and culls
// expired or wall-stopped ones.
func (s *Server) stepProjectiles(dt float64) {
	alive := s.projectiles[:0]
	for i := range s.projectiles {
		lp := &s.projectiles[i]
		lp.p = sim.StepProjectile(lp.p, dt)

		if !lp.p.Expired && s.hitsWall(lp.p.X, lp.p.Y) {
			lp.p.Expired = true
		}
		if !lp.p.Expired {
			s.resolveHits(lp)
		}
		if !lp.p.Expired {
			alive = append(alive, *lp)
		}
	}
	s.projectiles = alive
}

// hitsWall point-tests the projectile against the wall rectangles. Walls are
// static for the lifetime of a room, so the generated geometry is checked
// directly rather than through a moving resolv body.
func (s *Server) hitsWall(x, y float64) bool {
	for _, r := range s.level.Room.Walls {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return true
		}
	}
	return false
}

// resolveHits damages every enemy within the hit radius that this shot has
// not already pierced through. Pierce is spent per enemy; at zero the shot
// stops on its first target.
func (s *Server) resolveHits(lp *liveProjectile) {
	for id, obj := range s.enemyBodies {
		if lp.hit[id] {
			continue
		}
		cx := obj.X + enemySize/2
		cy := obj.Y + enemySize/2
		if math.Hypot(cx-lp.p.X, cy-lp.p.Y) > enemyHitRadius {
			continue
		}
		lp.hit[id] = true
		s.damageEnemy(id, lp.p.Damage, lp.p.Crit, lp.p.X, lp.p.Y)

		if lp.p.Pierce <= 0 {
			lp.p.Expired = true
			return
		}
		lp.p.Pierce--
	}
}

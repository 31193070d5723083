package netsync

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// replicaKey identifies an interpolated remote entity. Players are keyed by
// slot, enemies and pickups by entity id.
type replicaKey struct {
	kind sim.EntityKind
	id   uint
}

// replicaInterp holds the rendered position of a replica and the tweens
// easing it toward the last received authoritative position.
type replicaInterp struct {
	x, y float64
	twX  *gween.Tween
	twY  *gween.Tween
}

// snapInterp places a replica directly at a position with no easing. Used
// when an entity is first seen, where tweening from an arbitrary origin
// would draw it sliding across the room.
func (s *Session) snapInterp(key replicaKey, x, y float64) {
	s.interp[key] = &replicaInterp{x: x, y: y}
}

// setInterpTarget starts easing a replica from its current rendered position
// toward a new authoritative one over one sync interval.
func (s *Session) setInterpTarget(key replicaKey, x, y float64) {
	r, ok := s.interp[key]
	if !ok {
		s.snapInterp(key, x, y)
		return
	}
	dur := float32(s.cfg.SyncInterval.Seconds())
	r.twX = gween.New(float32(r.x), float32(x), dur, ease.Linear)
	r.twY = gween.New(float32(r.y), float32(y), dur, ease.Linear)
}

func (s *Session) stepInterpolation(dt float64) {
	for _, r := range s.interp {
		if r.twX != nil {
			v, done := r.twX.Update(float32(dt))
			r.x = float64(v)
			if done {
				r.twX = nil
			}
		}
		if r.twY != nil {
			v, done := r.twY.Update(float32(dt))
			r.y = float64(v)
			if done {
				r.twY = nil
			}
		}
	}
}

// ReplicaPosition returns the rendered position of a remote entity. Falls
// back to the stored authoritative position when no interpolation state
// exists, as for entities on the host where positions are already smooth.
func (s *Session) ReplicaPosition(kind sim.EntityKind, id uint) (float64, float64, bool) {
	if r, ok := s.interp[replicaKey{kind: kind, id: id}]; ok {
		return r.x, r.y, true
	}
	switch kind {
	case sim.KindPlayer:
		if p, ok := s.players[int(id)]; ok {
			return p.X, p.Y, true
		}
	case sim.KindEnemy:
		if e, ok := s.enemies[id]; ok {
			return e.X, e.Y, true
		}
	case sim.KindPickup:
		if p, ok := s.pickups[id]; ok {
			return p.X, p.Y, true
		}
	}
	return 0, 0, false
}

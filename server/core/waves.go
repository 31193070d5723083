package core

import (
	"github.com/feralbyte/nightswarm-mp/shared/gen"
)

const (
	spawnInterval  = 2.0
	maxLiveEnemies = 40
)

// waveState tracks spawn progress through the current room. Spawn points
// and enemy types both come from the seeded generator, so which enemies a
// room contains is identical on every peer; only the timing lives here.
type waveState struct {
	timer   float64
	spawned int
	total   int
}

func newWaveState(total int) waveState {
	return waveState{total: total}
}

// stepWaves emits the room's enemies on a fixed cadence and advances to the
// next room once everything spawned has been cleared.
func (s *Server) stepWaves(dt float64) {
	w := &s.waves
	if w.spawned >= w.total {
		if len(s.enemyBodies) == 0 {
			s.advanceRoom()
		}
		return
	}
	if len(s.enemyBodies) >= maxLiveEnemies {
		return
	}

	w.timer += dt
	if w.timer < spawnInterval {
		return
	}
	w.timer = 0

	pt := s.level.Room.EnemySpawns[w.spawned]
	enemyType := gen.EnemyTypeFor(
		s.sess.SessionSeed(), s.floor, s.level.Pos.X, s.level.Pos.Y, w.spawned)
	s.spawnEnemy(pt.X, pt.Y, enemyType)
	w.spawned++
}

package core

import (
	"github.com/sirupsen/logrus"
	"github.com/solarlune/resolv"

	"github.com/feralbyte/nightswarm-mp/netsync"
	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/shared/gen"
	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/netconfig"
	"github.com/feralbyte/nightswarm-mp/shared/seedrand"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// Config carries host simulation settings.
type Config struct {
	Name     string
	Version  string
	TickRate int

	// Seed pins the session seed; zero rolls a fresh one.
	Seed uint32

	Log *logrus.Entry
}

// Server is the authoritative game simulation. It owns a netsync host
// session and advances the world once per tick: player movement, enemy AI,
// projectile kinematics, pickups and wave spawning. All state leaves through
// the session's snapshots and events; the server never touches the transport
// directly.
type Server struct {
	cfg  Config
	log  *logrus.Entry
	sess *netsync.Session
	loop *GameLoop

	level   *Level
	plan    gen.FloorPlan
	floor   int
	roomIdx int

	playerBodies map[int]*resolv.Object
	enemyBodies  map[uint]*resolv.Object

	projectiles []liveProjectile
	waves       waveState

	// localInput drives the slot 0 player when the host machine is also a
	// participant. A dedicated host leaves it empty.
	localInput    messages.PlayerInput
	hasLocalInput bool

	fireCooldowns map[int]float64
	touchCooldown map[uint]float64

	// combatRNG covers rolls that only the host makes: crits, drop
	// chances. Seeded off the session seed so a replayed session with
	// identical inputs plays out identically.
	combatRNG *seedrand.Rand
}

// New builds the simulation on top of the given transport. The transport
// should start listening separately (WsHostTransport.Listen or a loopback).
func New(cfg Config, tr network.Transport) *Server {
	if cfg.TickRate <= 0 {
		cfg.TickRate = netconfig.DefaultTickRate
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	sess := netsync.NewHost(netsync.Config{
		HostName:    cfg.Name,
		PlayerName:  cfg.Name,
		Version:     cfg.Version,
		SessionSeed: cfg.Seed,
		TickRate:    cfg.TickRate,
		Log:         cfg.Log,
	}, tr)

	s := &Server{
		cfg:           cfg,
		log:           cfg.Log.WithField("sub", "core"),
		sess:          sess,
		playerBodies:  make(map[int]*resolv.Object),
		enemyBodies:   make(map[uint]*resolv.Object),
		fireCooldowns: make(map[int]float64),
		touchCooldown: make(map[uint]float64),
		combatRNG:     seedrand.New(seedrand.CreateSeed(sess.SessionSeed(), 0xC0)),
	}
	s.loop = NewGameLoop(s, cfg.TickRate)

	s.floor = 1
	s.plan = gen.BuildFloorPlan(sess.SessionSeed(), s.floor)
	s.enterRoom(0)

	return s
}

// Session exposes the underlying sync session, for embedders that render the
// host player locally.
func (s *Server) Session() *netsync.Session { return s.sess }

// Run blocks in the game loop until Stop is called.
func (s *Server) Run() { s.loop.Run() }

// Stop halts the loop and closes the session.
func (s *Server) Stop() {
	s.loop.Stop()
	s.sess.Close()
}

// SetLocalInput feeds input for the host's own player (slot 0).
func (s *Server) SetLocalInput(in messages.PlayerInput) {
	s.localInput = in
	s.hasLocalInput = true
}

// PlayerCount returns the number of occupied slots.
func (s *Server) PlayerCount() int {
	n := 0
	for _, sl := range s.sess.Slots() {
		if sl.Occupied {
			n++
		}
	}
	return n
}

// Tick advances the whole simulation by dt seconds.
func (s *Server) Tick(dt float64) {
	s.sess.Update(dt)
	if !s.sess.Active() {
		return
	}
	s.adoptNewPlayers()
	if s.sess.Paused() {
		return
	}

	s.stepPlayers(dt)
	s.stepEnemies(dt)
	s.stepProjectiles(dt)
	s.stepPickups(dt)
	s.stepProgression()
	s.stepWaves(dt)
	s.pruneBodies()
}

// adoptNewPlayers gives a collision body to any player the session created
// since the last tick, placed at the room center.
func (s *Server) adoptNewPlayers() {
	s.sess.EachPlayer(func(slot int, p *sim.PlayerState) {
		if _, ok := s.playerBodies[slot]; ok {
			return
		}
		cx, cy := s.level.Center()
		if p.X == 0 && p.Y == 0 {
			p.X, p.Y = cx, cy
		}
		obj := resolv.NewObject(p.X, p.Y, playerSize, playerSize, tagPlayer)
		obj.SetShape(resolv.NewRectangle(0, 0, playerSize, playerSize))
		s.level.Space.Add(obj)
		s.playerBodies[slot] = obj
	})
}

// pruneBodies drops collision bodies whose entity no longer exists, e.g. a
// vacated slot or an enemy destroyed by a projectile this tick.
func (s *Server) pruneBodies() {
	for slot, obj := range s.playerBodies {
		if s.sess.Player(slot) == nil {
			s.level.Space.Remove(obj)
			delete(s.playerBodies, slot)
			delete(s.fireCooldowns, slot)
		}
	}
	for id, obj := range s.enemyBodies {
		if s.sess.Enemy(id) == nil {
			s.level.Space.Remove(obj)
			delete(s.enemyBodies, id)
			delete(s.touchCooldown, id)
		}
	}
}

// enterRoom swaps the active room: new collision space, fresh wave state,
// players repositioned at the center. Projectiles do not cross rooms.
func (s *Server) enterRoom(idx int) {
	s.roomIdx = idx
	pos := s.plan.Rooms[idx]
	s.level = NewLevel(s.sess.SessionSeed(), s.floor, pos)
	s.projectiles = s.projectiles[:0]

	// Bodies lived in the previous room's space, which is gone wholesale.
	s.enemyBodies = make(map[uint]*resolv.Object)
	s.playerBodies = make(map[int]*resolv.Object)

	// Uncollected pickups do not carry over.
	var stale []uint
	s.sess.EachPickup(func(id uint, _ *sim.PickupState) {
		stale = append(stale, id)
	})
	for _, id := range stale {
		s.sess.DestroyPickup(id)
	}

	cx, cy := s.level.Center()
	s.sess.EachPlayer(func(slot int, p *sim.PlayerState) {
		p.X, p.Y = cx, cy
	})
	s.adoptNewPlayers()

	s.waves = newWaveState(len(s.level.Room.EnemySpawns))
	s.sess.SpawnPickup(sim.PickupState{
		X:    s.level.Room.PickupSpawn.X,
		Y:    s.level.Room.PickupSpawn.Y,
		Type: "health",
	})

	s.log.WithField("floor", s.floor).
		WithField("room", idx).
		WithField("template", s.level.Room.Template.ID).
		Info("entered room")
}

// advanceRoom moves to the next room, rolling over to the next floor when
// the current plan is exhausted.
func (s *Server) advanceRoom() {
	next := s.roomIdx + 1
	if next >= len(s.plan.Rooms) {
		s.floor++
		s.plan = gen.BuildFloorPlan(s.sess.SessionSeed(), s.floor)
		next = 0
		s.log.WithField("floor", s.floor).Info("descending")
	}
	s.enterRoom(next)
}

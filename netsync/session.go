// Package netsync implements the host-authoritative state synchronization
// core: one Session per peer, either the Host (the single simulation
// authority) or a Client (a render/input replica). The host owns the
// authoritative entity registries and broadcasts periodic full snapshots plus
// one-shot events; clients apply whatever arrives and request a resync when
// their local invariants break.
package netsync

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/netconfig"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// Role designates the session's authority level. Exactly one participant per
// session is the Host: whoever opened the listening address first. Everyone
// who connects afterwards is a Client.
type Role int

const (
	RoleHost Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

// Config carries session tuning. Zero values fall back to netconfig defaults.
type Config struct {
	HostName   string
	PlayerName string
	Character  string

	// SessionSeed is the host's seed for all procedural generation. Zero
	// means roll a fresh one. Ignored on clients, which receive the seed
	// over the wire.
	SessionSeed uint32

	// Version gates joins when non-empty: a client presenting a different
	// version string is rejected.
	Version string

	// ReconnectToken, when set on a client, reclaims the slot a previous
	// session held before it dropped.
	ReconnectToken string

	TickRate        int
	SyncInterval    time.Duration
	ResyncInterval  time.Duration
	ReconnectWindow time.Duration

	Log *logrus.Entry
}

func (c *Config) applyDefaults() {
	if c.TickRate <= 0 {
		c.TickRate = netconfig.DefaultTickRate
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = netconfig.SyncInterval
	}
	if c.ResyncInterval <= 0 {
		c.ResyncInterval = netconfig.DesyncCheckInterval
	}
	if c.ReconnectWindow <= 0 {
		c.ReconnectWindow = netconfig.ReconnectWindow
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger())
	}
}

// slotState is one participant position. Slot 0 is the host. An occupied
// slot is never renumbered: its index is the durable identity every protocol
// message keys on.
type slotState struct {
	Occupied     bool
	Name         string
	Character    string
	Ready        bool
	Connected    bool
	Disconnected bool

	// disconnectedFor accumulates while the slot waits out the
	// reconnection window.
	disconnectedFor float64

	peer  network.PeerID
	token string
}

// command is one inbound transport callback deferred to the Update loop, so
// every state mutation happens on the embedder's tick goroutine.
type command struct {
	from network.PeerID
	msg  any
	conn *network.ConnEvent
}

// Session is one peer's view of a multiplayer game. Construct with NewHost
// or NewClient, drive with Update from the game loop, tear down with Close.
type Session struct {
	cfg Config
	log *logrus.Entry
	tr  network.Transport

	role      Role
	localSlot int
	seed      uint32
	active    bool
	joined    bool
	paused    bool

	slots [netconfig.MaxPlayers]slotState

	players map[int]*sim.PlayerState
	enemies map[uint]*sim.EnemyState
	pickups map[uint]*sim.PickupState

	// nextID is the host-owned network entity ID counter. IDs are never
	// reused within a session and clients never assign their own.
	nextID uint

	tick uint64

	// host side
	peerSlots map[network.PeerID]int
	inputs    map[int]messages.PlayerInput

	// client side
	interp        map[replicaKey]*replicaInterp
	resyncPending bool
	inputSeq      uint32
	localToken    string

	syncTimer   float64
	desyncTimer float64

	inboxMu sync.Mutex
	inbox   []command

	// one-shot gameplay events for the embedder, latest-wins on overflow
	damageCh     chan messages.DamageDealt
	projectileCh chan messages.SpawnProjectile
	destroyCh    chan messages.EntityDestroyed

	// OnHostLost fires when the host goes away: the session is already
	// deactivated and the embedder should fall back to non-networked play.
	OnHostLost func()

	// OnJoinRejected fires on the client when a join attempt is refused.
	OnJoinRejected func(reason string)
}

func newSession(cfg Config, tr network.Transport, role Role) *Session {
	cfg.applyDefaults()
	s := &Session{
		cfg:          cfg,
		log:          cfg.Log.WithField("role", role.String()),
		tr:           tr,
		role:         role,
		active:       true,
		players:      make(map[int]*sim.PlayerState),
		enemies:      make(map[uint]*sim.EnemyState),
		pickups:      make(map[uint]*sim.PickupState),
		peerSlots:    make(map[network.PeerID]int),
		inputs:       make(map[int]messages.PlayerInput),
		interp:       make(map[replicaKey]*replicaInterp),
		damageCh:     make(chan messages.DamageDealt, 64),
		projectileCh: make(chan messages.SpawnProjectile, 64),
		destroyCh:    make(chan messages.EntityDestroyed, 64),
	}
	tr.OnConnectionChange(func(ev network.ConnEvent) {
		s.enqueue(command{conn: &ev})
	})
	return s
}

// NewHost creates the authoritative session. The transport should already be
// listening (or about to listen) on the session address.
func NewHost(cfg Config, tr network.Transport) *Session {
	s := newSession(cfg, tr, RoleHost)

	s.seed = cfg.SessionSeed
	if s.seed == 0 {
		s.seed = rollSeed()
	}
	s.localSlot = 0
	s.slots[0] = slotState{
		Occupied:  true,
		Name:      cfg.PlayerName,
		Character: cfg.Character,
		Connected: true,
		Ready:     true,
	}
	p := sim.DefaultPlayer(0)
	s.players[0] = &p

	registerHostHandlers(s)
	s.log.WithField("seed", s.seed).Info("hosting session")
	return s
}

// NewClient creates a replica session. Join is sent automatically once the
// transport reports the host connection.
func NewClient(cfg Config, tr network.Transport) *Session {
	s := newSession(cfg, tr, RoleClient)
	s.localSlot = -1
	s.localToken = cfg.ReconnectToken
	registerClientHandlers(s)
	return s
}

// Update drains pending network messages and advances the session's timers.
// dt is the elapsed simulation time in seconds. Must be called from a single
// goroutine; every accessor and mutator belongs to that goroutine.
func (s *Session) Update(dt float64) {
	if !s.active {
		return
	}

	for _, cmd := range s.drainInbox() {
		s.apply(cmd)
		if !s.active {
			return
		}
	}

	if s.role == RoleHost {
		s.tickReconnectWindows(dt)

		s.syncTimer += dt
		if s.syncTimer >= s.cfg.SyncInterval.Seconds() {
			s.syncTimer = 0
			s.broadcastSnapshot()
		}
	} else {
		s.stepInterpolation(dt)
	}

	s.desyncTimer += dt
	if s.desyncTimer >= s.cfg.ResyncInterval.Seconds() {
		s.desyncTimer = 0
		s.checkConsistency()
	}
}

// Close deactivates the session and releases the transport. Idempotent.
func (s *Session) Close() {
	if !s.active {
		return
	}
	s.active = false
	_ = s.tr.Close()
	s.log.Info("session closed")
}

func (s *Session) enqueue(cmd command) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, cmd)
	s.inboxMu.Unlock()
}

func (s *Session) drainInbox() []command {
	s.inboxMu.Lock()
	cmds := s.inbox
	s.inbox = nil
	s.inboxMu.Unlock()
	return cmds
}

func (s *Session) apply(cmd command) {
	if cmd.conn != nil {
		s.applyConnEvent(*cmd.conn)
		return
	}
	if s.role == RoleHost {
		s.applyHostMessage(cmd.from, cmd.msg)
	} else {
		s.applyClientMessage(cmd.msg)
	}
}

func (s *Session) applyConnEvent(ev network.ConnEvent) {
	switch ev.Kind {
	case network.PeerJoined:
		if s.role == RoleClient {
			// Connected to the host: ask for a slot.
			s.sendJoinRequest()
		}
	case network.PeerLeft:
		if s.role == RoleHost {
			s.hostPeerDropped(ev.Peer)
		}
	case network.HostLost:
		if s.role == RoleClient {
			s.log.Warn("host disconnected, leaving multiplayer")
			s.Close()
			if s.OnHostLost != nil {
				s.OnHostLost()
			}
		}
	}
}

// Role returns the session's authority role.
func (s *Session) Role() Role { return s.role }

// Active reports whether the session is live.
func (s *Session) Active() bool { return s.active }

// Joined reports whether a client session has been accepted into a slot.
// Always true on the host.
func (s *Session) Joined() bool { return s.role == RoleHost || s.joined }

// LocalSlot returns this peer's slot index, or -1 before a client joins.
func (s *Session) LocalSlot() int { return s.localSlot }

// SessionSeed returns the seed all procedural generation derives from.
// Exposed so a late joiner can initialize identical generation state.
func (s *Session) SessionSeed() uint32 { return s.seed }

// Paused returns the host-arbitrated global pause flag.
func (s *Session) Paused() bool { return s.paused }

// ReconnectToken returns the token to present when rejoining after a drop.
// Empty until the host accepts the join.
func (s *Session) ReconnectToken() string { return s.localToken }

// Tick returns the last snapshot tick (host: the tick counter; client: the
// tick of the newest applied snapshot).
func (s *Session) Tick() uint64 { return s.tick }

// Player returns the state for a slot, or nil.
func (s *Session) Player(slot int) *sim.PlayerState { return s.players[slot] }

// Enemy returns the enemy with the given network ID, or nil.
func (s *Session) Enemy(id uint) *sim.EnemyState { return s.enemies[id] }

// Pickup returns the pickup with the given network ID, or nil.
func (s *Session) Pickup(id uint) *sim.PickupState { return s.pickups[id] }

// EachPlayer visits every live player state.
func (s *Session) EachPlayer(fn func(slot int, p *sim.PlayerState)) {
	for slot, p := range s.players {
		fn(slot, p)
	}
}

// EachEnemy visits every tracked enemy.
func (s *Session) EachEnemy(fn func(id uint, e *sim.EnemyState)) {
	for id, e := range s.enemies {
		fn(id, e)
	}
}

// EachPickup visits every tracked pickup.
func (s *Session) EachPickup(fn func(id uint, p *sim.PickupState)) {
	for id, p := range s.pickups {
		fn(id, p)
	}
}

// Slots returns the read-only display form of the slot table for party UI.
func (s *Session) Slots() []messages.SlotEntry {
	out := make([]messages.SlotEntry, len(s.slots))
	for i, sl := range s.slots {
		out[i] = messages.SlotEntry{
			Slot:         i,
			Occupied:     sl.Occupied,
			Name:         sl.Name,
			Character:    sl.Character,
			Ready:        sl.Ready,
			Disconnected: sl.Disconnected,
		}
	}
	return out
}

// DrainDamageEvents returns all pending damage indicators, non-blocking.
func (s *Session) DrainDamageEvents() []messages.DamageDealt {
	return drainChan(s.damageCh)
}

// DrainProjectileSpawns returns all pending projectile spawns, non-blocking.
func (s *Session) DrainProjectileSpawns() []messages.SpawnProjectile {
	return drainChan(s.projectileCh)
}

// DrainDestroyEvents returns all pending destroy notifications, non-blocking.
func (s *Session) DrainDestroyEvents() []messages.EntityDestroyed {
	return drainChan(s.destroyCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func pushEvent[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func rollSeed() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	seed := binary.LittleEndian.Uint32(b[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}

func newToken() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}

package netsync

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/shared/gen"
	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/seedrand"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

func silentLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testConfig(name string) Config {
	return Config{
		HostName:   "testhost",
		PlayerName: name,
		Version:    "test",
		// Long resync interval so consistency sweeps only run when a
		// test advances time deliberately.
		SyncInterval:    50 * time.Millisecond,
		ResyncInterval:  time.Hour,
		ReconnectWindow: time.Minute,
		Log:             silentLog(),
	}
}

// pump runs a few zero-ish updates so synchronously delivered messages work
// through each session's inbox without tripping any timer.
func pump(sessions ...*Session) {
	for i := 0; i < 4; i++ {
		for _, s := range sessions {
			s.Update(0.001)
		}
	}
}

// forceSnapshot advances the host far enough to emit one snapshot and lets
// the clients apply it.
func forceSnapshot(host *Session, clients ...*Session) {
	host.Update(0.06)
	pump(clients...)
}

func newPair(t *testing.T) (*Session, *Session, *network.LoopbackNet) {
	t.Helper()
	net := network.NewLoopbackNet()
	host := NewHost(testConfig("alice"), net.Host())
	client := NewClient(testConfig("bob"), net.Connect("c1"))
	pump(client, host, client)
	if !client.Joined() {
		t.Fatal("client never joined")
	}
	return host, client, net
}

func TestJoinHandshake(t *testing.T) {
	host, client, _ := newPair(t)

	if got := client.LocalSlot(); got != 1 {
		t.Fatalf("client slot = %d, want 1", got)
	}
	if client.SessionSeed() == 0 || client.SessionSeed() != host.SessionSeed() {
		t.Fatalf("seed mismatch: host %d client %d", host.SessionSeed(), client.SessionSeed())
	}
	if client.ReconnectToken() == "" {
		t.Fatal("client has no reconnect token")
	}
	if host.Player(1) == nil {
		t.Fatal("host did not create a player for the new slot")
	}

	for _, s := range []*Session{host, client} {
		slots := s.Slots()
		if !slots[0].Occupied || slots[0].Name != "alice" {
			t.Fatalf("%s slot 0: %+v", s.Role(), slots[0])
		}
		if !slots[1].Occupied || slots[1].Name != "bob" {
			t.Fatalf("%s slot 1: %+v", s.Role(), slots[1])
		}
	}
}

func TestJoinVersionMismatch(t *testing.T) {
	net := network.NewLoopbackNet()
	host := NewHost(testConfig("alice"), net.Host())

	cfg := testConfig("bob")
	cfg.Version = "other"
	client := NewClient(cfg, net.Connect("c1"))

	var reason string
	client.OnJoinRejected = func(r string) { reason = r }
	pump(client, host, client)

	if reason != "version mismatch" {
		t.Fatalf("reject reason = %q", reason)
	}
	if client.Active() {
		t.Fatal("rejected client still active")
	}
}

func TestJoinSessionFull(t *testing.T) {
	net := network.NewLoopbackNet()
	host := NewHost(testConfig("alice"), net.Host())

	var clients []*Session
	for _, id := range []network.PeerID{"c1", "c2", "c3"} {
		c := NewClient(testConfig(string(id)), net.Connect(id))
		pump(c, host, c)
		if !c.Joined() {
			t.Fatalf("%s never joined", id)
		}
		clients = append(clients, c)
	}
	if clients[2].LocalSlot() != 3 {
		t.Fatalf("third client slot = %d, want 3", clients[2].LocalSlot())
	}

	late := NewClient(testConfig("late"), net.Connect("c4"))
	var reason string
	late.OnJoinRejected = func(r string) { reason = r }
	pump(late, host, late)

	if reason != "session full" {
		t.Fatalf("reject reason = %q", reason)
	}
}

func TestSpawnEventsReachClient(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{X: 10, Y: 20, HP: 30, MaxHP: 30, Type: "husk"})
	pid := host.SpawnPickup(sim.PickupState{X: 5, Y: 6, Type: "xp"})
	pump(client)

	e := client.Enemy(id)
	if e == nil || e.Type != "husk" || e.HP != 30 {
		t.Fatalf("client enemy = %+v", e)
	}
	if p := client.Pickup(pid); p == nil || p.Type != "xp" {
		t.Fatalf("client pickup = %+v", p)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{HP: 10, MaxHP: 10, Type: "husk"})
	pump(client)

	host.DestroyEnemy(id)
	host.DestroyEnemy(id)
	pump(client)

	if client.Enemy(id) != nil {
		t.Fatal("enemy survived destroy")
	}
	if got := client.DrainDestroyEvents(); len(got) != 1 {
		t.Fatalf("destroy events = %d, want 1", len(got))
	}
	// A straggler destroy for the same ID keeps being a no-op.
	pump(client)
	if got := client.DrainDestroyEvents(); len(got) != 0 {
		t.Fatalf("extra destroy events = %d", len(got))
	}
}

func TestSnapshotCreatesUnknownEntities(t *testing.T) {
	host, client, _ := newPair(t)

	// Entity inserted without a spawn broadcast, as if the client had
	// missed the event.
	e := sim.EnemyState{X: 50, Y: 60, HP: 44, MaxHP: 44, Type: "brute"}
	host.enemies[900] = &e

	forceSnapshot(host, client)

	got := client.Enemy(900)
	if got == nil || got.Type != "brute" || got.HP != 44 {
		t.Fatalf("client enemy = %+v", got)
	}
}

func TestSnapshotDestroysAbsentEntities(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{HP: 10, MaxHP: 10, Type: "husk"})
	pump(client)

	// Removed without a destroy broadcast; the next snapshot is the
	// authority on what exists.
	delete(host.enemies, id)
	forceSnapshot(host, client)

	if client.Enemy(id) != nil {
		t.Fatal("client kept an enemy absent from the snapshot")
	}
}

func TestSnapshotSkipsLocalPlayer(t *testing.T) {
	host, client, _ := newPair(t)

	local := client.Player(client.LocalSlot())
	local.X = 999
	local.HP = 37

	forceSnapshot(host, client)

	if local.X != 999 || local.HP != 37 {
		t.Fatalf("snapshot overwrote the locally simulated player: %+v", local)
	}
}

func TestDiscreteFieldsSnapPositionsEase(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{X: 0, Y: 0, HP: 100, MaxHP: 100, Type: "husk"})
	pump(client)

	he := host.Enemy(id)
	he.X, he.Y = 100, 40
	he.HP = 55
	forceSnapshot(host, client)

	// Health is already the new value, the rendered position is not.
	ce := client.Enemy(id)
	if ce.HP != 55 {
		t.Fatalf("hp did not snap: %v", ce.HP)
	}
	x, y, ok := client.ReplicaPosition(sim.KindEnemy, id)
	if !ok {
		t.Fatal("no replica position")
	}
	if x > 50 || y > 20 {
		t.Fatalf("position jumped ahead of the tween: %v,%v", x, y)
	}

	// One full sync interval later the rendered position has converged.
	client.Update(0.05)
	x, y, _ = client.ReplicaPosition(sim.KindEnemy, id)
	if math.Abs(x-100) > 0.01 || math.Abs(y-40) > 0.01 {
		t.Fatalf("position did not converge: %v,%v", x, y)
	}
}

func TestProjectileTravelsAsEventOnly(t *testing.T) {
	host, client, _ := newPair(t)

	host.FireProjectile(sim.Projectile{
		X: 1, Y: 2, DirX: 1, DirY: 0, Speed: 300, Damage: 9, MaxRange: 400, VisualID: 3,
	})
	pump(client)

	got := client.DrainProjectileSpawns()
	if len(got) != 1 {
		t.Fatalf("projectile spawns = %d, want 1", len(got))
	}
	if got[0].Speed != 300 || got[0].Damage != 9 || got[0].VisualID != 3 {
		t.Fatalf("spawn = %+v", got[0])
	}
}

func TestDamageIsIndicatorOnly(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{HP: 100, MaxHP: 100, Type: "husk"})
	pump(client)

	host.AnnounceDamage(messages.DamageDealt{
		TargetID: id, TargetKind: sim.KindEnemy, Amount: 25,
	})
	pump(client)

	if got := client.Enemy(id).HP; got != 100 {
		t.Fatalf("indicator changed replica hp: %v", got)
	}
	if got := client.DrainDamageEvents(); len(got) != 1 || got[0].Amount != 25 {
		t.Fatalf("damage events = %+v", got)
	}
}

func TestPauseArbitration(t *testing.T) {
	host, client, _ := newPair(t)

	client.RequestPause(true)
	pump(host, client)

	if !host.Paused() || !client.Paused() {
		t.Fatalf("pause not arbitrated: host %v client %v", host.Paused(), client.Paused())
	}

	host.SetPaused(false)
	pump(client)
	if host.Paused() || client.Paused() {
		t.Fatal("unpause not propagated")
	}
}

func TestInputNewestWins(t *testing.T) {
	host, client, _ := newPair(t)

	client.SendInput(1, 0, false, 0)
	client.SendInput(0, 1, true, 1.5)
	pump(host)

	in, ok := host.InputFor(1)
	if !ok || in.Sequence != 2 || in.MoveY != 1 || !in.Shooting {
		t.Fatalf("input = %+v ok=%v", in, ok)
	}

	// A replayed stale sequence must not rewind the slot.
	stale := in
	stale.Sequence = 1
	stale.MoveY = 0
	host.handlePlayerInput("c1", stale)
	if in, _ := host.InputFor(1); in.Sequence != 2 {
		t.Fatalf("stale input accepted: %+v", in)
	}
}

func TestDeathAndRevive(t *testing.T) {
	host, client, _ := newPair(t)

	host.KillPlayer(1)
	host.KillPlayer(1)
	pump(client)

	for _, s := range []*Session{host, client} {
		p := s.Player(1)
		if p.Alive || p.HP != 0 {
			t.Fatalf("%s player 1 = %+v", s.Role(), p)
		}
	}

	host.ReviveAll(time.Now().UnixMilli())
	pump(client)
	for _, s := range []*Session{host, client} {
		p := s.Player(1)
		if !p.Alive || p.HP != p.MaxHP {
			t.Fatalf("%s player 1 after revive = %+v", s.Role(), p)
		}
	}
}

func TestSharedXP(t *testing.T) {
	host, client, _ := newPair(t)

	host.GrantXP(15)
	pump(client)

	if host.Player(0).XP != 15 || host.Player(1).XP != 15 {
		t.Fatalf("host xp = %v / %v", host.Player(0).XP, host.Player(1).XP)
	}
	if client.Player(1).XP != 15 {
		t.Fatalf("client local xp = %v", client.Player(1).XP)
	}
}

func TestHostConsistencySelfHeal(t *testing.T) {
	net := network.NewLoopbackNet()
	cfg := testConfig("alice")
	cfg.ResyncInterval = 10 * time.Millisecond
	host := NewHost(cfg, net.Host())
	client := NewClient(testConfig("bob"), net.Connect("c1"))
	pump(client, host, client)

	host.Player(0).HP = 0 // alive with zero hp: invariant violation
	host.Update(0.02)
	pump(client)

	if host.Player(0).Alive {
		t.Fatal("host did not repair zero-hp player")
	}
	if client.Player(0).Alive {
		t.Fatal("repair was not broadcast")
	}

	host.Player(0).Alive = false
	host.Player(0).HP = 50
	host.Update(0.02)
	if host.Player(0).HP != 0 {
		t.Fatal("host did not clear residual hp on a dead player")
	}
}

func TestClientResyncRoundTrip(t *testing.T) {
	net := network.NewLoopbackNet()
	host := NewHost(testConfig("alice"), net.Host())
	cfg := testConfig("bob")
	cfg.ResyncInterval = 10 * time.Millisecond
	client := NewClient(cfg, net.Connect("c1"))
	pump(client, host, client)
	if !client.Joined() {
		t.Fatal("client never joined")
	}

	// Corrupt the replica of the host's player so the sweep trips.
	client.Player(0).Alive = false

	client.Update(0.02)
	if !client.resyncPending {
		t.Fatal("resync was not requested")
	}
	pump(host, client)

	if !client.Player(0).Alive {
		t.Fatal("resync snapshot did not restore the replica")
	}
	if client.resyncPending {
		t.Fatal("resync flag not cleared by the snapshot")
	}
}

func TestReconnectReclaimsSlot(t *testing.T) {
	host, client, net := newPair(t)

	host.Player(1).XP = 42
	token := client.ReconnectToken()

	net.Drop("c1")
	pump(host)
	if !host.Slots()[1].Disconnected {
		t.Fatal("slot not held after drop")
	}
	if host.Player(1) == nil {
		t.Fatal("player data discarded during reconnect window")
	}

	cfg := testConfig("bob")
	cfg.ReconnectToken = token
	again := NewClient(cfg, net.Connect("c1b"))
	pump(again, host, again)

	if again.LocalSlot() != 1 {
		t.Fatalf("reconnect slot = %d, want 1", again.LocalSlot())
	}
	if host.Player(1).XP != 42 {
		t.Fatalf("progress lost on reconnect: xp = %v", host.Player(1).XP)
	}
	if host.Slots()[1].Disconnected {
		t.Fatal("slot still marked disconnected")
	}
}

func TestReconnectWindowExpiry(t *testing.T) {
	net := network.NewLoopbackNet()
	cfg := testConfig("alice")
	cfg.ReconnectWindow = 50 * time.Millisecond
	host := NewHost(cfg, net.Host())
	client := NewClient(testConfig("bob"), net.Connect("c1"))
	pump(client, host, client)

	net.Drop("c1")
	pump(host)
	host.Update(0.1)

	if host.Slots()[1].Occupied {
		t.Fatal("slot not vacated after window expiry")
	}
	if host.Player(1) != nil {
		t.Fatal("player data kept after window expiry")
	}

	// The vacated slot is open to fresh joiners.
	fresh := NewClient(testConfig("carol"), net.Connect("c2"))
	pump(fresh, host, fresh)
	if fresh.LocalSlot() != 1 {
		t.Fatalf("fresh join slot = %d, want 1", fresh.LocalSlot())
	}
}

func TestHostLossDeactivatesClient(t *testing.T) {
	_, client, net := newPair(t)

	fired := false
	client.OnHostLost = func() { fired = true }

	net.DropHost()
	pump(client)

	if !fired {
		t.Fatal("OnHostLost never fired")
	}
	if client.Active() {
		t.Fatal("client still active after host loss")
	}
}

func TestLateJoinerReceivesWorld(t *testing.T) {
	net := network.NewLoopbackNet()
	host := NewHost(testConfig("alice"), net.Host())

	id := host.SpawnEnemy(sim.EnemyState{X: 7, Y: 8, HP: 12, MaxHP: 12, Type: "crawler"})
	pid := host.SpawnPickup(sim.PickupState{X: 1, Y: 2, Type: "health"})
	host.GrantXP(5)

	late := NewClient(testConfig("bob"), net.Connect("c1"))
	pump(late, host, late)

	if !late.Joined() {
		t.Fatal("late joiner never joined")
	}
	if e := late.Enemy(id); e == nil || e.Type != "crawler" {
		t.Fatalf("late joiner enemy = %+v", e)
	}
	if p := late.Pickup(pid); p == nil || p.Type != "health" {
		t.Fatalf("late joiner pickup = %+v", p)
	}
	if p := late.Player(0); p == nil || p.XP != 5 {
		t.Fatalf("late joiner host replica = %+v", p)
	}
}

func TestInterpolationTracksLatestSnapshot(t *testing.T) {
	host, client, _ := newPair(t)

	id := host.SpawnEnemy(sim.EnemyState{X: 100, Y: 100, HP: 30, MaxHP: 30, Type: "husk"})
	pump(client)

	he := host.Enemy(id)
	for _, x := range []float64{110, 120, 130} {
		he.X = x
		forceSnapshot(host, client)
		client.Update(0.01)
	}

	// Run well past one sync interval so the final tween finishes.
	for i := 0; i < 10; i++ {
		client.Update(0.05)
	}
	x, y, ok := client.ReplicaPosition(sim.KindEnemy, id)
	if !ok {
		t.Fatal("no replica position")
	}
	if math.Abs(x-130) > 0.01 || math.Abs(y-100) > 0.01 {
		t.Fatalf("replica settled at %v,%v, want 130,100", x, y)
	}
}

func TestSharedSeedDrivesIdenticalGeneration(t *testing.T) {
	net := network.NewLoopbackNet()
	cfg := testConfig("alice")
	cfg.SessionSeed = 42
	host := NewHost(cfg, net.Host())
	client := NewClient(testConfig("bob"), net.Connect("c1"))
	pump(client, host, client)

	if client.SessionSeed() != 42 {
		t.Fatalf("client seed = %d, want 42", client.SessionSeed())
	}
	if seedrand.FloorSeed(host.SessionSeed(), 1) != seedrand.FloorSeed(client.SessionSeed(), 1) {
		t.Fatal("floor seeds diverged")
	}

	// Each peer rolls the room independently and lands on the same template.
	hr := gen.BuildRoom(host.SessionSeed(), 1, 0, 0)
	cr := gen.BuildRoom(client.SessionSeed(), 1, 0, 0)
	if hr.Template.ID != cr.Template.ID {
		t.Fatalf("templates diverged: %q vs %q", hr.Template.ID, cr.Template.ID)
	}
	if len(hr.EnemySpawns) != len(cr.EnemySpawns) {
		t.Fatalf("spawn counts diverged: %d vs %d", len(hr.EnemySpawns), len(cr.EnemySpawns))
	}
}

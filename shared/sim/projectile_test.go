package sim

import (
	"math"
	"testing"
)

func TestStepProjectileConstantVelocity(t *testing.T) {
	p := Projectile{X: 100, Y: 100, DirX: 1, DirY: 0, Speed: 200, MaxRange: 1000}

	p = StepProjectile(p, 0.1)
	if math.Abs(p.X-120) > 1e-9 || p.Y != 100 {
		t.Fatalf("after 0.1s: got (%v, %v), want (120, 100)", p.X, p.Y)
	}
	if p.Expired {
		t.Fatal("expired before reaching max range")
	}
}

func TestStepProjectileStopsAtMaxRange(t *testing.T) {
	p := Projectile{DirX: 0, DirY: 1, Speed: 100, MaxRange: 50}

	for i := 0; i < 100; i++ {
		p = StepProjectile(p, 0.016)
	}
	if !p.Expired {
		t.Fatal("projectile never expired")
	}
	if math.Abs(p.Y-50) > 1e-9 {
		t.Fatalf("overshot max range: y=%v", p.Y)
	}
	if math.Abs(p.Traveled-50) > 1e-9 {
		t.Fatalf("traveled %v, want 50", p.Traveled)
	}

	// Further steps are no-ops.
	again := StepProjectile(p, 1.0)
	if again != p {
		t.Fatalf("expired projectile mutated: %+v != %+v", again, p)
	}
}

// Host and client advance independent copies of the same spawn at different
// frame cadences; both must agree on the final resting point.
func TestStepProjectileCadenceAgreementAtExpiry(t *testing.T) {
	spawn := Projectile{X: 10, Y: -4, DirX: 0.6, DirY: 0.8, Speed: 150, MaxRange: 300}

	host := spawn
	for !host.Expired {
		host = StepProjectile(host, 1.0/30.0)
	}

	client := spawn
	for !client.Expired {
		client = StepProjectile(client, 1.0/60.0)
	}

	if math.Abs(host.X-client.X) > 1e-9 || math.Abs(host.Y-client.Y) > 1e-9 {
		t.Fatalf("roles diverged at expiry: host (%v,%v) client (%v,%v)",
			host.X, host.Y, client.X, client.Y)
	}
	if math.Abs(host.Traveled-300) > 1e-9 {
		t.Fatalf("host traveled %v, want 300", host.Traveled)
	}
}

func TestStepProjectileDeterministicAcrossCopies(t *testing.T) {
	spawn := Projectile{DirX: -1, DirY: 0, Speed: 75, MaxRange: 400, Damage: 12, Pierce: 2}

	a, b := spawn, spawn
	for i := 0; i < 500; i++ {
		a = StepProjectile(a, 1.0/60.0)
		b = StepProjectile(b, 1.0/60.0)
		if a != b {
			t.Fatalf("copies diverged at step %d", i)
		}
	}
}

func TestNormalize(t *testing.T) {
	x, y := Normalize(3, 4)
	if math.Abs(x-0.6) > 1e-12 || math.Abs(y-0.8) > 1e-12 {
		t.Fatalf("Normalize(3,4) = (%v, %v)", x, y)
	}
	if x, y := Normalize(0, 0); x != 0 || y != 0 {
		t.Fatalf("Normalize(0,0) = (%v, %v)", x, y)
	}
}

func TestClonePlayerDoesNotAlias(t *testing.T) {
	p := PlayerState{
		Slot:    1,
		Weapons: []WeaponState{{ID: "bolt", Level: 2}},
	}
	c := ClonePlayer(p)
	c.Weapons[0].Level = 9
	if p.Weapons[0].Level != 2 {
		t.Fatal("ClonePlayer aliased the weapons slice")
	}
}

package protocol

import (
	"reflect"
	"testing"

	"github.com/feralbyte/nightswarm-mp/shared/messages"
	"github.com/feralbyte/nightswarm-mp/shared/sim"
)

// Every kind must round-trip through New/KindOf: the two switches and the
// kind list have to agree.
func TestKindTablesAgree(t *testing.T) {
	for _, k := range Kinds {
		proto := New(k)
		if proto == nil {
			t.Fatalf("New(%s) returned nil", k)
		}
		value := reflect.ValueOf(proto).Elem().Interface()
		got, ok := KindOf(value)
		if !ok {
			t.Fatalf("KindOf does not recognize %T", value)
		}
		if got != k {
			t.Fatalf("kind mismatch for %T: New says %s, KindOf says %s", value, k, got)
		}
	}
}

func TestKindStringsAreUnique(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds {
		s := k.String()
		if prev, ok := seen[s]; ok {
			t.Fatalf("kinds %d and %d share the name %q", prev, k, s)
		}
		seen[s] = k
	}
}

func TestKindOfRejectsNonMessages(t *testing.T) {
	if _, ok := KindOf(struct{ X int }{}); ok {
		t.Fatal("KindOf accepted an arbitrary struct")
	}
	if _, ok := KindOf(42); ok {
		t.Fatal("KindOf accepted an int")
	}
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	snap := messages.GameSnapshot{
		Tick: 9,
		Players: []sim.PlayerState{{
			Slot: 1, X: 10, Y: 20, HP: 80, MaxHP: 100, Alive: true,
			Weapons: []sim.WeaponState{{ID: "bolt", Level: 2, Cooldown: 0.4}},
		}},
		Enemies: []messages.EnemyEntry{
			{ID: 7, EnemyState: sim.EnemyState{X: 100, Y: 100, HP: 30, MaxHP: 30, Type: "husk"}},
		},
		Pickups: []messages.PickupEntry{
			{ID: 8, PickupState: sim.PickupState{X: 5, Y: 6, Type: "xp_gem", TargetSlot: sim.NoTarget}},
		},
	}

	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var out messages.GameSnapshot
	if err := Decode(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.Tick != 9 || len(out.Players) != 1 || len(out.Enemies) != 1 || len(out.Pickups) != 1 {
		t.Fatalf("round trip lost entries: %+v", out)
	}
	if out.Players[0].Weapons[0].ID != "bolt" {
		t.Fatalf("nested weapon state lost: %+v", out.Players[0])
	}
	if out.Enemies[0].ID != 7 || out.Enemies[0].Type != "husk" {
		t.Fatalf("enemy entry mangled: %+v", out.Enemies[0])
	}
	if out.Pickups[0].TargetSlot != sim.NoTarget {
		t.Fatalf("pickup target slot mangled: %+v", out.Pickups[0])
	}
}

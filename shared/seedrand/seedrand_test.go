package seedrand

import "testing"

func TestIdenticalSeedsProduceIdenticalSequences(t *testing.T) {
	seeds := []uint32{0, 1, 42, 0xDEADBEEF, 0xFFFFFFFF}
	for _, seed := range seeds {
		a := New(seed)
		b := New(seed)
		for i := 0; i < 10000; i++ {
			va, vb := a.Next(), b.Next()
			if va != vb {
				t.Fatalf("seed %d diverged at call %d: %v != %v", seed, i, va, vb)
			}
			if va < 0 || va >= 1 {
				t.Fatalf("seed %d call %d out of [0,1): %v", seed, i, va)
			}
		}
	}
}

func TestResetRewindsSequence(t *testing.T) {
	r := New(77)
	first := make([]float64, 100)
	for i := range first {
		first[i] = r.Next()
	}
	r.Reset()
	for i := range first {
		if got := r.Next(); got != first[i] {
			t.Fatalf("after reset call %d: got %v, want %v", i, got, first[i])
		}
	}
}

func TestRangeBounds(t *testing.T) {
	r := New(9)
	for i := 0; i < 1000; i++ {
		v := r.Range(3, 10)
		if v < 3 || v >= 10 {
			t.Fatalf("Range(3,10) returned %d", v)
		}
	}
	if v := r.Range(5, 5); v != 5 {
		t.Fatalf("empty range should return min, got %d", v)
	}
}

func TestChooseAndShuffleAreDeterministic(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	a := New(1234)
	b := New(1234)
	for i := 0; i < 50; i++ {
		if Choose(a, items) != Choose(b, items) {
			t.Fatalf("Choose diverged at call %d", i)
		}
	}

	sa := Shuffle(New(555), items)
	sb := Shuffle(New(555), items)
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("Shuffle diverged at index %d: %q != %q", i, sa[i], sb[i])
		}
	}

	// Shuffle must not modify its input.
	if items[0] != "a" || items[4] != "e" {
		t.Fatalf("Shuffle mutated input: %v", items)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := Shuffle(New(31), items)
	if len(out) != len(items) {
		t.Fatalf("length changed: %d", len(out))
	}
	seen := make(map[int]bool)
	for _, v := range out {
		if seen[v] {
			t.Fatalf("duplicate element %d in %v", v, out)
		}
		seen[v] = true
	}
}

func TestProbabilityExtremes(t *testing.T) {
	r := New(2)
	for i := 0; i < 100; i++ {
		if r.Probability(0) {
			t.Fatal("Probability(0) returned true")
		}
		if !r.Probability(1.0) {
			t.Fatal("Probability(1) returned false")
		}
	}
}

func TestCreateSeedIsPureAndOrderSensitive(t *testing.T) {
	if CreateSeed(42, 1, 0, 0) != CreateSeed(42, 1, 0, 0) {
		t.Fatal("CreateSeed is not deterministic")
	}
	if CreateSeed(1, 2) == CreateSeed(2, 1) {
		t.Fatal("CreateSeed ignores argument order")
	}

	// Changing any single argument must change the result, and small
	// distinct tuples must not collide.
	seen := make(map[uint32][4]uint32)
	for f := 0; f < 8; f++ {
		for x := 0; x < 8; x++ {
			for y := 0; y < 8; y++ {
				s := CreateSeed(42, uint32(f), uint32(x), uint32(y))
				key := [4]uint32{42, uint32(f), uint32(x), uint32(y)}
				if prev, ok := seen[s]; ok {
					t.Fatalf("collision: %v and %v both map to %d", prev, key, s)
				}
				seen[s] = key
			}
		}
	}
}

func TestSeedFromString(t *testing.T) {
	if SeedFromString("nightswarm") != SeedFromString("nightswarm") {
		t.Fatal("SeedFromString is not deterministic")
	}
	if SeedFromString("room-a") == SeedFromString("room-b") {
		t.Fatal("distinct strings collided")
	}
	if SeedFromString("") == SeedFromString("x") {
		t.Fatal("empty string collided with non-empty")
	}
}

func TestSubSeedDerivations(t *testing.T) {
	if FloorSeed(42, 1) != FloorSeed(42, 1) {
		t.Fatal("FloorSeed is not deterministic")
	}
	if FloorSeed(42, 1) == FloorSeed(42, 2) {
		t.Fatal("floors share a seed")
	}
	if RoomSeed(42, 1, 0, 0) == RoomSeed(42, 1, 0, 1) {
		t.Fatal("rooms share a seed")
	}
	if RoomSeed(42, 1, -1, 0) == RoomSeed(42, 1, 1, 0) {
		t.Fatal("negative room coordinate collided with positive")
	}
	if UpgradeSeed(42, 0, 3) == UpgradeSeed(42, 1, 3) {
		t.Fatal("players share an upgrade seed")
	}
}

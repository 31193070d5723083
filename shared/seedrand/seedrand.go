// Package seedrand implements the deterministic pseudo-random generator that
// keeps procedural generation identical across peers. Every peer seeds its own
// generator from the session seed it received over the wire and replays the
// same sequence locally; the generated content itself is never transmitted.
package seedrand

// Rand is a Mulberry32 generator. Its output is a pure function of the seed
// and the call count: no global state, no platform entropy, 32-bit integer
// arithmetic only. Two generators built from the same seed on different peers
// produce bit-identical sequences.
type Rand struct {
	state uint32
	seed  uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Rand {
	return &Rand{state: seed, seed: seed}
}

// Seed returns the seed the generator was constructed with.
func (r *Rand) Seed() uint32 {
	return r.seed
}

// Reset rewinds the generator to its initial seed.
func (r *Rand) Reset() {
	r.state = r.seed
}

// Next advances the generator and returns a float64 in [0, 1).
func (r *Rand) Next() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Range returns an integer in [min, max). Returns min when the range is empty.
func (r *Rand) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(r.Next()*float64(max-min))
}

// Float returns a float64 in [min, max).
func (r *Rand) Float(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Probability returns true with probability p.
func (r *Rand) Probability(p float64) bool {
	return r.Next() < p
}

// Choose returns a uniformly selected element of items. Panics on an empty
// slice, same as indexing would.
func Choose[T any](r *Rand, items []T) T {
	return items[r.Range(0, len(items))]
}

// Shuffle returns a new slice holding a Fisher-Yates permutation of items.
// The input is not modified.
func Shuffle[T any](r *Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Range(0, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

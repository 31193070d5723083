package sim

import "math"

// Projectile is the full state of one independently simulated projectile.
// Projectiles are never replicated after spawn: the host broadcasts a single
// spawn event and every peer then advances its own copy with StepProjectile.
// That only stays consistent because StepProjectile is the one kinematics
// routine both roles call.
type Projectile struct {
	X, Y       float64
	DirX, DirY float64
	Speed      float64
	Damage     float64
	Pierce     int
	Crit       bool
	MaxRange   float64
	VisualID   int

	Traveled float64
	Expired  bool
}

// StepProjectile advances p by dt seconds of constant-velocity travel and
// returns the new state. The final step is truncated so the projectile stops
// exactly at MaxRange before expiring. Pure: same input, same output, on
// every peer.
func StepProjectile(p Projectile, dt float64) Projectile {
	if p.Expired {
		return p
	}

	step := p.Speed * dt
	remaining := p.MaxRange - p.Traveled
	if step >= remaining {
		step = remaining
		p.Expired = true
	}

	p.X += p.DirX * step
	p.Y += p.DirY * step
	p.Traveled += step
	return p
}

// Normalize scales (x, y) to unit length. The zero vector is returned as-is.
func Normalize(x, y float64) (float64, float64) {
	d := math.Sqrt(x*x + y*y)
	if d == 0 {
		return 0, 0
	}
	return x / d, y / d
}

// Dist returns the euclidean distance between two points.
func Dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

package agent

import "math/rand"

const (
	// ImpulseMin and ImpulseMax bound each component of a random impulse.
	ImpulseMin = -0.5
	ImpulseMax = 0.5
)

// Vector is a 2D float vector in pixel space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// RandomImpulse draws a movement impulse with both components uniform in [ImpulseMin, ImpulseMax).
func RandomImpulse(rng *rand.Rand) Vector {
	return Vector{
		X: rng.Float64()*(ImpulseMax-ImpulseMin) + ImpulseMin,
		Y: rng.Float64()*(ImpulseMax-ImpulseMin) + ImpulseMin,
	}
}

// RandomGenome draws a genome of n random impulses.
func RandomGenome(n int, rng *rand.Rand) []Vector {
	genome := make([]Vector, n)
	for i := range genome {
		genome[i] = RandomImpulse(rng)
	}
	return genome
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// core/noise.go
package core

import (
	"math"
	"math/rand"
	"time"
)

// NoiseSource draws zero-mean Gaussian samples from an injected uniform
// generator. The generator is the only state; a NoiseSource is safe for
// sequential use by a single owner, and callers wanting reproducible output
// seed the *rand.Rand themselves.
type NoiseSource struct {
	rng *rand.Rand
}

// NewNoiseSource wraps rng. A nil rng gets a time-seeded generator, which is
// what the CLI wants; tests pass their own seeded source.
func NewNoiseSource(rng *rand.Rand) *NoiseSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &NoiseSource{rng: rng}
}

// Sample returns count independent draws from a zero-mean Gaussian with the
// given standard deviation, via the Box-Muller transform. It always returns
// a full slice and never emits NaN or Inf: the uniform draw feeding the log
// is resampled while it is exactly zero.
func (ns *NoiseSource) Sample(count int, stdDev float64) []float64 {
	out := make([]float64, count)
	if stdDev == 0 {
		return out
	}
	for i := range out {
		u1 := ns.rng.Float64()
		for u1 == 0 {
			u1 = ns.rng.Float64()
		}
		u2 := ns.rng.Float64()
		out[i] = stdDev * math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	}
	return out
}

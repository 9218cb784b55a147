package core

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestNoiseSample_ZeroStdDev(t *testing.T) {
	ns := NewNoiseSource(rand.New(rand.NewSource(1)))
	out := ns.Sample(1000, 0)
	if len(out) != 1000 {
		t.Fatalf("Sample returned %d values, want 1000", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("Sample(N, 0)[%d] = %g, want exactly 0", i, v)
		}
	}
}

func TestNoiseSample_EmpiricalStdDev(t *testing.T) {
	// With a fixed seed and a large N the empirical standard deviation
	// should land within a couple of percent of the requested one.
	ns := NewNoiseSource(rand.New(rand.NewSource(42)))
	const (
		n     = 200000
		sigma = 2.5
	)
	out := ns.Sample(n, sigma)

	mean, std := stat.MeanStdDev(out, nil)
	if math.Abs(mean) > 0.05 {
		t.Errorf("empirical mean = %g, want ~0", mean)
	}
	if math.Abs(std-sigma)/sigma > 0.02 {
		t.Errorf("empirical stddev = %g, want within 2%% of %g", std, sigma)
	}
}

func TestNoiseSample_NeverNaNOrInf(t *testing.T) {
	ns := NewNoiseSource(rand.New(rand.NewSource(7)))
	out := ns.Sample(100000, 1)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Sample produced non-finite value %g at index %d", v, i)
		}
	}
}

func TestNoiseSample_Deterministic(t *testing.T) {
	// Two sources with the same seed must draw the same sequence; that is
	// the whole point of injecting the generator.
	a := NewNoiseSource(rand.New(rand.NewSource(99)))
	b := NewNoiseSource(rand.New(rand.NewSource(99)))
	outA := a.Sample(64, 1)
	outB := b.Sample(64, 1)
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("seeded sources diverge at index %d: %g vs %g", i, outA[i], outB[i])
		}
	}
}

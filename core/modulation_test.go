package core

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/signalsfoundry/modulation-demo/model"
)

func testEngine(seed int64) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)))
}

// nearNoiseless pushes the injected noise far below floating tolerance so
// waveform tests can compare against the closed-form signal laws.
const nearNoiselessSNR = 300.0

func TestGenerate_LengthsAndQuadrature(t *testing.T) {
	// Kinds whose quadrature rail must stay exactly zero.
	realOnly := map[model.ModulationKind]bool{
		model.ModulationAM:   true,
		model.ModulationFM:   true,
		model.ModulationBPSK: true,
		model.ModulationFSK:  true,
	}

	for _, kind := range model.Kinds() {
		p := validParams()
		p.Kind = kind
		p.DurationSec = 0.05

		sig, err := testEngine(1).Generate(p, nil)
		if err != nil {
			t.Fatalf("Generate(%s): %v", kind, err)
		}

		want := p.NumSamples()
		if len(sig.Time) != want || len(sig.Real) != want || len(sig.Imag) != want {
			t.Fatalf("Generate(%s) lengths time=%d real=%d imag=%d, want all %d",
				kind, len(sig.Time), len(sig.Real), len(sig.Imag), want)
		}

		if realOnly[kind] {
			for i, v := range sig.Imag {
				if v != 0 {
					t.Fatalf("Generate(%s).Imag[%d] = %g, want 0", kind, i, v)
				}
			}
		}

		if isDigital(kind) {
			if sig.Constellation == nil {
				t.Fatalf("Generate(%s) produced no constellation", kind)
			}
		} else if sig.Constellation != nil {
			t.Fatalf("Generate(%s) produced a constellation for an analog kind", kind)
		}
	}
}

func TestGenerate_TimeBase(t *testing.T) {
	p := validParams()
	p.SampleRate = 8000
	p.DurationSec = 0.01

	sig, err := testEngine(1).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n := range sig.Time {
		want := float64(n) / 8000
		if math.Abs(sig.Time[n]-want) > 1e-12 {
			t.Fatalf("Time[%d] = %g, want %g", n, sig.Time[n], want)
		}
	}
}

func TestGenerate_UnknownKindFails(t *testing.T) {
	p := validParams()
	p.Kind = "xyz"
	if _, err := testEngine(1).Generate(p, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Generate with unknown kind = %v, want ErrInvalidParameter", err)
	}
}

func TestGenerate_BPSKRoundTrip(t *testing.T) {
	p := SignalParameters{
		Kind:          model.ModulationBPSK,
		CarrierFreqHz: 1000,
		MessageRateHz: 100,
		SNRdB:         30,
		SampleRate:    44100,
		DurationSec:   1,
	}

	sig, err := testEngine(2).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(sig.Real) != 44100 {
		t.Fatalf("numSamples = %d, want 44100", len(sig.Real))
	}
	if sps := p.SamplesPerSymbol(); sps != 441 {
		t.Fatalf("samplesPerSymbol = %d, want 441", sps)
	}
	if len(sig.Constellation) != 100 {
		t.Fatalf("constellation has %d points, want 100", len(sig.Constellation))
	}
	for i, pt := range sig.Constellation {
		if pt.I != 1 && pt.I != -1 {
			t.Fatalf("constellation[%d].I = %g, want ±1", i, pt.I)
		}
		if pt.Q != 0 {
			t.Fatalf("constellation[%d].Q = %g, want 0", i, pt.Q)
		}
	}
}

func TestGenerate_QPSKUnitCircle(t *testing.T) {
	p := validParams()
	p.Kind = model.ModulationQPSK
	p.DurationSec = 0.5

	sig, err := testEngine(3).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sig.Constellation) == 0 {
		t.Fatal("QPSK produced no constellation points")
	}
	for i, pt := range sig.Constellation {
		r := pt.I*pt.I + pt.Q*pt.Q
		if math.Abs(r-1) > 1e-12 {
			t.Fatalf("constellation[%d] has |s|² = %g, want 1", i, r)
		}
	}
}

func TestGenerate_FSKPoints(t *testing.T) {
	p := validParams()
	p.Kind = model.ModulationFSK
	p.DurationSec = 0.5

	sig, err := testEngine(4).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, pt := range sig.Constellation {
		if (pt.I != 1 && pt.I != -1) || pt.Q != 0 {
			t.Fatalf("constellation[%d] = %+v, want (±1, 0)", i, pt)
		}
	}
}

func TestGenerate_ConstellationLengthFloors(t *testing.T) {
	// 44100/130 floors to 339 samples per symbol; 0.1 s gives 4410
	// samples, i.e. 13 full symbols with 3 trailing samples.
	p := validParams()
	p.Kind = model.ModulationBPSK
	p.MessageRateHz = 130
	p.DurationSec = 0.1

	sig, err := testEngine(5).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := len(sig.Constellation), 4410/339; got != want {
		t.Fatalf("constellation has %d points, want %d", got, want)
	}
}

func TestGenerate_SymbolTailClamps(t *testing.T) {
	// Trailing samples beyond the last full symbol must reuse the last
	// symbol's bit rather than wrap to the first or go to zero.
	p := SignalParameters{
		Kind:          model.ModulationBPSK,
		CarrierFreqHz: 1000,
		MessageRateHz: 130,
		SNRdB:         nearNoiselessSNR,
		SampleRate:    44100,
		DurationSec:   0.1,
	}

	sig, err := testEngine(6).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	last := sig.Constellation[len(sig.Constellation)-1]
	n := len(sig.Real) - 1 // well past the last full symbol boundary
	tn := sig.Time[n]
	want := last.I * math.Cos(2*math.Pi*p.CarrierFreqHz*tn)
	if math.Abs(sig.Real[n]-want) > 1e-6 {
		t.Fatalf("tail sample = %g, want %g (last symbol clamped)", sig.Real[n], want)
	}
}

func TestGenerate_AMMatchesFormula(t *testing.T) {
	p := SignalParameters{
		Kind:            model.ModulationAM,
		CarrierFreqHz:   1000,
		MessageRateHz:   100,
		SNRdB:           nearNoiselessSNR,
		ModulationIndex: 0.7,
		SampleRate:      44100,
		DurationSec:     0.02,
	}

	sig, err := testEngine(7).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n, tn := range sig.Time {
		m := math.Sin(2 * math.Pi * p.MessageRateHz * tn)
		want := (1 + p.ModulationIndex*m) * math.Cos(2*math.Pi*p.CarrierFreqHz*tn)
		if math.Abs(sig.Real[n]-want) > 1e-6 {
			t.Fatalf("AM sample %d = %g, want %g", n, sig.Real[n], want)
		}
	}
}

func TestGenerate_FMZeroDeviationIsPureCarrier(t *testing.T) {
	p := SignalParameters{
		Kind:            model.ModulationFM,
		CarrierFreqHz:   2000,
		MessageRateHz:   100,
		SNRdB:           nearNoiselessSNR,
		ModulationIndex: 1,
		FreqDeviationHz: 0,
		SampleRate:      44100,
		DurationSec:     0.02,
	}

	sig, err := testEngine(8).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n, tn := range sig.Time {
		want := math.Cos(2 * math.Pi * p.CarrierFreqHz * tn)
		if math.Abs(sig.Real[n]-want) > 1e-6 {
			t.Fatalf("FM sample %d = %g, want pure carrier %g", n, sig.Real[n], want)
		}
	}
}

func TestGenerate_ExternalMessageWrapsModulo(t *testing.T) {
	// A three-sample message must repeat over the whole signal.
	message := []float64{0.25, -0.5, 1}
	p := SignalParameters{
		Kind:            model.ModulationAM,
		CarrierFreqHz:   500,
		MessageRateHz:   100,
		SNRdB:           nearNoiselessSNR,
		ModulationIndex: 1,
		SampleRate:      8000,
		DurationSec:     0.01,
	}

	sig, err := testEngine(9).Generate(p, message)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n, tn := range sig.Time {
		m := message[n%len(message)]
		want := (1 + m) * math.Cos(2*math.Pi*p.CarrierFreqHz*tn)
		if math.Abs(sig.Real[n]-want) > 1e-6 {
			t.Fatalf("sample %d = %g, want %g (message index %d)", n, sig.Real[n], want, n%len(message))
		}
	}
}

func TestHilbertApprox_Boundary(t *testing.T) {
	m := []float64{1, 2, 3, 4, 5, 6}
	h := hilbertApprox(m)

	// First three samples are deliberately zero.
	for n := 0; n < 3; n++ {
		if h[n] != 0 {
			t.Fatalf("h[%d] = %g, want 0 (boundary)", n, h[n])
		}
	}
	for n := 3; n < len(m); n++ {
		want := 0.5 * (m[n] - m[n-2])
		if h[n] != want {
			t.Fatalf("h[%d] = %g, want %g", n, h[n], want)
		}
	}
}

func TestGenerate_SSBSidebandSigns(t *testing.T) {
	// With an external message the SSB laws are fully deterministic, so
	// both sidebands can be checked sample-for-sample.
	message := []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}
	base := SignalParameters{
		CarrierFreqHz: 1000,
		MessageRateHz: 300,
		SNRdB:         nearNoiselessSNR,
		SampleRate:    8000,
		DurationSec:   0.01,
	}

	for _, tc := range []struct {
		kind model.ModulationKind
		sign float64
	}{
		{model.ModulationLSB, -1},
		{model.ModulationUSB, +1},
		{model.ModulationSSB, +1}, // generic SSB transmits the upper sideband
	} {
		p := base
		p.Kind = tc.kind

		sig, err := testEngine(10).Generate(p, message)
		if err != nil {
			t.Fatalf("Generate(%s): %v", tc.kind, err)
		}

		m := make([]float64, len(sig.Time))
		for n := range m {
			m[n] = message[n%len(message)]
		}
		h := hilbertApprox(m)

		for n, tn := range sig.Time {
			c := math.Cos(2 * math.Pi * p.CarrierFreqHz * tn)
			s := math.Sin(2 * math.Pi * p.CarrierFreqHz * tn)
			want := m[n]*c + tc.sign*h[n]*s
			if math.Abs(sig.Real[n]-want) > 1e-6 {
				t.Fatalf("%s sample %d = %g, want %g", tc.kind, n, sig.Real[n], want)
			}
		}
	}
}

func TestGenerate_SeededEnginesAgree(t *testing.T) {
	p := validParams()
	p.Kind = model.ModulationQPSK
	p.DurationSec = 0.05

	a, err := testEngine(77).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := testEngine(77).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n := range a.Real {
		if a.Real[n] != b.Real[n] {
			t.Fatalf("seeded engines diverge at sample %d", n)
		}
	}
	for i := range a.Constellation {
		if a.Constellation[i] != b.Constellation[i] {
			t.Fatalf("seeded engines drew different symbols at %d", i)
		}
	}
}

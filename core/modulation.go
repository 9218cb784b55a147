// core/modulation.go
package core

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/signalsfoundry/modulation-demo/model"
)

const invSqrt2 = 1.0 / math.Sqrt2

// Engine synthesizes modulated signals. It owns the symbol RNG and the
// noise source; everything else is computed fresh per Generate call, so a
// single Engine may serve sequential requests with no other shared state.
type Engine struct {
	rng   *rand.Rand
	noise *NoiseSource
}

// NewEngine constructs an engine around rng. A nil rng gets a time-seeded
// generator; tests inject a seeded one for deterministic symbols and noise.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		rng:   rng,
		noise: NewNoiseSource(rng),
	}
}

// generatorFunc fills sig.Real / sig.Imag (and Constellation for the
// digital kinds) from an already-validated parameter set. The time base and
// noise injection are handled by Generate.
type generatorFunc func(e *Engine, p SignalParameters, message []float64, sig *model.GeneratedSignal)

// generators is the dispatch table: one pure generator per modulation kind,
// no subclassing. An unknown kind fails validation before dispatch; there is
// deliberately no silent fallback.
var generators = map[model.ModulationKind]generatorFunc{
	model.ModulationAM:   (*Engine).generateAM,
	model.ModulationFM:   (*Engine).generateFM,
	model.ModulationBPSK: (*Engine).generateBPSK,
	model.ModulationQPSK: (*Engine).generateQPSK,
	model.ModulationFSK:  (*Engine).generateFSK,
	model.ModulationLSB:  (*Engine).generateLSB,
	model.ModulationUSB:  (*Engine).generateUSB,
	model.ModulationSSB:  (*Engine).generateUSB,
}

// Generate synthesizes one signal for the given parameters. The optional
// message slice supplies external audio samples in [-1, 1], indexed modulo
// its own length; when empty, an internally synthesized test tone is used.
//
// Noise is injected last, on the in-phase (real) channel, with amplitude
// sqrt(signalPower / 10^(SNRdB/10)) where signalPower is the measured power
// of the freshly generated pre-noise signal. Requested SNR is therefore
// only approximately achieved for short or highly variable signals; that
// matches the reference behaviour and is kept as-is.
func (e *Engine) Generate(p SignalParameters, message []float64) (*model.GeneratedSignal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.NumSamples()
	sig := &model.GeneratedSignal{
		Kind:       p.Kind,
		SampleRate: p.SampleRate,
		Time:       make([]float64, n),
		Real:       make([]float64, n),
		Imag:       make([]float64, n),
	}
	dt := 1.0 / float64(p.SampleRate)
	for i := range sig.Time {
		sig.Time[i] = float64(i) * dt
	}

	generators[p.Kind](e, p, message, sig)
	e.addNoise(sig, p.SNRdB)
	return sig, nil
}

// addNoise injects SNR-controlled Gaussian noise into the real channel.
// A zero-power signal has no meaningful noise scale and is left untouched.
func (e *Engine) addNoise(sig *model.GeneratedSignal, snrDB float64) {
	n := len(sig.Real)
	if n == 0 {
		return
	}
	power := floats.Dot(sig.Real, sig.Real) / float64(n)
	if power == 0 {
		return
	}
	amplitude := math.Sqrt(power / math.Pow(10, snrDB/10))
	floats.Add(sig.Real, e.noise.Sample(n, amplitude))
}

func (e *Engine) generateAM(p SignalParameters, message []float64, sig *model.GeneratedSignal) {
	m := messageSource(message, sineMessage(p.MessageRateHz))
	wc := 2 * math.Pi * p.CarrierFreqHz
	for n, t := range sig.Time {
		sig.Real[n] = (1 + p.ModulationIndex*m(n, t)) * math.Cos(wc*t)
	}
}

func (e *Engine) generateFM(p SignalParameters, message []float64, sig *model.GeneratedSignal) {
	m := messageSource(message, sineMessage(p.MessageRateHz))
	wc := 2 * math.Pi * p.CarrierFreqHz
	dt := 1.0 / float64(p.SampleRate)

	// The phase deviation is 2π·Δf·k·∫m dτ with the integral accumulated
	// as a running sum scaled by dt.
	integral := 0.0
	for n, t := range sig.Time {
		integral += m(n, t) * dt
		sig.Real[n] = math.Cos(wc*t + 2*math.Pi*p.FreqDeviationHz*p.ModulationIndex*integral)
	}
}

// numSymbols returns how many symbols fit into the signal. A duration
// shorter than one symbol still transmits a single symbol.
func numSymbols(totalSamples, samplesPerSymbol int) int {
	n := totalSamples / samplesPerSymbol
	if n < 1 {
		n = 1
	}
	return n
}

// symbolOf maps sample n to its symbol index. Trailing samples beyond the
// last full symbol reuse that symbol's value (clamp, not wrap).
func symbolOf(n, samplesPerSymbol, symbols int) int {
	idx := n / samplesPerSymbol
	if idx >= symbols {
		idx = symbols - 1
	}
	return idx
}

func (e *Engine) generateBPSK(p SignalParameters, _ []float64, sig *model.GeneratedSignal) {
	sps := p.SamplesPerSymbol()
	symbols := numSymbols(len(sig.Real), sps)

	bits := make([]float64, symbols)
	points := make([]model.ConstellationPoint, symbols)
	for i := range bits {
		bit := 1.0
		if e.rng.Intn(2) == 0 {
			bit = -1.0
		}
		bits[i] = bit
		points[i] = model.ConstellationPoint{I: bit, Q: 0}
	}

	wc := 2 * math.Pi * p.CarrierFreqHz
	for n, t := range sig.Time {
		sig.Real[n] = bits[symbolOf(n, sps, symbols)] * math.Cos(wc*t)
	}
	sig.Constellation = points
}

// qpskSymbols maps each dibit to a unit-circle point at ±1/√2.
var qpskSymbols = [4]model.ConstellationPoint{
	{I: invSqrt2, Q: invSqrt2},
	{I: -invSqrt2, Q: invSqrt2},
	{I: -invSqrt2, Q: -invSqrt2},
	{I: invSqrt2, Q: -invSqrt2},
}

func (e *Engine) generateQPSK(p SignalParameters, _ []float64, sig *model.GeneratedSignal) {
	sps := p.SamplesPerSymbol()
	symbols := numSymbols(len(sig.Real), sps)

	points := make([]model.ConstellationPoint, symbols)
	for i := range points {
		points[i] = qpskSymbols[e.rng.Intn(4)]
	}

	wc := 2 * math.Pi * p.CarrierFreqHz
	for n, t := range sig.Time {
		s := points[symbolOf(n, sps, symbols)]
		c, sn := math.Cos(wc*t), math.Sin(wc*t)
		sig.Real[n] = s.I*c - s.Q*sn
		sig.Imag[n] = s.I*sn + s.Q*c
	}
	sig.Constellation = points
}

func (e *Engine) generateFSK(p SignalParameters, _ []float64, sig *model.GeneratedSignal) {
	sps := p.SamplesPerSymbol()
	symbols := numSymbols(len(sig.Real), sps)

	freqs := make([]float64, symbols)
	points := make([]model.ConstellationPoint, symbols)
	for i := range freqs {
		if e.rng.Intn(2) == 0 {
			freqs[i] = p.CarrierFreqHz - p.FreqDeviationHz
			points[i] = model.ConstellationPoint{I: -1, Q: 0}
		} else {
			freqs[i] = p.CarrierFreqHz + p.FreqDeviationHz
			points[i] = model.ConstellationPoint{I: 1, Q: 0}
		}
	}

	for n, t := range sig.Time {
		sig.Real[n] = math.Cos(2 * math.Pi * freqs[symbolOf(n, sps, symbols)] * t)
	}
	sig.Constellation = points
}

func (e *Engine) generateLSB(p SignalParameters, message []float64, sig *model.GeneratedSignal) {
	e.generateSSB(p, message, sig, -1)
}

func (e *Engine) generateUSB(p SignalParameters, message []float64, sig *model.GeneratedSignal) {
	e.generateSSB(p, message, sig, +1)
}

// generateSSB is the single implementation behind the LSB and USB kinds:
//
//	s[n] = m[n]·cos(ω t) + sign·ĥ(m)[n]·sin(ω t)
//
// with sign -1 for the lower sideband and +1 for the upper. The quadrature
// channel carries the analytic companion m·sin - sign·ĥ·cos.
func (e *Engine) generateSSB(p SignalParameters, message []float64, sig *model.GeneratedSignal, sign float64) {
	src := messageSource(message, voiceMessage(p.MessageRateHz))
	m := make([]float64, len(sig.Time))
	for n, t := range sig.Time {
		m[n] = src(n, t)
	}
	h := hilbertApprox(m)

	wc := 2 * math.Pi * p.CarrierFreqHz
	for n, t := range sig.Time {
		c, sn := math.Cos(wc*t), math.Sin(wc*t)
		sig.Real[n] = m[n]*c + sign*h[n]*sn
		sig.Imag[n] = m[n]*sn - sign*h[n]*c
	}
}

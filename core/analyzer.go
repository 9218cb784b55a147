// core/analyzer.go
package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/signalsfoundry/modulation-demo/kb"
	"github.com/signalsfoundry/modulation-demo/model"
)

const (
	// snrFloorDB / snrCeilDB bound the reported SNR estimate. The crude
	// detrending heuristic below is only trustworthy inside this range.
	snrFloorDB = 0.0
	snrCeilDB  = 30.0

	// residualEps keeps the RMS ratio finite for near-noiseless signals.
	residualEps = 1e-10
)

// SignalAnalyzer derives coarse bandwidth and SNR estimates from a
// generated signal and its spectrum, and attaches the educational record
// for the modulation kind.
type SignalAnalyzer struct {
	KB *kb.KnowledgeBase
}

// NewSignalAnalyzer constructs an analyzer; a nil store gets a fresh
// knowledge base with the built-in records.
func NewSignalAnalyzer(store *kb.KnowledgeBase) *SignalAnalyzer {
	if store == nil {
		store = kb.NewKnowledgeBase()
	}
	return &SignalAnalyzer{KB: store}
}

// Analyze produces the full analysis for one generated signal. It fails
// only on invalid parameters or missing inputs; numeric degeneracies
// (zero-power signals, flat spectra) fall back to theoretical values or the
// SNR floor instead of propagating NaN.
func (a *SignalAnalyzer) Analyze(sig *model.GeneratedSignal, spectrum *model.SpectrumEstimate, p SignalParameters) (*model.AnalysisResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if sig == nil || spectrum == nil {
		return nil, fmt.Errorf("%w: analyze needs both a signal and a spectrum", ErrInvalidParameter)
	}
	info, err := a.KB.Lookup(p.Kind)
	if err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		ModulationName: info.Name,
		BandwidthHz:    a.estimateBandwidth(spectrum, p),
		SNRdB:          EstimateSNR(sig.Real),
		Info:           info,
	}, nil
}

// TheoreticalBandwidthHz is the per-kind textbook bandwidth estimate.
func TheoreticalBandwidthHz(p SignalParameters) float64 {
	switch p.Kind {
	case model.ModulationAM:
		return 2 * p.MessageRateHz
	case model.ModulationFM:
		// Carson's rule.
		return 2 * (p.FreqDeviationHz + p.MessageRateHz)
	case model.ModulationBPSK, model.ModulationQPSK:
		return p.MessageRateHz
	case model.ModulationFSK:
		return 2*p.FreqDeviationHz + p.MessageRateHz
	case model.ModulationLSB, model.ModulationUSB, model.ModulationSSB:
		return p.MessageRateHz
	}
	return 0
}

// estimateBandwidth starts from the theoretical formula and prefers the
// measured -10 dB span when the spectrum yields a plausible one: the span
// must be positive and under half the Nyquist frequency, otherwise the
// measurement is treated as degenerate and the theoretical value kept.
func (a *SignalAnalyzer) estimateBandwidth(spectrum *model.SpectrumEstimate, p SignalParameters) float64 {
	theoretical := TheoreticalBandwidthHz(p)
	if len(spectrum.Magnitudes) == 0 || len(spectrum.Magnitudes) != len(spectrum.Frequencies) {
		return theoretical
	}

	peak := floats.Max(spectrum.Magnitudes)
	if peak <= 0 {
		// Flat/zero spectrum: no measured bandwidth.
		return theoretical
	}

	// Bins must exceed peak/10 (-10 dB); a bin sitting exactly on the
	// threshold does not count.
	threshold := peak / 10
	minFreq, maxFreq := math.Inf(1), math.Inf(-1)
	for i, m := range spectrum.Magnitudes {
		if m > threshold {
			f := spectrum.Frequencies[i]
			if f < minFreq {
				minFreq = f
			}
			if f > maxFreq {
				maxFreq = f
			}
		}
	}

	span := maxFreq - minFreq
	nyquist := float64(p.SampleRate) / 2
	if span > 0 && span < nyquist/2 {
		return span
	}
	return theoretical
}

// EstimateSNR measures the signal-to-noise ratio of a sample sequence by
// detrending with a sparse 5-point moving average (offsets -4,-2,0,+2,+4)
// and comparing RMS levels:
//
//	snr = 20·log10(rms(signal) / (rms(residual) + ε))
//
// Samples within 4 of either edge are excluded from the residual. The
// result is clamped to [0, 30] dB; degenerate inputs (all zero, constant,
// too short to detrend) land on a clamp boundary instead of NaN.
func EstimateSNR(samples []float64) float64 {
	if len(samples) == 0 {
		return snrFloorDB
	}
	signalRMS := rms(samples)

	var residual []float64
	for i := 4; i < len(samples)-4; i++ {
		local := (samples[i-4] + samples[i-2] + samples[i] + samples[i+2] + samples[i+4]) / 5
		residual = append(residual, samples[i]-local)
	}
	residualRMS := rms(residual)

	snr := 20 * math.Log10(signalRMS/(residualRMS+residualEps))
	if !(snr > snrFloorDB) { // also catches NaN and -Inf
		return snrFloorDB
	}
	if snr > snrCeilDB {
		return snrCeilDB
	}
	return snr
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

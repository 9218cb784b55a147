package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/modulation-demo/model"
)

func TestEstimateSNR_AllZero(t *testing.T) {
	if got := EstimateSNR(make([]float64, 1000)); got != 0 {
		t.Fatalf("EstimateSNR(zeros) = %g, want 0", got)
	}
}

func TestEstimateSNR_ConstantSignalHitsCeiling(t *testing.T) {
	// A constant signal detrends to an all-zero residual, so the raw
	// ratio explodes and the clamp must cap it at 30 dB.
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 5
	}
	if got := EstimateSNR(samples); got != 30 {
		t.Fatalf("EstimateSNR(constant) = %g, want 30", got)
	}
}

func TestEstimateSNR_OutlierStaysClamped(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = math.Sin(float64(i) / 10)
	}
	samples[500] = 1e9

	got := EstimateSNR(samples)
	if got < 0 || got > 30 {
		t.Fatalf("EstimateSNR(outlier) = %g, want within [0, 30]", got)
	}
}

func TestEstimateSNR_TooShortToDetrend(t *testing.T) {
	// Fewer than 9 samples leaves no residual at all; a non-zero signal
	// then reads as noiseless and clamps to the ceiling.
	got := EstimateSNR([]float64{1, -1, 1, -1})
	if got != 30 {
		t.Fatalf("EstimateSNR(short) = %g, want 30", got)
	}
}

func TestEstimateSNR_NearNoiselessAM(t *testing.T) {
	// At 100 dB requested SNR the injected noise is far below the
	// detrending floor, so the estimate saturates at the clamp ceiling.
	// The carrier is kept low relative to the sample rate so the sparse
	// moving average tracks the waveform itself almost exactly.
	p := SignalParameters{
		Kind:            model.ModulationAM,
		CarrierFreqHz:   200,
		MessageRateHz:   50,
		SNRdB:           100,
		ModulationIndex: 0.5,
		SampleRate:      44100,
		DurationSec:     0.2,
	}
	sig, err := testEngine(21).Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := EstimateSNR(sig.Real); got != 30 {
		t.Fatalf("EstimateSNR(noiseless AM) = %g, want 30 (clamp dominates)", got)
	}
}

func TestTheoreticalBandwidth_PerKind(t *testing.T) {
	p := SignalParameters{
		MessageRateHz:   100,
		FreqDeviationHz: 500,
	}
	cases := []struct {
		kind model.ModulationKind
		want float64
	}{
		{model.ModulationAM, 200},
		{model.ModulationFM, 1200}, // Carson: 2*(500+100)
		{model.ModulationBPSK, 100},
		{model.ModulationQPSK, 100},
		{model.ModulationFSK, 1100}, // 2*500 + 100
		{model.ModulationLSB, 100},
		{model.ModulationUSB, 100},
		{model.ModulationSSB, 100},
	}
	for _, tc := range cases {
		p.Kind = tc.kind
		if got := TheoreticalBandwidthHz(p); got != tc.want {
			t.Errorf("TheoreticalBandwidthHz(%s) = %g, want %g", tc.kind, got, tc.want)
		}
	}
}

func TestEstimateBandwidth_PrefersMeasuredSpan(t *testing.T) {
	a := NewSignalAnalyzer(nil)
	p := validParams() // AM, message 100 Hz -> theoretical 200 Hz

	// Peak of 10 puts the -10 dB threshold at exactly 1. The bin sitting
	// exactly on the threshold must not count (strictly "exceeds"), so
	// the span runs 1000..1500 Hz.
	spectrum := &model.SpectrumEstimate{
		Frequencies: []float64{0, 1000, 1500, 5000, 8000},
		Magnitudes:  []float64{0, 10, 2, 1, 0.9},
	}
	if got := a.estimateBandwidth(spectrum, p); got != 500 {
		t.Fatalf("estimateBandwidth = %g, want measured span 500", got)
	}
}

func TestEstimateBandwidth_FallsBackToTheoretical(t *testing.T) {
	a := NewSignalAnalyzer(nil)
	p := validParams()
	theoretical := TheoreticalBandwidthHz(p)

	cases := []struct {
		name     string
		spectrum *model.SpectrumEstimate
	}{
		{"flat zero spectrum", &model.SpectrumEstimate{
			Frequencies: []float64{0, 100, 200},
			Magnitudes:  []float64{0, 0, 0},
		}},
		{"single bin above threshold", &model.SpectrumEstimate{
			Frequencies: []float64{0, 1000, 2000},
			Magnitudes:  []float64{0, 10, 0},
		}},
		{"span wider than half Nyquist", &model.SpectrumEstimate{
			// 0..21000 Hz at 44100 S/s: 21000 >= 11025, reject.
			Frequencies: []float64{0, 21000},
			Magnitudes:  []float64{10, 10},
		}},
		{"empty spectrum", &model.SpectrumEstimate{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.estimateBandwidth(tc.spectrum, p); got != theoretical {
				t.Fatalf("estimateBandwidth = %g, want theoretical %g", got, theoretical)
			}
		})
	}
}

func TestAnalyze_FullResult(t *testing.T) {
	engine := testEngine(33)
	estimator := NewSpectralEstimator(1024)
	analyzer := NewSignalAnalyzer(nil)

	p := validParams()
	p.Kind = model.ModulationFM
	p.FreqDeviationHz = 400
	p.DurationSec = 0.2

	sig, err := engine.Generate(p, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	spectrum, err := estimator.Estimate(sig.Real, sig.Imag, float64(p.SampleRate))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	res, err := analyzer.Analyze(sig, spectrum, p)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.ModulationName == "" || res.Info.Description == "" {
		t.Fatalf("Analyze returned empty educational record: %+v", res)
	}
	if res.BandwidthHz < 0 {
		t.Errorf("BandwidthHz = %g, want non-negative", res.BandwidthHz)
	}
	if res.SNRdB < 0 || res.SNRdB > 30 {
		t.Errorf("SNRdB = %g, want within [0, 30]", res.SNRdB)
	}
}

func TestAnalyze_Rejections(t *testing.T) {
	analyzer := NewSignalAnalyzer(nil)

	p := validParams()
	p.Kind = "xyz"
	if _, err := analyzer.Analyze(&model.GeneratedSignal{}, &model.SpectrumEstimate{}, p); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown kind error = %v, want ErrInvalidParameter", err)
	}

	p = validParams()
	if _, err := analyzer.Analyze(nil, &model.SpectrumEstimate{}, p); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("nil signal error = %v, want ErrInvalidParameter", err)
	}
}

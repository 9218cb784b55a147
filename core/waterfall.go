// core/waterfall.go
package core

import (
	"fmt"

	"github.com/signalsfoundry/modulation-demo/model"
)

// Spectrogram slices the input into hopping windows of FFTSize samples and
// estimates a spectrum for each, producing the frames a waterfall view
// scrolls through. hop <= 0 defaults to half a window (50% overlap). The
// final partial window is zero-padded like any short Estimate input.
func (se *SpectralEstimator) Spectrogram(real, imag []float64, sampleRate float64, hop int) ([]*model.SpectrumEstimate, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidParameter, sampleRate)
	}
	if imag != nil && len(imag) != len(real) {
		return nil, fmt.Errorf("%w: real/imag length mismatch (%d vs %d)", ErrInvalidParameter, len(real), len(imag))
	}

	n := se.FFTSize
	if n <= 0 {
		n = DefaultFFTSize
	}
	if hop <= 0 {
		hop = n / 2
	}

	var frames []*model.SpectrumEstimate
	for start := 0; start == 0 || start < len(real); start += hop {
		end := start + n
		if end > len(real) {
			end = len(real)
		}
		var imWin []float64
		if imag != nil {
			imWin = imag[start:end]
		}
		frame, err := se.Estimate(real[start:end], imWin, sampleRate)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

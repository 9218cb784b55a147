// core/spectrum.go
package core

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/signalsfoundry/modulation-demo/model"
)

// DefaultFFTSize is the analysis window used when a SpectralEstimator is
// constructed with a non-positive size.
const DefaultFFTSize = 1024

// SpectralEstimator computes a coarse magnitude spectrum over a fixed-size
// window taken from the start of the input (uniformly downsampled to fit
// when the input is longer, zero-padded when shorter).
//
// The default path is a direct discrete Fourier transform with the
// negative-angle forward convention:
//
//	X[k] = Σ_n x[n]·e^(-j·2π·k·n/N),  k in [0, N/2)
//
// and magnitude |X[k]| / (N/2), so a unit sinusoid on a bin centre reads
// close to 1. The direct summation is O(N²) and intentionally so: it is fine
// at this demo's scale but does not scale to large windows. UseFFT switches
// to a true fast transform with identical bin semantics for anyone who
// needs bigger windows; it is a performance substitution, not a semantic
// one.
type SpectralEstimator struct {
	// FFTSize is the window length; bins span [0, FFTSize/2).
	FFTSize int

	// UseFFT selects the fast transform instead of direct summation.
	UseFFT bool

	// Hamming applies a Hamming analysis window before transforming.
	// Off by default: the reference estimator is rectangular, and the
	// documented bin magnitudes assume no window.
	Hamming bool
}

// NewSpectralEstimator returns an estimator with the given window size,
// defaulting to DefaultFFTSize when fftSize <= 0.
func NewSpectralEstimator(fftSize int) *SpectralEstimator {
	if fftSize <= 0 {
		fftSize = DefaultFFTSize
	}
	return &SpectralEstimator{FFTSize: fftSize}
}

// Estimate computes the magnitude spectrum of the given samples. The imag
// slice may be nil for a purely real input; when present it must have the
// same length as real. Frequencies come out as k·sampleRate/FFTSize,
// strictly increasing.
func (se *SpectralEstimator) Estimate(real, imag []float64, sampleRate float64) (*model.SpectrumEstimate, error) {
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
	re := fitWindow(real, n)
	var im []float64
	if imag != nil {
		im = fitWindow(imag, n)
	} else {
		im = make([]float64, n)
	}
	if se.Hamming {
		w := window.Hamming(n)
		for i := 0; i < n; i++ {
			re[i] *= w[i]
			im[i] *= w[i]
		}
	}

	var mags []float64
	if se.UseFFT {
		mags = se.magnitudesFFT(re, im)
	} else {
		mags = se.magnitudesDirect(re, im)
	}

	freqs := make([]float64, n/2)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(n)
	}
	return &model.SpectrumEstimate{Frequencies: freqs, Magnitudes: mags}, nil
}

// magnitudesDirect is the O(N²) direct summation.
func (se *SpectralEstimator) magnitudesDirect(re, im []float64) []float64 {
	n := len(re)
	norm := float64(n) / 2
	mags := make([]float64, n/2)
	for k := range mags {
		var sumRe, sumIm float64
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(k) * float64(i) / float64(n)
			c, s := math.Cos(angle), math.Sin(angle)
			// e^(-j·angle): cos - j·sin.
			sumRe += re[i]*c + im[i]*s
			sumIm += im[i]*c - re[i]*s
		}
		mags[k] = math.Sqrt(sumRe*sumRe+sumIm*sumIm) / norm
	}
	return mags
}

// magnitudesFFT is the fast path; identical bins, identical normalization.
func (se *SpectralEstimator) magnitudesFFT(re, im []float64) []float64 {
	n := len(re)
	in := make([]complex128, n)
	for i := range in {
		in[i] = complex(re[i], im[i])
	}
	out := fft.FFT(in)

	norm := float64(n) / 2
	mags := make([]float64, n/2)
	for k := range mags {
		mags[k] = math.Hypot(real(out[k]), imag(out[k])) / norm
	}
	return mags
}

// fitWindow copies samples into a window of length n: longer inputs are
// uniformly downsampled (stride len/n over the whole input), shorter inputs
// are zero-padded at the tail.
func fitWindow(samples []float64, n int) []float64 {
	out := make([]float64, n)
	if len(samples) >= n {
		for i := 0; i < n; i++ {
			out[i] = samples[i*len(samples)/n]
		}
		return out
	}
	copy(out, samples)
	return out
}

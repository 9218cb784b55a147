// core/message.go
package core

import "math"

// messageFunc returns the message value for sample n at time t seconds.
type messageFunc func(n int, t float64) float64

// sineMessage is the default test tone for AM/FM: a unit sine at the
// message frequency.
func sineMessage(freqHz float64) messageFunc {
	return func(_ int, t float64) float64 {
		return math.Sin(2 * math.Pi * freqHz * t)
	}
}

// voiceMessage is the voice-like test tone used by the SSB family when no
// external audio is supplied: a weighted sum of four harmonically related
// sinusoids around the message frequency.
func voiceMessage(freqHz float64) messageFunc {
	return func(_ int, t float64) float64 {
		return 0.5*math.Sin(2*math.Pi*freqHz*t) +
			0.3*math.Sin(2*math.Pi*1.5*freqHz*t) +
			0.15*math.Sin(2*math.Pi*2.2*freqHz*t) +
			0.05*math.Sin(2*math.Pi*3.7*freqHz*t)
	}
}

// externalMessage wraps caller-supplied samples (expected in [-1, 1]),
// indexed modulo their own length so short recordings loop over the full
// signal duration.
func externalMessage(samples []float64) messageFunc {
	return func(n int, _ float64) float64 {
		return samples[n%len(samples)]
	}
}

// messageSource picks the message for a generation call: external samples
// when present, otherwise the given synthesized fallback.
func messageSource(external []float64, fallback messageFunc) messageFunc {
	if len(external) > 0 {
		return externalMessage(external)
	}
	return fallback
}

// hilbertApprox computes the short finite-difference approximation of the
// Hilbert transform used by the SSB generators:
//
//	h[n] = 0.5 * (m[n] - m[n-2])   for n >= 3
//
// The first three output samples are deliberately left at zero. That is a
// known boundary artifact of the approximation, kept as-is so the generated
// waveforms match the reference numbers.
func hilbertApprox(m []float64) []float64 {
	h := make([]float64, len(m))
	for n := 3; n < len(m); n++ {
		h[n] = 0.5 * (m[n] - m[n-2])
	}
	return h
}

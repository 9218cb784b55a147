// core/params.go
package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/modulation-demo/model"
)

// ErrInvalidParameter is returned (wrapped) whenever generation or analysis
// is asked to run with parameters it cannot honour. Callers can match it
// with errors.Is.
var ErrInvalidParameter = errors.New("invalid signal parameter")

// SignalParameters describes one generation request. It is immutable per
// call: the engine never writes back into it.
type SignalParameters struct {
	Kind model.ModulationKind

	// CarrierFreqHz is the carrier frequency in Hz, must be > 0.
	CarrierFreqHz float64

	// MessageRateHz is the message-tone frequency for the analog and SSB
	// kinds, and the symbol rate for the digital kinds. Must be > 0.
	MessageRateHz float64

	// SNRdB is the requested signal-to-noise ratio in dB. Any real value
	// is accepted; the achieved SNR is approximate (noise is scaled from
	// the measured pre-noise signal power, see Engine.addNoise).
	SNRdB float64

	// ModulationIndex is the unitless modulation depth, typically 0..1.
	// Used by AM and FM.
	ModulationIndex float64

	// FreqDeviationHz is the peak frequency deviation in Hz for FM and
	// FSK. Must be >= 0.
	FreqDeviationHz float64

	// SampleRate is samples per second. The demo defaults to 44100 but any
	// positive integer is accepted.
	SampleRate int

	// DurationSec is the signal duration in seconds, must be > 0.
	DurationSec float64
}

// NumSamples returns round(SampleRate * DurationSec).
func (p SignalParameters) NumSamples() int {
	return int(math.Round(float64(p.SampleRate) * p.DurationSec))
}

// SamplesPerSymbol returns floor(SampleRate / MessageRateHz), the number of
// samples each symbol occupies for the digital kinds.
func (p SignalParameters) SamplesPerSymbol() int {
	if p.MessageRateHz <= 0 {
		return 0
	}
	return int(float64(p.SampleRate) / p.MessageRateHz)
}

// isDigital reports whether kind transmits discrete symbols (and therefore
// produces a constellation).
func isDigital(kind model.ModulationKind) bool {
	switch kind {
	case model.ModulationBPSK, model.ModulationQPSK, model.ModulationFSK:
		return true
	}
	return false
}

// Validate checks the parameter set before any computation happens. It
// returns an error wrapping ErrInvalidParameter on the first violation.
func (p SignalParameters) Validate() error {
	if _, ok := generators[p.Kind]; !ok {
		return fmt.Errorf("%w: unknown modulation kind %q", ErrInvalidParameter, string(p.Kind))
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, p.SampleRate)
	}
	if p.DurationSec <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidParameter, p.DurationSec)
	}
	if p.CarrierFreqHz <= 0 {
		return fmt.Errorf("%w: carrier frequency must be positive, got %g", ErrInvalidParameter, p.CarrierFreqHz)
	}
	if p.MessageRateHz <= 0 {
		return fmt.Errorf("%w: message/symbol rate must be positive, got %g", ErrInvalidParameter, p.MessageRateHz)
	}
	if p.ModulationIndex < 0 {
		return fmt.Errorf("%w: modulation index must not be negative, got %g", ErrInvalidParameter, p.ModulationIndex)
	}
	if p.FreqDeviationHz < 0 {
		return fmt.Errorf("%w: frequency deviation must not be negative, got %g", ErrInvalidParameter, p.FreqDeviationHz)
	}
	if isDigital(p.Kind) && p.SamplesPerSymbol() < 1 {
		return fmt.Errorf("%w: symbol rate %g exceeds sample rate %d", ErrInvalidParameter, p.MessageRateHz, p.SampleRate)
	}
	return nil
}

package model

// ModulationKind identifies one of the supported modulation schemes.
type ModulationKind string

const (
	ModulationAM   ModulationKind = "am"
	ModulationFM   ModulationKind = "fm"
	ModulationBPSK ModulationKind = "bpsk"
	ModulationQPSK ModulationKind = "qpsk"
	ModulationFSK  ModulationKind = "fsk"
	ModulationLSB  ModulationKind = "lsb"
	ModulationUSB  ModulationKind = "usb"
	// ModulationSSB is the generic single-sideband kind. It is generated
	// with the upper sideband; use ModulationLSB / ModulationUSB to pick
	// a sideband explicitly.
	ModulationSSB ModulationKind = "ssb"
)

// Kinds lists every supported modulation kind in display order.
func Kinds() []ModulationKind {
	return []ModulationKind{
		ModulationAM, ModulationFM,
		ModulationBPSK, ModulationQPSK, ModulationFSK,
		ModulationLSB, ModulationUSB, ModulationSSB,
	}
}

// ConstellationPoint is a single transmitted symbol in the I/Q plane.
type ConstellationPoint struct {
	I float64 `json:"i"`
	Q float64 `json:"q"`
}

// GeneratedSignal is one synthesized transmission, handed by value to the
// visualization layer. Time, Real and Imag always have equal length; Imag is
// all-zero when the modulation has no quadrature component. Constellation is
// nil for analog and SSB-family modulations and holds one point per
// transmitted symbol otherwise.
type GeneratedSignal struct {
	Kind ModulationKind `json:"kind"`

	// SampleRate is samples per second; Time[n] = n / SampleRate.
	SampleRate int `json:"sample_rate"`

	Time []float64 `json:"time"`
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`

	Constellation []ConstellationPoint `json:"constellation,omitempty"`
}

// SpectrumEstimate is a coarse magnitude spectrum. Frequencies and
// Magnitudes have equal length and Frequencies is strictly increasing;
// FrequencyHz[k] = k * sampleRate / fftSize.
type SpectrumEstimate struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
}

// ModulationInfo is the static educational record for one modulation kind.
// Pure data, never computed.
type ModulationInfo struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	BandwidthFormula string   `json:"bandwidth_formula"`
	Applications     []string `json:"applications"`
	Advantages       []string `json:"advantages"`
	Disadvantages    []string `json:"disadvantages"`
}

// AnalysisResult bundles the coarse measurements and the educational record
// for one generated signal.
type AnalysisResult struct {
	ModulationName string `json:"modulation_name"`

	// BandwidthHz is the occupied-bandwidth estimate, never negative.
	BandwidthHz float64 `json:"bandwidth_hz"`

	// SNRdB is the measured signal-to-noise estimate, clamped to [0, 30].
	SNRdB float64 `json:"snr_db"`

	Info ModulationInfo `json:"info"`
}

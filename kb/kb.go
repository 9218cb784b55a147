package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/modulation-demo/model"
)

// KnowledgeBase is a thread-safe store of educational records, one per
// modulation kind. It comes pre-seeded with the built-in records; Register
// exists so embedders can add records for custom schemes.
type KnowledgeBase struct {
	mu      sync.RWMutex
	entries map[model.ModulationKind]model.ModulationInfo
}

// NewKnowledgeBase constructs a KB seeded with the built-in records.
func NewKnowledgeBase() *KnowledgeBase {
	kb := &KnowledgeBase{entries: make(map[model.ModulationKind]model.ModulationInfo)}
	for kind, info := range builtin {
		kb.entries[kind] = info
	}
	return kb
}

// Lookup returns the record for kind, or an error for an unknown kind.
func (kb *KnowledgeBase) Lookup(kind model.ModulationKind) (model.ModulationInfo, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	info, ok := kb.entries[kind]
	if !ok {
		return model.ModulationInfo{}, fmt.Errorf("no educational record for modulation kind %q", string(kind))
	}
	return info, nil
}

// Register adds a record for a new kind. It returns an error if the kind
// already has one.
func (kb *KnowledgeBase) Register(kind model.ModulationKind, info model.ModulationInfo) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if _, exists := kb.entries[kind]; exists {
		return fmt.Errorf("modulation kind %q already registered", string(kind))
	}
	kb.entries[kind] = info
	return nil
}

// Kinds returns a snapshot of every registered kind.
func (kb *KnowledgeBase) Kinds() []model.ModulationKind {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	kinds := make([]model.ModulationKind, 0, len(kb.entries))
	for k := range kb.entries {
		kinds = append(kinds, k)
	}
	return kinds
}

// builtin holds the canned educational text. Pure data, never computed.
var builtin = map[model.ModulationKind]model.ModulationInfo{
	model.ModulationAM: {
		Name: "Amplitude Modulation (AM)",
		Description: "The amplitude of a high-frequency carrier follows the " +
			"message signal while frequency and phase stay fixed. The envelope " +
			"of the transmitted wave is a shifted copy of the message.",
		BandwidthFormula: "B = 2·fm (twice the highest message frequency)",
		Applications: []string{
			"Medium-wave and short-wave broadcast radio",
			"Aviation VHF voice communication",
			"Citizens band (CB) radio",
		},
		Advantages: []string{
			"Simple, cheap receivers (envelope detection)",
			"Narrow bandwidth compared with FM",
		},
		Disadvantages: []string{
			"Poor noise immunity: noise rides on the amplitude",
			"Most transmitted power sits in the carrier, not the message",
		},
	},
	model.ModulationFM: {
		Name: "Frequency Modulation (FM)",
		Description: "The instantaneous frequency of the carrier deviates " +
			"around its centre in proportion to the message amplitude; the " +
			"envelope stays constant.",
		BandwidthFormula: "B ≈ 2·(Δf + fm) (Carson's rule)",
		Applications: []string{
			"VHF broadcast radio (87.5–108 MHz)",
			"Two-way land mobile radio",
			"Analog TV sound carriers",
		},
		Advantages: []string{
			"Strong noise immunity: amplitude noise is clipped away",
			"Constant envelope suits efficient nonlinear amplifiers",
		},
		Disadvantages: []string{
			"Needs considerably more bandwidth than AM",
			"Receiver needs a frequency discriminator and limiter",
		},
	},
	model.ModulationBPSK: {
		Name: "Binary Phase-Shift Keying (BPSK)",
		Description: "Each bit flips the carrier phase between 0° and 180°. " +
			"The constellation is two points on the real axis at ±1.",
		BandwidthFormula: "B ≈ Rs (the symbol rate)",
		Applications: []string{
			"Deep-space telemetry links",
			"GPS C/A code transmission",
			"Low-rate satellite modems",
		},
		Advantages: []string{
			"Best bit-error performance of the PSK family at a given Eb/N0",
			"Simple to generate and to detect coherently",
		},
		Disadvantages: []string{
			"Only one bit per symbol: spectrally inefficient",
			"Needs carrier phase recovery at the receiver",
		},
	},
	model.ModulationQPSK: {
		Name: "Quadrature Phase-Shift Keying (QPSK)",
		Description: "Pairs of bits select one of four carrier phases 90° " +
			"apart; the constellation points sit on the unit circle at " +
			"(±1/√2, ±1/√2). Twice the data rate of BPSK in the same bandwidth.",
		BandwidthFormula: "B ≈ Rs (two bits per symbol)",
		Applications: []string{
			"Satellite TV (DVB-S)",
			"Cellular uplinks and downlinks",
			"Cable modems and microwave backhaul",
		},
		Advantages: []string{
			"Doubles spectral efficiency over BPSK at the same error rate",
			"Constant envelope between symbol transitions",
		},
		Disadvantages: []string{
			"More sensitive to phase error than BPSK",
			"Requires accurate I/Q balance in the transmitter",
		},
	},
	model.ModulationFSK: {
		Name: "Frequency-Shift Keying (FSK)",
		Description: "Each bit selects one of two discrete carrier " +
			"frequencies, fc − Δf for a 0 and fc + Δf for a 1.",
		BandwidthFormula: "B ≈ 2·Δf + Rs",
		Applications: []string{
			"Legacy telephone modems and caller ID",
			"Radioteletype (RTTY)",
			"Low-power telemetry (keyfobs, pagers)",
		},
		Advantages: []string{
			"Noncoherent detection possible: very simple receivers",
			"Constant envelope, robust against amplitude noise",
		},
		Disadvantages: []string{
			"Poor spectral efficiency",
			"Wide spacing needed between tones for easy discrimination",
		},
	},
	model.ModulationLSB: {
		Name: "Lower Sideband (LSB)",
		Description: "Single-sideband transmission keeping only the " +
			"spectrum below the carrier: the carrier and the upper sideband " +
			"are suppressed via a Hilbert-transform phasing network.",
		BandwidthFormula: "B ≈ fm (one sideband only)",
		Applications: []string{
			"Amateur radio voice below 10 MHz",
			"Long-haul HF point-to-point circuits",
		},
		Advantages: []string{
			"Half the bandwidth of AM and no wasted carrier power",
			"All transmitter power carries information",
		},
		Disadvantages: []string{
			"Receiver must reinsert the carrier precisely",
			"Mistuning shifts every audio frequency audibly",
		},
	},
	model.ModulationUSB: {
		Name: "Upper Sideband (USB)",
		Description: "Single-sideband transmission keeping only the " +
			"spectrum above the carrier; the mirror of LSB, conventional for " +
			"voice above 10 MHz.",
		BandwidthFormula: "B ≈ fm (one sideband only)",
		Applications: []string{
			"Amateur radio voice above 10 MHz",
			"Marine and aeronautical HF voice",
			"Military HF data links",
		},
		Advantages: []string{
			"Half the bandwidth of AM and no wasted carrier power",
			"Better range per transmitted watt than AM",
		},
		Disadvantages: []string{
			"Receiver must reinsert the carrier precisely",
			"More complex transmitter than AM",
		},
	},
}

func init() {
	// The generic SSB kind shares the USB record apart from the name.
	usb := builtin[model.ModulationUSB]
	usb.Name = "Single Sideband (SSB)"
	builtin[model.ModulationSSB] = usb
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/modulation-demo/core"
	"github.com/signalsfoundry/modulation-demo/model"
)

// preset is one named parameter set from the YAML preset file.
type preset struct {
	Kind            string  `yaml:"kind"`
	CarrierFreqHz   float64 `yaml:"carrier_freq_hz"`
	MessageRateHz   float64 `yaml:"message_rate_hz"`
	SNRdB           float64 `yaml:"snr_db"`
	ModulationIndex float64 `yaml:"modulation_index"`
	FreqDeviationHz float64 `yaml:"freq_deviation_hz"`
	SampleRate      int     `yaml:"sample_rate"`
	DurationSec     float64 `yaml:"duration_sec"`
}

type presetFile struct {
	Presets map[string]preset `yaml:"presets"`
}

// params converts a preset into engine parameters, filling in the demo
// defaults for unset sample rate and duration.
func (p preset) params() core.SignalParameters {
	sampleRate := p.SampleRate
	if sampleRate == 0 {
		sampleRate = 44100
	}
	duration := p.DurationSec
	if duration == 0 {
		duration = 1
	}
	return core.SignalParameters{
		Kind:            model.ModulationKind(p.Kind),
		CarrierFreqHz:   p.CarrierFreqHz,
		MessageRateHz:   p.MessageRateHz,
		SNRdB:           p.SNRdB,
		ModulationIndex: p.ModulationIndex,
		FreqDeviationHz: p.FreqDeviationHz,
		SampleRate:      sampleRate,
		DurationSec:     duration,
	}
}

// loadPresets decodes a preset file.
func loadPresets(r io.Reader) (map[string]preset, error) {
	var file presetFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("preset file contains no presets")
	}
	return file.Presets, nil
}

// presetParams opens path and resolves the named preset.
func presetParams(path, name string) (core.SignalParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.SignalParameters{}, fmt.Errorf("open presets %q: %w", path, err)
	}
	defer f.Close()

	presets, err := loadPresets(f)
	if err != nil {
		return core.SignalParameters{}, err
	}
	p, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return core.SignalParameters{}, fmt.Errorf("unknown preset %q, have %v", name, names)
	}
	return p.params(), nil
}

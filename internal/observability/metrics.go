package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DemoCollector bundles Prometheus metrics for the generation/analysis
// surface and provides a ready-to-serve /metrics handler.
type DemoCollector struct {
	gatherer prometheus.Gatherer

	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec

	LastBandwidthHz *prometheus.GaugeVec
	LastSNRdB       *prometheus.GaugeVec
}

// NewDemoCollector registers the demo metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewDemoCollector(reg prometheus.Registerer) (*DemoCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moddemo_generations_total",
		Help: "Total number of signal generation requests, labeled by modulation kind and outcome.",
	}, []string{"kind", "outcome"})
	generations, err := registerCounterVec(reg, generations, "moddemo_generations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moddemo_generation_duration_seconds",
		Help:    "End-to-end generate+estimate+analyze latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"kind"})
	durations, err = registerHistogramVec(reg, durations, "moddemo_generation_duration_seconds")
	if err != nil {
		return nil, err
	}

	bandwidth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "moddemo_analysis_bandwidth_hz",
		Help: "Bandwidth estimate of the most recent analysis, per modulation kind.",
	}, []string{"kind"})
	bandwidth, err = registerGaugeVec(reg, bandwidth, "moddemo_analysis_bandwidth_hz")
	if err != nil {
		return nil, err
	}

	snr := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "moddemo_analysis_snr_db",
		Help: "SNR estimate of the most recent analysis in dB, per modulation kind.",
	}, []string{"kind"})
	snr, err = registerGaugeVec(reg, snr, "moddemo_analysis_snr_db")
	if err != nil {
		return nil, err
	}

	return &DemoCollector{
		gatherer:           gatherer,
		Generations:        generations,
		GenerationDuration: durations,
		LastBandwidthHz:    bandwidth,
		LastSNRdB:          snr,
	}, nil
}

// ObserveGeneration records one generation request's outcome and duration.
func (c *DemoCollector) ObserveGeneration(kind string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.Generations != nil {
		c.Generations.WithLabelValues(kind, outcome).Inc()
	}
	if err == nil && c.GenerationDuration != nil {
		c.GenerationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

// RecordAnalysis publishes the latest analysis estimates.
func (c *DemoCollector) RecordAnalysis(kind string, bandwidthHz, snrDB float64) {
	if c == nil {
		return
	}
	if c.LastBandwidthHz != nil {
		c.LastBandwidthHz.WithLabelValues(kind).Set(bandwidthHz)
	}
	if c.LastSNRdB != nil {
		c.LastSNRdB.WithLabelValues(kind).Set(snrDB)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *DemoCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

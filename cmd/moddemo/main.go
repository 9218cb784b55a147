package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/modulation-demo/core"
	"github.com/signalsfoundry/modulation-demo/internal/httpapi"
	"github.com/signalsfoundry/modulation-demo/internal/logging"
	"github.com/signalsfoundry/modulation-demo/internal/observability"
	"github.com/signalsfoundry/modulation-demo/model"
	"github.com/signalsfoundry/modulation-demo/sweep"
)

func main() {
	kind := flag.String("kind", "am", "modulation kind (am, fm, bpsk, qpsk, fsk, lsb, usb, ssb)")
	carrier := flag.Float64("carrier", 1000, "carrier frequency in Hz")
	rate := flag.Float64("rate", 100, "message frequency / symbol rate in Hz")
	snr := flag.Float64("snr", 20, "target SNR in dB")
	index := flag.Float64("index", 0.5, "modulation index")
	deviation := flag.Float64("deviation", 200, "frequency deviation in Hz (FM/FSK)")
	sampleRate := flag.Int("sample-rate", 44100, "sample rate in samples/second")
	duration := flag.Float64("duration", 1, "signal duration in seconds")
	fftSize := flag.Int("fft-size", core.DefaultFFTSize, "spectral analysis window size")
	seed := flag.Int64("seed", 0, "RNG seed for reproducible symbols and noise (0 = time-based)")

	presetName := flag.String("preset", "", "named preset from the preset file (overrides the parameter flags)")
	presetPath := flag.String("presets", "configs/presets.yaml", "path to the YAML preset file")

	listen := flag.String("listen", "", "serve the JSON API and /metrics on this address instead of one-shot output")
	sweepFor := flag.Duration("sweep", 0, "run the live spectrum monitor for this duration instead of one-shot output")
	sweepInterval := flag.Duration("sweep-interval", time.Second, "regeneration interval in sweep mode")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	params := core.SignalParameters{
		Kind:            model.ModulationKind(*kind),
		CarrierFreqHz:   *carrier,
		MessageRateHz:   *rate,
		SNRdB:           *snr,
		ModulationIndex: *index,
		FreqDeviationHz: *deviation,
		SampleRate:      *sampleRate,
		DurationSec:     *duration,
	}
	if *presetName != "" {
		var err error
		params, err = presetParams(*presetPath, *presetName)
		if err != nil {
			log.Error(ctx, "failed to resolve preset", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}
	engine := core.NewEngine(rng)
	estimator := core.NewSpectralEstimator(*fftSize)
	analyzer := core.NewSignalAnalyzer(nil)

	switch {
	case *listen != "":
		serve(ctx, log, *listen, engine, estimator, analyzer)
	case *sweepFor > 0:
		runSweep(ctx, log, engine, estimator, analyzer, params, *sweepInterval, *sweepFor)
	default:
		oneShot(ctx, log, engine, estimator, analyzer, params)
	}
}

// oneShot runs the pipeline once and writes the result bundle as JSON to
// stdout, ready for the visualization layer.
func oneShot(ctx context.Context, log logging.Logger, engine *core.Engine, estimator *core.SpectralEstimator, analyzer *core.SignalAnalyzer, params core.SignalParameters) {
	sig, err := engine.Generate(params, nil)
	if err != nil {
		log.Error(ctx, "generation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	spectrum, err := estimator.Estimate(sig.Real, sig.Imag, float64(params.SampleRate))
	if err != nil {
		log.Error(ctx, "spectrum estimation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	analysis, err := analyzer.Analyze(sig, spectrum, params)
	if err != nil {
		log.Error(ctx, "analysis failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Signal   *model.GeneratedSignal  `json:"signal"`
		Spectrum *model.SpectrumEstimate `json:"spectrum"`
		Analysis *model.AnalysisResult   `json:"analysis"`
	}{sig, spectrum, analysis}); err != nil {
		log.Error(ctx, "failed to encode result", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

// serve exposes the JSON API plus Prometheus metrics until interrupted.
func serve(ctx context.Context, log logging.Logger, addr string, engine *core.Engine, estimator *core.SpectralEstimator, analyzer *core.SignalAnalyzer) {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewDemoCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	api := httpapi.NewServer(engine, estimator, analyzer, collector, log)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.Routes(),
	}

	go func() {
		log.Info(ctx, "serving modulation demo API", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// runSweep drives the live monitor loop, logging one line per frame.
func runSweep(ctx context.Context, log logging.Logger, engine *core.Engine, estimator *core.SpectralEstimator, analyzer *core.SignalAnalyzer, params core.SignalParameters, interval, duration time.Duration) {
	runner := sweep.NewRunner(engine, estimator, analyzer, params, interval, log)
	runner.AddListener(func(f sweep.Frame) {
		log.Info(ctx, "sweep frame",
			logging.String("kind", string(f.Signal.Kind)),
			logging.Float64("bandwidth_hz", f.Analysis.BandwidthHz),
			logging.Float64("snr_db", f.Analysis.SNRdB),
		)
	})

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	<-runner.Start(stopCtx, duration)
}

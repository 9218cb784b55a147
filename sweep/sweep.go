// Package sweep drives a live spectrum-monitor loop: on every tick it
// regenerates the configured signal (fresh symbols and noise), estimates its
// spectrum, analyzes it, and notifies listeners with the resulting frame.
// A waterfall display scrolls through these frames.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/signalsfoundry/modulation-demo/core"
	"github.com/signalsfoundry/modulation-demo/internal/logging"
	"github.com/signalsfoundry/modulation-demo/model"
)

// Frame is one monitor update.
type Frame struct {
	At       time.Time
	Signal   *model.GeneratedSignal
	Spectrum *model.SpectrumEstimate
	Analysis *model.AnalysisResult
}

// Runner regenerates a signal at a fixed interval. All generations happen on
// the runner's own goroutine, so the engine's RNG is never shared across
// goroutines.
type Runner struct {
	mu        sync.RWMutex
	listeners []func(Frame)
	last      Frame

	engine    *core.Engine
	estimator *core.SpectralEstimator
	analyzer  *core.SignalAnalyzer
	params    core.SignalParameters
	interval  time.Duration
	log       logging.Logger
}

// NewRunner constructs a runner. The parameter set is validated on every
// tick by the engine itself; a broken set surfaces as logged tick failures
// rather than a constructor error, mirroring how a UI would recover.
func NewRunner(engine *core.Engine, estimator *core.SpectralEstimator, analyzer *core.SignalAnalyzer, params core.SignalParameters, interval time.Duration, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		engine:    engine,
		estimator: estimator,
		analyzer:  analyzer,
		params:    params,
		interval:  interval,
		log:       log,
	}
}

// AddListener registers a callback invoked with every produced frame.
// Listeners must be registered before Start.
func (r *Runner) AddListener(fn func(Frame)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Last returns the most recently produced frame (zero value before the
// first tick).
func (r *Runner) Last() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Start runs the monitor loop in a separate goroutine for the specified
// duration (forever when duration <= 0). It returns a channel that is
// closed when the loop finishes.
func (r *Runner) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			elapsed += r.interval
			r.tick(ctx)
		}
	}()
	return done
}

func (r *Runner) tick(ctx context.Context) {
	sig, err := r.engine.Generate(r.params, nil)
	if err != nil {
		r.log.Warn(ctx, "sweep generation failed", logging.String("error", err.Error()))
		return
	}
	spectrum, err := r.estimator.Estimate(sig.Real, sig.Imag, float64(r.params.SampleRate))
	if err != nil {
		r.log.Warn(ctx, "sweep spectrum estimation failed", logging.String("error", err.Error()))
		return
	}
	analysis, err := r.analyzer.Analyze(sig, spectrum, r.params)
	if err != nil {
		r.log.Warn(ctx, "sweep analysis failed", logging.String("error", err.Error()))
		return
	}

	frame := Frame{At: time.Now(), Signal: sig, Spectrum: spectrum, Analysis: analysis}

	r.mu.Lock()
	r.last = frame
	subs := append([]func(Frame){}, r.listeners...)
	r.mu.Unlock()

	// Notify outside the lock so a slow listener cannot stall Last().
	for _, fn := range subs {
		fn(frame)
	}
}

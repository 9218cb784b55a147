// Package httpapi is the JSON hand-off surface consumed by the external
// visualization layer: one endpoint runs generate -> estimate -> analyze
// and returns the three result shapes verbatim.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/modulation-demo/core"
	"github.com/signalsfoundry/modulation-demo/internal/logging"
	"github.com/signalsfoundry/modulation-demo/internal/observability"
	"github.com/signalsfoundry/modulation-demo/kb"
	"github.com/signalsfoundry/modulation-demo/model"
)

// Server bundles the engine pipeline behind an http.Handler.
type Server struct {
	// mu serializes Generate calls: the engine's RNG is not safe for
	// concurrent use and handlers run on arbitrary goroutines.
	mu sync.Mutex

	engine    *core.Engine
	estimator *core.SpectralEstimator
	analyzer  *core.SignalAnalyzer
	store     *kb.KnowledgeBase
	collector *observability.DemoCollector
	log       logging.Logger
	tracer    trace.Tracer
}

// NewServer wires the pipeline. collector and log may be nil.
func NewServer(engine *core.Engine, estimator *core.SpectralEstimator, analyzer *core.SignalAnalyzer, collector *observability.DemoCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	store := kb.NewKnowledgeBase()
	if analyzer != nil && analyzer.KB != nil {
		store = analyzer.KB
	}
	return &Server{
		engine:    engine,
		estimator: estimator,
		analyzer:  analyzer,
		store:     store,
		collector: collector,
		log:       log,
		tracer:    otel.Tracer("github.com/signalsfoundry/modulation-demo/internal/httpapi"),
	}
}

// Routes returns the full handler: the API endpoints plus /metrics when a
// collector is attached.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/kinds", s.handleKinds)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}
	return mux
}

// generateRequest mirrors core.SignalParameters plus the optional external
// message samples.
type generateRequest struct {
	Kind            string    `json:"kind"`
	CarrierFreqHz   float64   `json:"carrier_freq_hz"`
	MessageRateHz   float64   `json:"message_rate_hz"`
	SNRdB           float64   `json:"snr_db"`
	ModulationIndex float64   `json:"modulation_index"`
	FreqDeviationHz float64   `json:"freq_deviation_hz"`
	SampleRate      int       `json:"sample_rate"`
	DurationSec     float64   `json:"duration_sec"`
	Message         []float64 `json:"message,omitempty"`
}

type generateResponse struct {
	Signal   *model.GeneratedSignal  `json:"signal"`
	Spectrum *model.SpectrumEstimate `json:"spectrum"`
	Analysis *model.AnalysisResult   `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.SampleRate == 0 {
		req.SampleRate = 44100
	}
	params := core.SignalParameters{
		Kind:            model.ModulationKind(req.Kind),
		CarrierFreqHz:   req.CarrierFreqHz,
		MessageRateHz:   req.MessageRateHz,
		SNRdB:           req.SNRdB,
		ModulationIndex: req.ModulationIndex,
		FreqDeviationHz: req.FreqDeviationHz,
		SampleRate:      req.SampleRate,
		DurationSec:     req.DurationSec,
	}

	ctx, span := s.tracer.Start(ctx, "httpapi.Generate",
		trace.WithAttributes(
			attribute.String("modulation.kind", req.Kind),
			attribute.Float64("modulation.duration_sec", req.DurationSec),
		))
	defer span.End()

	start := time.Now()
	resp, err := s.run(params, req.Message)
	s.collector.ObserveGeneration(req.Kind, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidParameter) {
			status = http.StatusBadRequest
		}
		log.Warn(ctx, "generation failed",
			logging.String("kind", req.Kind),
			logging.String("error", err.Error()),
		)
		writeError(w, status, err.Error())
		return
	}

	s.collector.RecordAnalysis(req.Kind, resp.Analysis.BandwidthHz, resp.Analysis.SNRdB)
	log.Info(ctx, "generated signal",
		logging.String("kind", req.Kind),
		logging.Int("samples", len(resp.Signal.Real)),
		logging.Float64("bandwidth_hz", resp.Analysis.BandwidthHz),
		logging.Float64("snr_db", resp.Analysis.SNRdB),
	)
	writeJSON(w, http.StatusOK, resp)
}

// run executes the full pipeline under the engine lock.
func (s *Server) run(params core.SignalParameters, message []float64) (*generateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.engine.Generate(params, message)
	if err != nil {
		return nil, err
	}
	spectrum, err := s.estimator.Estimate(sig.Real, sig.Imag, float64(params.SampleRate))
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyzer.Analyze(sig, spectrum, params)
	if err != nil {
		return nil, err
	}
	return &generateResponse{Signal: sig, Spectrum: spectrum, Analysis: analysis}, nil
}

// kindEntry pairs a kind with its educational record.
type kindEntry struct {
	Kind model.ModulationKind `json:"kind"`
	Info model.ModulationInfo `json:"info"`
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	var entries []kindEntry
	for _, kind := range model.Kinds() {
		info, err := s.store.Lookup(kind)
		if err != nil {
			continue
		}
		entries = append(entries, kindEntry{Kind: kind, Info: info})
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
